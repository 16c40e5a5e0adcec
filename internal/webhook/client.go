package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"latest-sender/internal/logging"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "latest-sender/0.1.0"

// maxErrorBody caps how much of a rejection body is kept.
const maxErrorBody = 2048

// Doer performs a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client uploads files to webhook endpoints. It is safe for sequential reuse
// across uploads.
type Client struct {
	doer      Doer
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the HTTP executor.
func WithDoer(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// WithTimeout bounds each request when the default executor is in use.
// Zero or negative keeps the executor unchanged.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		if hc, ok := c.doer.(*http.Client); ok {
			clone := *hc
			clone.Timeout = timeout
			c.doer = &clone
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client. Without options it uses a fresh *http.Client.
func New(opts ...Option) *Client {
	c := &Client{
		doer:      &http.Client{},
		userAgent: DefaultUserAgent,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts the file at path to endpoint. A non-empty caption is sent as
// the `content` form field.
func (c *Client) Upload(ctx context.Context, endpoint, path, caption string) error {
	req, err := c.buildRequest(ctx, endpoint, path, caption)
	if err != nil {
		return err
	}
	return c.execute(req, endpoint, path)
}

// UploadAsync runs Upload on a separate goroutine. The returned channel
// receives exactly one value and is then closed.
func (c *Client) UploadAsync(ctx context.Context, endpoint, path, caption string) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- c.Upload(ctx, endpoint, path, caption)
	}()
	return out
}

func (c *Client) buildRequest(ctx context.Context, endpoint, path, caption string) (*http.Request, error) {
	name, err := attachmentName(path)
	if err != nil {
		return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: err}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: fmt.Errorf("build form: %w", err)}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: fmt.Errorf("build form: %w", err)}
	}
	if caption != "" {
		if err := writer.WriteField("content", caption); err != nil {
			return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: fmt.Errorf("build form: %w", err)}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindLocal, Path: path, Endpoint: endpoint, Err: fmt.Errorf("build form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		// Unparseable endpoints never reach the network.
		return nil, &Error{Kind: KindTransport, Path: path, Endpoint: endpoint, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("upload request built",
		logging.String("file", name),
		logging.Int("size_bytes", len(data)),
		logging.Bool("has_caption", caption != ""),
	)
	return req, nil
}

func (c *Client) execute(req *http.Request, endpoint, path string) error {
	resp, err := c.doer.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Path: path, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:       KindRejected,
			Path:       path,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       rejectionBody(resp.Body),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func rejectionBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return noErrorMessage
	}
	return strings.TrimSpace(string(body))
}

func attachmentName(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	name := filepath.Base(path)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("path %q has no file name", path)
	}
	return name, nil
}
