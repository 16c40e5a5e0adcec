package webhook

import (
	"fmt"

	"latest-sender/internal/services"
)

// Kind classifies why an upload failed.
type Kind int

const (
	// KindLocal means the file could not be named or read.
	KindLocal Kind = iota + 1
	// KindTransport means no HTTP response was obtained.
	KindTransport
	// KindRejected means the endpoint answered with a non-2xx status.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// noErrorMessage stands in for a rejection body that could not be read.
const noErrorMessage = "no error message"

// Error describes a failed upload.
type Error struct {
	Kind       Kind
	Path       string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindLocal:
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	case KindTransport:
		return fmt.Sprintf("send %s: %v", e.Path, e.Err)
	case KindRejected:
		if e.Body == "" {
			return fmt.Sprintf("webhook rejected upload: status %d", e.StatusCode)
		}
		return fmt.Sprintf("webhook rejected upload: status %d: %s", e.StatusCode, e.Body)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "upload failed"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match upload failures against the shared services markers.
func (e *Error) Is(target error) bool {
	switch target {
	case services.ErrLocalIO:
		return e.Kind == KindLocal
	case services.ErrTransport:
		return e.Kind == KindTransport
	case services.ErrRejected:
		return e.Kind == KindRejected
	}
	return false
}
