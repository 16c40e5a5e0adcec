package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"latest-sender/internal/logging"
)

// ErrBadPattern reports glob syntax that cannot be expanded.
var ErrBadPattern = doublestar.ErrBadPattern

// Candidate pairs a matched regular file with its modification time.
type Candidate struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Options tunes a selection.
type Options struct {
	// Window rejects the newest match when it is older than now minus Window.
	// Zero disables the check.
	Window time.Duration
	// Now overrides the clock used for the recency cutoff.
	Now func() time.Time
	// Logger receives per-match diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Result is the outcome of an asynchronous selection.
type Result struct {
	Candidate Candidate
	Found     bool
	Err       error
}

// Latest returns the path of the newest regular file in dir matching pattern.
// found is false when nothing matches or the newest match falls outside the
// recency window; neither case is an error.
func Latest(ctx context.Context, dir, pattern string, opts Options) (string, bool, error) {
	candidate, found, err := Find(ctx, dir, pattern, opts)
	if err != nil || !found {
		return "", false, err
	}
	return candidate.Path, true, nil
}

// LatestAsync runs Find on its own goroutine. The channel yields exactly one
// Result and is then closed.
func LatestAsync(ctx context.Context, dir, pattern string, opts Options) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		candidate, found, err := Find(ctx, dir, pattern, opts)
		out <- Result{Candidate: candidate, Found: found, Err: err}
	}()
	return out
}

// Find is Latest with the full candidate (modification time and size) of the
// selected file.
func Find(ctx context.Context, dir, pattern string, opts Options) (Candidate, bool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := ctx.Err(); err != nil {
		return Candidate{}, false, err
	}
	root, err := resolveDir(dir)
	if err != nil {
		return Candidate{}, false, err
	}
	candidates, err := scan(ctx, root, pattern, logger)
	if err != nil {
		return Candidate{}, false, err
	}

	best, ok := Newest(candidates)
	if !ok {
		logger.Debug("no files matched",
			logging.String("pattern", pattern),
			logging.String("directory", root),
		)
		return Candidate{}, false, nil
	}

	if opts.Window > 0 {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		if !WithinWindow(best.ModTime, now(), opts.Window) {
			logger.Debug("newest match is older than check period",
				logging.String("file", best.Path),
				logging.Time("modified", best.ModTime),
				logging.Duration("check_period", opts.Window),
			)
			return Candidate{}, false, nil
		}
	}
	return best, true, nil
}

// Newest folds candidates into the one with the latest modification time.
// Equal times resolve to the lexicographically smallest path.
func Newest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ModTime.After(best.ModTime) || (c.ModTime.Equal(best.ModTime) && c.Path < best.Path) {
			best = c
		}
	}
	return best, true
}

// WithinWindow reports whether modTime is no older than now minus window.
func WithinWindow(modTime, now time.Time, window time.Duration) bool {
	return !modTime.Before(now.Add(-window))
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("source directory is empty")
	}
	root := dir
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		root = filepath.Join(cwd, root)
	}
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("source directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source directory %s is not a directory", root)
	}
	return root, nil
}

func scan(ctx context.Context, root, pattern string, logger *slog.Logger) ([]Candidate, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("glob %q: %w", pattern, ErrBadPattern)
	}
	// The literal prefix of the pattern (including "./" and "../" segments)
	// is joined onto root so only the wildcard part is expanded.
	prefix, rest := doublestar.SplitPattern(slashed)
	base := filepath.Join(root, filepath.FromSlash(prefix))
	matches, err := doublestar.Glob(os.DirFS(base), rest)
	if err != nil {
		return nil, fmt.Errorf("glob %q in %s: %w", pattern, root, err)
	}

	candidates := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(base, filepath.FromSlash(match))
		info, err := os.Stat(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable match", "glob_entry_unreadable",
				logging.String("file", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions or whether the file was removed mid-scan"),
				logging.String(logging.FieldImpact, "file is not considered for delivery"),
			)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, Candidate{Path: path, ModTime: info.ModTime(), Size: info.Size()})
	}
	return candidates, nil
}
