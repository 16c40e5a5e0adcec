package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrSelection     = errors.New("selection error")
	ErrLocalIO       = errors.New("local i/o error")
	ErrTransport     = errors.New("transport failure")
	ErrRejected      = errors.New("remote rejection")
)

// Wrap builds an error message that includes backup context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, backup, operation, message string, err error) error {
	detail := buildDetail(backup, operation, message)
	if marker == nil {
		marker = ErrSelection
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns the marker carried by err, or nil when err carries none.
func Classify(err error) error {
	for _, marker := range []error{ErrConfiguration, ErrSelection, ErrLocalIO, ErrTransport, ErrRejected} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// Chain flattens the wrapped causes of err, outermost first.
func Chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		switch unwrapped := err.(type) {
		case interface{ Unwrap() []error }:
			next := unwrapped.Unwrap()
			if len(next) == 0 {
				return out
			}
			err = next[len(next)-1]
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		default:
			return out
		}
	}
	return out
}

func buildDetail(backup, operation, message string) string {
	parts := make([]string, 0, 3)
	if backup = strings.TrimSpace(backup); backup != "" {
		parts = append(parts, backup)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "backup failure"
	}
	return strings.Join(parts, ": ")
}
