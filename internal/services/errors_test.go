package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"latest-sender/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "nightly-db", "upload", "post failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"nightly-db", "upload", "post failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrSelection) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "backup failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "rejected", err: services.Wrap(services.ErrRejected, "a", "upload", "", nil), want: services.ErrRejected},
		{name: "local", err: fmt.Errorf("outer: %w", services.Wrap(services.ErrLocalIO, "a", "read", "", nil)), want: services.ErrLocalIO},
		{name: "plain", err: errors.New("plain"), want: nil},
		{name: "nil", err: nil, want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChainWalksCauses(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("deliver: %w", services.Wrap(services.ErrTransport, "db", "upload", "", root))
	chain := services.Chain(err)
	if len(chain) < 3 {
		t.Fatalf("expected at least 3 links, got %v", chain)
	}
	if chain[len(chain)-1] != "connection refused" {
		t.Fatalf("expected root cause last, got %v", chain)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := services.WithRunID(services.WithBackup(context.Background(), "db"), "run-1")
	if name, ok := services.BackupFromContext(ctx); !ok || name != "db" {
		t.Fatalf("backup = %q, %v", name, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id = %q, %v", id, ok)
	}
	if _, ok := services.BackupFromContext(services.WithBackup(context.Background(), "")); ok {
		t.Fatal("empty backup name should not be stored")
	}
}
