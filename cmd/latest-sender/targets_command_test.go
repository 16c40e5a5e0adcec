package main

import (
	"path/filepath"
	"testing"
	"time"

	"latest-sender/internal/testsupport"
)

func TestTargetsListsSelections(t *testing.T) {
	srv, hits := newWebhookServer(t, 204)
	fresh := t.TempDir()
	stale := t.TempDir()
	testsupport.WriteFileAt(t, fresh, "new.bak", "n", time.Now())
	testsupport.WriteFileAt(t, stale, "old.bak", "o", time.Now().Add(-72*time.Hour))

	_, path := testsupport.NewConfigFile(t,
		testsupport.WithBackup("fresh", fresh, "*.bak", srv.URL, "1d"),
		testsupport.WithBackup("stale", stale, "*.bak", srv.URL, "1d"),
		testsupport.WithBackup("empty", fresh, "*.none", srv.URL, ""),
		testsupport.WithBackup("broken", filepath.Join(fresh, "missing"), "*", srv.URL, ""),
	)

	out, _, err := runCLI(t, "--config", path, "targets")
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("targets must not upload, got %d requests", hits.Load())
	}
	for _, want := range []string{"new.bak", "old.bak", "ready", "stale", "no match", "error:"} {
		requireContains(t, out, want)
	}
}
