package sender_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"latest-sender/internal/selection"
	"latest-sender/internal/sender"
	"latest-sender/internal/services"
	"latest-sender/internal/testsupport"
)

const fakeHook = "http://example.invalid/hook"

type upload struct {
	endpoint string
	path     string
	caption  string
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []upload
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, endpoint, path, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, upload{endpoint: endpoint, path: path, caption: caption})
	return f.err
}

func TestRunSendsNewestAndSkipsStale(t *testing.T) {
	now := time.Now()
	dbDir := t.TempDir()
	testsupport.WriteFileAt(t, dbDir, "db-1.sql", "old", now.Add(-3*time.Hour))
	newest := testsupport.WriteFileAt(t, dbDir, "db-2.sql", "new", now.Add(-time.Hour))
	testsupport.WriteFileAt(t, dbDir, "notes.txt", "ignored", now)

	logDir := t.TempDir()
	testsupport.WriteFileAt(t, logDir, "app.log", "stale", now.Add(-48*time.Hour))

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackup("db", dbDir, "*.sql", fakeHook, "1d"),
		testsupport.WithBackup("logs", logDir, "*.log", fakeHook, "1d"),
	)
	uploader := &fakeUploader{}
	s, err := sender.New(cfg, sender.Options{Uploader: uploader, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total() != 2 || report.Sent() != 1 || report.Skipped() != 1 || report.Failed() != 0 {
		t.Fatalf("unexpected counts total=%d sent=%d skipped=%d failed=%d",
			report.Total(), report.Sent(), report.Skipped(), report.Failed())
	}
	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", report.RunID, err)
	}

	if len(uploader.calls) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(uploader.calls))
	}
	call := uploader.calls[0]
	if call.path != newest {
		t.Fatalf("uploaded %s, want %s", call.path, newest)
	}
	if call.caption != "Latest backup from: db" {
		t.Fatalf("caption = %q", call.caption)
	}
	if call.endpoint != fakeHook {
		t.Fatalf("endpoint = %q", call.endpoint)
	}

	if got := report.Entries[1]; got.Outcome != sender.OutcomeSkipped || !strings.Contains(got.Reason, "1d") {
		t.Fatalf("logs entry = %+v, want skipped with period reason", got)
	}
}

func TestRunDryRunSelectsWithoutUploading(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteFileAt(t, dir, "backup.tar.gz", "payload", time.Now())

	cfg := testsupport.NewConfig(t, testsupport.WithBackup("home", dir, "*.tar.gz", fakeHook, ""))
	uploader := &fakeUploader{}
	s, err := sender.New(cfg, sender.Options{DryRun: true, Uploader: uploader})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(uploader.calls) != 0 {
		t.Fatalf("dry run uploaded %d files", len(uploader.calls))
	}
	entry := report.Entries[0]
	if entry.Outcome != sender.OutcomeDryRun || entry.Path != path || entry.Size != int64(len("payload")) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if report.Skipped() != 1 || report.Sent() != 0 {
		t.Fatalf("dry run counts sent=%d skipped=%d", report.Sent(), report.Skipped())
	}
}

func TestRunContinuesAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if strings.HasSuffix(r.URL.Path, "/bad") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "Invalid webhook token")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "a.bak", "a", time.Now())
	missing := filepath.Join(t.TempDir(), "gone")

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackup("missing", missing, "*.bak", srv.URL+"/ok", ""),
		testsupport.WithBackup("rejected", dir, "*.bak", srv.URL+"/bad", ""),
		testsupport.WithBackup("good", dir, "*.bak", srv.URL+"/ok", ""),
	)
	s, err := sender.New(cfg, sender.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total() != 3 || report.Failed() != 2 || report.Sent() != 1 {
		t.Fatalf("counts total=%d failed=%d sent=%d", report.Total(), report.Failed(), report.Sent())
	}

	if e := report.Entries[0]; !errors.Is(e.Err, services.ErrSelection) || e.Reason != "selection" {
		t.Fatalf("missing dir entry = %+v", e)
	}
	rejected := report.Entries[1]
	if !errors.Is(rejected.Err, services.ErrRejected) || rejected.Reason != "rejected" {
		t.Fatalf("rejected entry = %+v", rejected)
	}
	if !strings.Contains(rejected.Err.Error(), "Invalid webhook token") {
		t.Fatalf("rejected error lacks body: %v", rejected.Err)
	}
	if report.Entries[2].Outcome != sender.OutcomeSent {
		t.Fatalf("good entry = %+v", report.Entries[2])
	}
}

func TestRunInvalidGlobFailsOnlyThatBackup(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "dump.sql", "d", time.Now())

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackup("broken", dir, "[abc", fakeHook, ""),
		testsupport.WithBackup("good", dir, "*.sql", fakeHook, ""),
	)
	uploader := &fakeUploader{}
	s, err := sender.New(cfg, sender.Options{Uploader: uploader})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed() != 1 || report.Sent() != 1 {
		t.Fatalf("counts failed=%d sent=%d", report.Failed(), report.Sent())
	}
	broken := report.Entries[0]
	if !errors.Is(broken.Err, selection.ErrBadPattern) || !errors.Is(broken.Err, services.ErrSelection) {
		t.Fatalf("broken entry err = %v", broken.Err)
	}
	if len(uploader.calls) != 1 || filepath.Base(uploader.calls[0].path) != "dump.sql" {
		t.Fatalf("uploads = %+v", uploader.calls)
	}
}

func TestRunUnclassifiedUploadErrorCountsAsTransport(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "a.bak", "a", time.Now())
	cfg := testsupport.NewConfig(t, testsupport.WithBackup("a", dir, "*.bak", fakeHook, ""))

	s, err := sender.New(cfg, sender.Options{Uploader: &fakeUploader{err: errors.New("boom")}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e := report.Entries[0]; e.Outcome != sender.OutcomeFailed || !errors.Is(e.Err, services.ErrTransport) {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRunVerboseLogsCauseChain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackup("missing", filepath.Join(t.TempDir(), "gone"), "*", fakeHook, ""),
	)
	for _, verbose := range []bool{false, true} {
		buf.Reset()
		s, err := sender.New(cfg, sender.Options{Verbose: verbose, Logger: logger, Uploader: &fakeUploader{}})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, `"backup failed"`) {
			t.Fatalf("verbose=%v: missing failure log in %s", verbose, out)
		}
		if got := strings.Contains(out, "error_chain"); got != verbose {
			t.Fatalf("verbose=%v: error_chain present=%v", verbose, got)
		}
		if !strings.Contains(out, `"backup":"missing"`) {
			t.Fatalf("verbose=%v: failure log lacks backup name: %s", verbose, out)
		}
	}
}

func TestRunRefusesWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	held := flock.New(cfg.Delivery.LockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	s, err := sender.New(cfg, sender.Options{Uploader: &fakeUploader{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Run(context.Background()); !errors.Is(err, sender.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunWithoutLockIgnoresHeldLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLock())
	if cfg.LockEnabled() {
		t.Fatal("expected lock disabled")
	}
	s, err := sender.New(cfg, sender.Options{Uploader: &fakeUploader{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total() != 0 {
		t.Fatalf("expected empty report, got %d entries", report.Total())
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "a.bak", "a", time.Now())
	cfg := testsupport.NewConfig(t, testsupport.WithBackup("a", dir, "*.bak", fakeHook, ""))
	uploader := &fakeUploader{}
	s, err := sender.New(cfg, sender.Options{Uploader: uploader})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(uploader.calls) != 0 {
		t.Fatalf("cancelled run uploaded %d files", len(uploader.calls))
	}
}

func TestCaptionOverride(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "a.bak", "a", time.Now())
	cfg := testsupport.NewConfig(t,
		testsupport.WithCaptionTemplate("nightly {name} dump"),
		testsupport.WithBackup("pg", dir, "*.bak", fakeHook, ""),
		testsupport.WithBackup("custom", dir, "*.bak", fakeHook, ""),
	)
	cfg.Backups[1].Caption = "hand written"

	uploader := &fakeUploader{}
	s, err := sender.New(cfg, sender.Options{Uploader: uploader})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(uploader.calls) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploader.calls))
	}
	if uploader.calls[0].caption != "nightly pg dump" || uploader.calls[1].caption != "hand written" {
		t.Fatalf("captions = %q, %q", uploader.calls[0].caption, uploader.calls[1].caption)
	}
}

func TestInspectReportsStaleAndErrors(t *testing.T) {
	now := time.Now()
	dir := t.TempDir()
	testsupport.WriteFileAt(t, dir, "old.bak", "o", now.Add(-72*time.Hour))

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackup("stale", dir, "*.bak", fakeHook, "1d"),
		testsupport.WithBackup("open", dir, "*.bak", fakeHook, ""),
		testsupport.WithBackup("empty", dir, "*.none", fakeHook, ""),
		testsupport.WithBackup("broken", filepath.Join(dir, "missing"), "*", fakeHook, ""),
	)
	targets := sender.Inspect(context.Background(), cfg, nil, now)
	if len(targets) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(targets))
	}
	if !targets[0].Found || targets[0].Fresh {
		t.Fatalf("stale target = %+v", targets[0])
	}
	if !targets[1].Found || !targets[1].Fresh {
		t.Fatalf("open target = %+v", targets[1])
	}
	if targets[2].Found || targets[2].Err != nil {
		t.Fatalf("empty target = %+v", targets[2])
	}
	if !errors.Is(targets[3].Err, services.ErrSelection) {
		t.Fatalf("broken target err = %v", targets[3].Err)
	}
}
