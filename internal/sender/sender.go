package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"latest-sender/internal/config"
	"latest-sender/internal/logging"
	"latest-sender/internal/selection"
	"latest-sender/internal/services"
	"latest-sender/internal/webhook"
)

// Uploader delivers a file to a webhook. *webhook.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, endpoint, path, caption string) error
}

// Options controls a Sender.
type Options struct {
	// DryRun selects files without uploading them.
	DryRun bool
	// Verbose logs the full cause chain of every failure at debug level.
	Verbose bool
	Logger  *slog.Logger
	// Uploader overrides the webhook client built from the config.
	Uploader Uploader
	// Now overrides the clock used for recency checks and timing.
	Now func() time.Time
}

// Sender processes every backup in a config.
type Sender struct {
	cfg      *config.Config
	uploader Uploader
	logger   *slog.Logger
	dryRun   bool
	verbose  bool
	now      func() time.Time
}

// New builds a Sender. One uploader is shared by every backup of a run.
func New(cfg *config.Config, opts Options) (*Sender, error) {
	if cfg == nil {
		return nil, errors.New("sender requires config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	uploader := opts.Uploader
	if uploader == nil {
		uploader = webhook.New(
			webhook.WithUserAgent(cfg.Delivery.UserAgent),
			webhook.WithTimeout(cfg.RequestTimeout()),
			webhook.WithLogger(logging.NewComponentLogger(logger, "webhook")),
		)
	}
	return &Sender{
		cfg:      cfg,
		uploader: uploader,
		logger:   logging.NewComponentLogger(logger, "sender"),
		dryRun:   opts.DryRun,
		verbose:  opts.Verbose,
		now:      now,
	}, nil
}

// Run processes every backup sequentially and returns the aggregated report.
// The returned error is non-nil only when the run could not start (for
// example when another run holds the lock); per-backup failures are recorded
// in the report instead.
func (s *Sender) Run(ctx context.Context) (*Report, error) {
	if s.cfg.LockEnabled() {
		lock, err := acquireRunLock(s.cfg.Delivery.LockPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.release(); err != nil {
				s.logger.Warn("failed to release run lock",
					logging.String("lock", lock.path),
					logging.Error(err),
				)
			}
		}()
	}

	report := &Report{RunID: uuid.NewString(), Started: s.now()}
	ctx = services.WithRunID(ctx, report.RunID)
	runLogger := logging.WithContext(ctx, s.logger)

	if len(s.cfg.Backups) == 0 {
		runLogger.Info("no backups configured")
		return report, nil
	}

	runLogger.Info("run started",
		logging.Int("backups", len(s.cfg.Backups)),
		logging.Bool("dry_run", s.dryRun),
		logging.String(logging.FieldEventType, "run_started"),
	)

	for _, backup := range s.cfg.Backups {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Entries = append(report.Entries, s.processBackup(ctx, backup))
	}

	report.Duration = s.now().Sub(report.Started)
	runLogger.Info("run finished",
		logging.Int("total", report.Total()),
		logging.Int("sent", report.Sent()),
		logging.Int("skipped", report.Skipped()),
		logging.Int("failed", report.Failed()),
		logging.Duration("duration", report.Duration),
		logging.String(logging.FieldEventType, "run_finished"),
	)
	return report, nil
}

func (s *Sender) processBackup(ctx context.Context, backup config.Backup) Entry {
	ctx = services.WithBackup(ctx, backup.Name)
	logger := logging.WithContext(ctx, s.logger)
	entry := Entry{Backup: backup.Name}

	logger.Debug("processing backup",
		logging.String("directory", backup.SourceDirectory),
		logging.String("pattern", backup.FilePattern),
		logging.Duration("check_period", backup.CheckPeriodDuration()),
	)

	candidate, found, err := selection.Find(ctx, backup.SourceDirectory, backup.FilePattern, selection.Options{
		Window: backup.CheckPeriodDuration(),
		Now:    s.now,
		Logger: logger,
	})
	if err != nil {
		return s.fail(logger, entry, services.Wrap(services.ErrSelection, backup.Name, "select", "find newest file", err))
	}
	if !found {
		entry.Outcome = OutcomeSkipped
		entry.Reason = skipReason(backup)
		logger.Info("no file to send",
			logging.String("reason", entry.Reason),
			logging.String(logging.FieldEventType, "backup_skipped"),
		)
		return entry
	}

	entry.Path = candidate.Path
	entry.Size = candidate.Size
	entry.ModTime = candidate.ModTime

	if s.dryRun {
		entry.Outcome = OutcomeDryRun
		entry.Reason = "dry run"
		logger.Info("would send latest file",
			logging.String("file", candidate.Path),
			logging.Int64("size_bytes", candidate.Size),
			logging.Time("modified", candidate.ModTime),
			logging.String(logging.FieldEventType, "backup_dry_run"),
		)
		return entry
	}

	caption := backup.CaptionText(s.cfg.Delivery.CaptionTemplate)
	if err := s.uploader.Upload(ctx, backup.WebhookURL, candidate.Path, caption); err != nil {
		marker := services.Classify(err)
		if marker == nil {
			marker = services.ErrTransport
		}
		return s.fail(logger, entry, services.Wrap(marker, backup.Name, "upload", candidate.Path, err))
	}

	entry.Outcome = OutcomeSent
	logger.Info("sent latest file",
		logging.String("file", candidate.Path),
		logging.Int64("size_bytes", candidate.Size),
		logging.Time("modified", candidate.ModTime),
		logging.String(logging.FieldEventType, "backup_sent"),
	)
	return entry
}

func (s *Sender) fail(logger *slog.Logger, entry Entry, err error) Entry {
	entry.Outcome = OutcomeFailed
	entry.Err = err
	entry.Reason = kindLabel(err)

	logging.ErrorWithContext(logger, "backup failed", "backup_failed",
		logging.String(logging.FieldErrorKind, entry.Reason),
		logging.String(logging.FieldErrorHint, hintFor(err)),
		logging.Error(err),
	)
	if s.verbose {
		logger.Debug("failure cause chain",
			logging.Any("error_chain", services.Chain(err)),
		)
	}
	return entry
}

func skipReason(backup config.Backup) string {
	if backup.CheckPeriodDuration() > 0 {
		return fmt.Sprintf("no matching file modified within %s", backup.CheckPeriod)
	}
	return "no matching file"
}

func kindLabel(err error) string {
	switch services.Classify(err) {
	case services.ErrConfiguration:
		return "configuration"
	case services.ErrLocalIO:
		return "local_io"
	case services.ErrTransport:
		return "transport"
	case services.ErrRejected:
		return "rejected"
	default:
		return "selection"
	}
}

func hintFor(err error) string {
	switch services.Classify(err) {
	case services.ErrLocalIO:
		return "check the file is readable by the latest-sender user"
	case services.ErrTransport:
		return "check network connectivity to the webhook host"
	case services.ErrRejected:
		return "check the webhook URL and the endpoint's upload limits"
	default:
		return "check source_directory and file_pattern"
	}
}
