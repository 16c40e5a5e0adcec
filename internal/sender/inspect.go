package sender

import (
	"context"
	"log/slog"
	"time"

	"latest-sender/internal/config"
	"latest-sender/internal/logging"
	"latest-sender/internal/selection"
	"latest-sender/internal/services"
)

// Target describes what a run would currently pick for one backup.
type Target struct {
	Backup    config.Backup
	Candidate selection.Candidate
	Found     bool
	// Fresh is false when the newest match is older than the check period.
	Fresh bool
	Err   error
}

// Inspect selects the newest file for every backup without uploading. Unlike
// a run it reports the newest match even when it is outside the check period,
// with Fresh set accordingly.
func Inspect(ctx context.Context, cfg *config.Config, logger *slog.Logger, now time.Time) []Target {
	if logger == nil {
		logger = logging.NewNop()
	}
	targets := make([]Target, 0, len(cfg.Backups))
	for _, backup := range cfg.Backups {
		bctx := services.WithBackup(ctx, backup.Name)
		candidate, found, err := selection.Find(bctx, backup.SourceDirectory, backup.FilePattern, selection.Options{
			Logger: logging.WithContext(bctx, logger),
		})
		target := Target{Backup: backup, Candidate: candidate, Found: found}
		if err != nil {
			target.Err = services.Wrap(services.ErrSelection, backup.Name, "select", "find newest file", err)
		}
		if found {
			window := backup.CheckPeriodDuration()
			target.Fresh = window <= 0 || selection.WithinWindow(candidate.ModTime, now, window)
		}
		targets = append(targets, target)
	}
	return targets
}
