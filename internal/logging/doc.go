// Package logging assembles structured slog loggers and formatting helpers used
// across latest-sender.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so per-backup code automatically
// tags log lines with the backup name and run identifier. Per-run log files in
// the configured log directory are written as JSON alongside the console
// stream and pruned by retention age. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
