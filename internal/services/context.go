package services

import "context"

type contextKey string

const (
	backupKey contextKey = "backup"
	runIDKey  contextKey = "run_id"
)

// WithBackup annotates context with the name of the backup being processed.
func WithBackup(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, backupKey, name)
}

// BackupFromContext returns the backup name if present.
func BackupFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(backupKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the correlation identifier of one run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
