package config

import (
	"os"
	"path/filepath"
)

const (
	defaultProjectConfigName = "config.toml"
	defaultUserConfigPath    = "~/.config/latest-sender/config.toml"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultUserAgent         = "latest-sender/0.1.0"
	defaultCaptionTemplate   = "Latest backup from: {name}"
	lockFileName             = "latest-sender.lock"
	lockDisabled             = "-"
	webhookURLEnv            = "LATEST_SENDER_WEBHOOK_URL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Delivery: Delivery{
			UserAgent:       defaultUserAgent,
			CaptionTemplate: defaultCaptionTemplate,
			LockPath:        defaultLockPath(),
		},
	}
}

func defaultLockPath() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && base != "" {
		return filepath.Join(base, lockFileName)
	}
	return filepath.Join(os.TempDir(), lockFileName)
}
