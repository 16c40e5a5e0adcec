package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeDelivery(); err != nil {
		return err
	}
	return c.normalizeBackups()
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDelivery() error {
	c.Delivery.UserAgent = strings.TrimSpace(c.Delivery.UserAgent)
	if c.Delivery.UserAgent == "" {
		c.Delivery.UserAgent = defaultUserAgent
	}
	if strings.TrimSpace(c.Delivery.CaptionTemplate) == "" {
		c.Delivery.CaptionTemplate = defaultCaptionTemplate
	}
	lockPath := strings.TrimSpace(c.Delivery.LockPath)
	switch lockPath {
	case lockDisabled:
		c.Delivery.LockPath = lockDisabled
	case "":
		c.Delivery.LockPath = defaultLockPath()
	default:
		expanded, err := expandPath(lockPath)
		if err != nil {
			return fmt.Errorf("delivery.lock_path: %w", err)
		}
		c.Delivery.LockPath = expanded
	}
	return nil
}

func (c *Config) normalizeBackups() error {
	fallbackURL := ""
	if value, ok := os.LookupEnv(webhookURLEnv); ok {
		fallbackURL = strings.TrimSpace(value)
	}
	for i := range c.Backups {
		b := &c.Backups[i]
		b.Name = strings.TrimSpace(b.Name)
		b.FilePattern = strings.TrimSpace(b.FilePattern)
		b.WebhookURL = strings.TrimSpace(b.WebhookURL)
		if b.WebhookURL == "" {
			b.WebhookURL = fallbackURL
		}
		// Relative directories stay relative; they resolve against the
		// working directory when the backup is scanned.
		dir, err := expandHome(strings.TrimSpace(b.SourceDirectory))
		if err != nil {
			return fmt.Errorf("backups[%d].source_directory: %w", i, err)
		}
		b.SourceDirectory = dir
		b.CheckPeriod = strings.TrimSpace(b.CheckPeriod)
		b.period = 0
		if b.CheckPeriod != "" {
			period, err := ParsePeriod(b.CheckPeriod)
			if err != nil {
				return fmt.Errorf("backups[%d] (%s).check_period: %w", i, b.Name, err)
			}
			b.period = period
		}
	}
	return nil
}
