package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	return c.validateBackups()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.RequestTimeout < 0 {
		return errors.New("delivery.request_timeout must be >= 0 (seconds)")
	}
	return nil
}

func (c *Config) validateBackups() error {
	for i, b := range c.Backups {
		label := fmt.Sprintf("backups[%d]", i)
		if b.Name != "" {
			label = fmt.Sprintf("%s (%s)", label, b.Name)
		}
		if b.Name == "" {
			return fmt.Errorf("%s.name must be set", label)
		}
		if strings.TrimSpace(b.SourceDirectory) == "" {
			return fmt.Errorf("%s.source_directory must be set", label)
		}
		if b.FilePattern == "" {
			return fmt.Errorf("%s.file_pattern must be set", label)
		}
		if err := validateWebhookURL(b.WebhookURL); err != nil {
			return fmt.Errorf("%s.webhook_url: %w", label, err)
		}
	}
	return nil
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must be set (or export %s)", webhookURLEnv)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("host must be set")
	}
	return nil
}

// Warnings reports problems that only affect individual backups at run time.
// An invalid glob fails that backup's selection while the others still run,
// so it is surfaced here instead of failing Validate.
func (c *Config) Warnings() []string {
	var out []string
	for i, b := range c.Backups {
		if !doublestar.ValidatePattern(filepath.ToSlash(b.FilePattern)) {
			out = append(out, fmt.Sprintf("backups[%d] (%s).file_pattern %q is not a valid glob", i, b.Name, b.FilePattern))
		}
	}
	return out
}
