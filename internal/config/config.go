package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"latest-sender/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Backup describes one watched location and the webhook its newest file is
// delivered to.
type Backup struct {
	Name            string `toml:"name"`
	SourceDirectory string `toml:"source_directory"`
	FilePattern     string `toml:"file_pattern"`
	WebhookURL      string `toml:"webhook_url"`
	// CheckPeriod limits delivery to files modified within this window
	// (e.g. "1d", "2d 3h"). Empty disables the recency check.
	CheckPeriod string `toml:"check_period"`
	// Caption overrides delivery.caption_template for this backup.
	Caption string `toml:"caption"`

	period time.Duration
}

// Delivery contains webhook client settings shared by every backup.
type Delivery struct {
	RequestTimeout  int    `toml:"request_timeout"`
	UserAgent       string `toml:"user_agent"`
	CaptionTemplate string `toml:"caption_template"`
	LockPath        string `toml:"lock_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for latest-sender.
//
// Configuration sections:
//   - Logging: log format, level, optional log directory and retention
//   - Delivery: webhook client timeout, user agent, caption, run lock
//   - Backups: the watched locations, processed in file order
type Config struct {
	Logging  Logging  `toml:"logging"`
	Delivery Delivery `toml:"delivery"`
	Backups  []Backup `toml:"backups"`
}

// DefaultConfigPath returns the absolute path to the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultUserConfigPath)
}

// Load locates, parses, and validates a configuration file. Unlike most
// settings, backups have no usable default, so a missing file is an error.
// The returned path is the file that was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "", "load config", "", err)
	}
	if !exists {
		return nil, resolvedPath, false, services.Wrap(services.ErrConfiguration, "", "load config",
			fmt.Sprintf("config file %s not found (create one with 'latest-sender config init')", resolvedPath), nil)
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		return nil, resolvedPath, true, services.Wrap(services.ErrConfiguration, "", "open config", resolvedPath, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, resolvedPath, true, services.Wrap(services.ErrConfiguration, "", "parse config", resolvedPath, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, true, services.Wrap(services.ErrConfiguration, "", "normalize config", "", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, true, services.Wrap(services.ErrConfiguration, "", "validate config", "", err)
	}

	return &cfg, resolvedPath, true, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(defaultProjectConfigName)
	if err != nil {
		return "", false, err
	}
	userPath, err := expandPath(defaultUserConfigPath)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}

	return projectPath, false, nil
}

// CheckPeriodDuration returns the parsed recency window. Zero means the
// backup has no recency check.
func (b Backup) CheckPeriodDuration() time.Duration {
	return b.period
}

// CaptionText renders the caption attached to an upload for this backup.
func (b Backup) CaptionText(template string) string {
	if caption := strings.TrimSpace(b.Caption); caption != "" {
		return caption
	}
	return strings.ReplaceAll(template, "{name}", b.Name)
}

// LockEnabled reports whether runs should hold the run lock.
func (c *Config) LockEnabled() bool {
	return c.Delivery.LockPath != lockDisabled
}

// RequestTimeout returns the webhook client timeout; zero keeps the HTTP
// client default.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Delivery.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := expandHome(pathValue)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func expandHome(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
		return filepath.Join(home, pathValue[2:]), nil
	}
	return pathValue, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
