package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"latest-sender/internal/config"
	"latest-sender/internal/logging"
)

type rootOptions struct {
	configPath string
	dryRun     bool
	verbose    bool
	strict     bool
}

type commandContext struct {
	opts *rootOptions

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(opts *rootOptions) *commandContext {
	return &commandContext{opts: opts}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.opts != nil {
			path = strings.TrimSpace(c.opts.configPath)
		}
		cfg, resolved, _, err := config.Load(path)
		c.configPath = resolved
		if err != nil {
			c.configErr = err
			return
		}
		if c.opts != nil && c.opts.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger and prunes expired run logs. The returned
// path is this run's log file, or "" when file logging is off.
func (c *commandContext) newLogger(started time.Time) (*slog.Logger, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	logger, logPath, err := logging.NewFromConfig(cfg, started)
	if err != nil {
		return nil, "", err
	}
	if logPath != "" {
		logging.CleanupOldLogs(logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, logPath)
	}
	return logger, logPath, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
