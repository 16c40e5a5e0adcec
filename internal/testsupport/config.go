package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"latest-sender/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a loaded config rooted in a per-test temp directory.
// The config is written to disk and read back through config.Load so check
// periods and paths are normalized exactly as in production.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	cfg, _ := NewConfigFile(t, opts...)
	return cfg
}

// NewConfigFile is NewConfig that also returns the written config path.
func NewConfigFile(t testing.TB, opts ...ConfigOption) (*config.Config, string) {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Delivery.LockPath = filepath.Join(base, "run.lock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	path := WriteConfig(t, filepath.Join(base, "config.toml"), builder.cfg)
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	return loaded, path
}

// WriteConfig marshals cfg as TOML to path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// WithBackup appends a backup entry. An empty checkPeriod disables the
// recency check.
func WithBackup(name, dir, pattern, webhookURL, checkPeriod string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backups = append(b.cfg.Backups, config.Backup{
			Name:            name,
			SourceDirectory: dir,
			FilePattern:     pattern,
			WebhookURL:      webhookURL,
			CheckPeriod:     checkPeriod,
		})
	}
}

// WithLogDir enables per-run log files under dir.
func WithLogDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = dir
	}
}

// WithoutLock disables the run lock.
func WithoutLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Delivery.LockPath = "-"
	}
}

// WithCaptionTemplate overrides the caption template.
func WithCaptionTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Delivery.CaptionTemplate = template
	}
}
