package testsupport

import (
	"path/filepath"
	"testing"

	"hlsmaker/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Tools.SearchDirs = []string{filepath.Join(base, "bin")}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedTools writes stub transcoder and segmenter scripts into the
// config's search directory. Empty bodies produce scripts that exit 0.
func WithStubbedTools(transcoderBody, segmenterBody string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if transcoderBody == "" {
			transcoderBody = "exit 0"
		}
		if segmenterBody == "" {
			segmenterBody = "exit 0"
		}
		WriteScript(b.t, binDir, b.cfg.Tools.Transcoder, transcoderBody)
		WriteScript(b.t, binDir, b.cfg.Tools.Segmenter, segmenterBody)
	}
}

// WithHistoryDisabled turns off the SQLite run history.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// BinDir returns the directory holding stubbed tools.
func BinDir(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "bin")
}
