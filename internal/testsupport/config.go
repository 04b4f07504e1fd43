package testsupport

import (
	"path/filepath"
	"testing"

	"skylapse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerPath = filepath.Join(base, "logs", "ledger.db")
	// Small canvases keep render-heavy tests fast.
	cfg.Render.SquareSize = 64
	cfg.Render.VerticalWidth = 48
	cfg.Render.VerticalHeight = 96
	cfg.Render.MarginPx = 4
	cfg.Render.Legend = false
	cfg.Animation.TargetDurationSeconds = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithFormats restricts the configured output formats.
func WithFormats(formats ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Encode.Formats = formats
	}
}

// WithAspects restricts the configured aspect ratios.
func WithAspects(aspects ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Render.AspectRatios = aspects
	}
}

// WithFFmpeg points the mp4 encoder at a specific binary.
func WithFFmpeg(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Encode.FFmpegBinary = binary
	}
}
