package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	LedgerPath string `toml:"ledger_path"`
}

// Render contains frame rendering and canvas composition settings.
type Render struct {
	AspectRatios []string `toml:"aspect_ratios"`
	Legend       bool     `toml:"legend"`
	Workers      int      `toml:"workers"`
	// SquareSize is the edge length in pixels of the 1:1 canvas.
	SquareSize int `toml:"square_size"`
	// VerticalWidth/VerticalHeight describe the 9:16 canvas in pixels.
	VerticalWidth  int `toml:"vertical_width"`
	VerticalHeight int `toml:"vertical_height"`
	// MarginPx reserves space around the grid for overlays.
	MarginPx int `toml:"margin_px"`
}

// Animation contains timing settings for the assembled animation.
type Animation struct {
	TargetDurationSeconds float64 `toml:"target_duration_seconds"`
	EndPauseSeconds       float64 `toml:"end_pause_seconds"`
	// FrameRate overrides the derived mp4 frame rate when > 0.
	FrameRate int `toml:"frame_rate"`
}

// Encode contains container encoding settings.
type Encode struct {
	Formats      []string `toml:"formats"`
	GifLoopCount int      `toml:"gif_loop_count"`
	FFmpegBinary string   `toml:"ffmpeg_binary"`
	// CRF is the fixed x264 quality setting; lower is higher quality.
	CRF int `toml:"crf"`
}

// Color contains color scale settings.
type Color struct {
	Ramp string `toml:"ramp"`
	// RangeMin/RangeMax pin the scale to a fixed range when both are set,
	// so animations across locations or periods share one scale.
	RangeMin *float64 `toml:"range_min"`
	RangeMax *float64 `toml:"range_max"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for skylapse.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and run-ledger locations
//   - Render: aspect ratios, canvas geometry, legend, parallelism
//   - Animation: target duration, end pause, mp4 frame rate
//   - Encode: container formats, gif looping, ffmpeg settings
//   - Color: color ramp and optional fixed value range
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Render    Render    `toml:"render"`
	Animation Animation `toml:"animation"`
	Encode    Encode    `toml:"encode"`
	Color     Color     `toml:"color"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/skylapse/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("skylapse.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.LogDir, "ledger.db")
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}

	c.Render.AspectRatios = normalizeSet(c.Render.AspectRatios)
	c.Encode.Formats = normalizeSet(c.Encode.Formats)

	if strings.TrimSpace(c.Encode.FFmpegBinary) == "" {
		c.Encode.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Color.Ramp) == "" {
		c.Color.Ramp = defaultColorRamp
	}
	c.Color.Ramp = strings.ToLower(strings.TrimSpace(c.Color.Ramp))

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir, filepath.Dir(c.Paths.LedgerPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
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
