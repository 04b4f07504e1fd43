package config

const (
	defaultOutputDir       = "~/.local/share/skylapse/output"
	defaultLogDir          = "~/.local/share/skylapse/logs"
	defaultSquareSize      = 720
	defaultVerticalWidth   = 720
	defaultVerticalHeight  = 1280
	defaultMarginPx        = 48
	defaultTargetDuration  = 6.0
	defaultGifLoopCount    = 0
	defaultFFmpegBinary    = "ffmpeg"
	defaultCRF             = 23
	defaultColorRamp       = "thermal"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLegendEnabled   = true
	defaultEndPauseSeconds = 0.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Render: Render{
			AspectRatios:   []string{"square", "vertical"},
			Legend:         defaultLegendEnabled,
			SquareSize:     defaultSquareSize,
			VerticalWidth:  defaultVerticalWidth,
			VerticalHeight: defaultVerticalHeight,
			MarginPx:       defaultMarginPx,
		},
		Animation: Animation{
			TargetDurationSeconds: defaultTargetDuration,
			EndPauseSeconds:       defaultEndPauseSeconds,
		},
		Encode: Encode{
			Formats:      []string{"gif", "mp4"},
			GifLoopCount: defaultGifLoopCount,
			FFmpegBinary: defaultFFmpegBinary,
			CRF:          defaultCRF,
		},
		Color: Color{
			Ramp: defaultColorRamp,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
