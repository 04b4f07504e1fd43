package pipeline

import (
	"log/slog"
	"time"

	"skylapse/internal/assemble"
	"skylapse/internal/colormap"
	"skylapse/internal/config"
	"skylapse/internal/encode"
	"skylapse/internal/render"
)

// defaultShrinkTolerance allows grids up to 10% larger than the content area
// before composition fails for that aspect.
const defaultShrinkTolerance = 0.1

// FromConfig builds an Orchestrator and run Options from a validated
// configuration. Caption, units, and still export are filled in per run.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Orchestrator, Options, error) {
	variants := make([]Variant, 0, len(cfg.Render.AspectRatios)*len(cfg.Encode.Formats))
	for _, aspectName := range cfg.Render.AspectRatios {
		aspect, err := render.ParseAspect(aspectName)
		if err != nil {
			return nil, Options{}, err
		}
		for _, formatName := range cfg.Encode.Formats {
			format, err := encode.ParseFormat(formatName)
			if err != nil {
				return nil, Options{}, err
			}
			variants = append(variants, Variant{Aspect: aspect, Format: format})
		}
	}

	ramp, err := colormap.ByName(cfg.Color.Ramp)
	if err != nil {
		return nil, Options{}, err
	}

	opts := Options{
		Variants: variants,
		Render: render.Options{
			Square: render.CanvasSpec{
				Width:  cfg.Render.SquareSize,
				Height: cfg.Render.SquareSize,
				Margin: cfg.Render.MarginPx,
			},
			Vertical: render.CanvasSpec{
				Width:  cfg.Render.VerticalWidth,
				Height: cfg.Render.VerticalHeight,
				Margin: cfg.Render.MarginPx,
			},
			Legend:          cfg.Render.Legend,
			ShrinkTolerance: defaultShrinkTolerance,
		},
		Assemble: assemble.Options{
			TargetDuration: time.Duration(cfg.Animation.TargetDurationSeconds * float64(time.Second)),
			EndPause:       time.Duration(cfg.Animation.EndPauseSeconds * float64(time.Second)),
			FrameRate:      cfg.Animation.FrameRate,
		},
		Ramp:      ramp,
		OutputDir: cfg.Paths.OutputDir,
		Workers:   cfg.Render.Workers,
	}
	if cfg.Color.RangeMin != nil && cfg.Color.RangeMax != nil {
		opts.FixedRange = &[2]float64{*cfg.Color.RangeMin, *cfg.Color.RangeMax}
	}

	encoders := []encode.Encoder{
		encode.NewGIF(cfg.Encode.GifLoopCount, logger),
		encode.NewFFmpeg(cfg.Encode.FFmpegBinary, cfg.Encode.CRF, logger),
	}
	return New(encoders, logger), opts, nil
}
