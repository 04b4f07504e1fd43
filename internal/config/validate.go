package config

import (
	"errors"
	"fmt"
)

var knownAspects = map[string]struct{}{"square": {}, "vertical": {}}

var knownFormats = map[string]struct{}{"gif": {}, "mp4": {}}

var knownRamps = map[string]struct{}{"thermal": {}, "muted": {}}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateAnimation(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateColor(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	if len(c.Render.AspectRatios) == 0 {
		return errors.New("render.aspect_ratios must name at least one of square, vertical")
	}
	for _, aspect := range c.Render.AspectRatios {
		if _, ok := knownAspects[aspect]; !ok {
			return fmt.Errorf("render.aspect_ratios: unknown aspect ratio %q", aspect)
		}
	}
	if c.Render.Workers < 0 {
		return errors.New("render.workers must be >= 0")
	}
	if c.Render.SquareSize <= 0 || c.Render.SquareSize%2 != 0 {
		return errors.New("render.square_size must be a positive even pixel count")
	}
	if c.Render.VerticalWidth <= 0 || c.Render.VerticalWidth%2 != 0 {
		return errors.New("render.vertical_width must be a positive even pixel count")
	}
	if c.Render.VerticalHeight <= 0 || c.Render.VerticalHeight%2 != 0 {
		return errors.New("render.vertical_height must be a positive even pixel count")
	}
	if c.Render.MarginPx < 0 {
		return errors.New("render.margin_px must be >= 0")
	}
	return nil
}

func (c *Config) validateAnimation() error {
	if c.Animation.TargetDurationSeconds <= 0 {
		return errors.New("animation.target_duration_seconds must be > 0")
	}
	if c.Animation.EndPauseSeconds < 0 {
		return errors.New("animation.end_pause_seconds must be >= 0")
	}
	if c.Animation.FrameRate < 0 {
		return errors.New("animation.frame_rate must be >= 0 (0 derives it from the target duration)")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if len(c.Encode.Formats) == 0 {
		return errors.New("encode.formats must name at least one of gif, mp4")
	}
	for _, format := range c.Encode.Formats {
		if _, ok := knownFormats[format]; !ok {
			return fmt.Errorf("encode.formats: unknown format %q", format)
		}
	}
	if c.Encode.GifLoopCount < 0 {
		return errors.New("encode.gif_loop_count must be >= 0 (0 loops forever)")
	}
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return errors.New("encode.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateColor() error {
	if _, ok := knownRamps[c.Color.Ramp]; !ok {
		return fmt.Errorf("color.ramp: unknown ramp %q", c.Color.Ramp)
	}
	if (c.Color.RangeMin == nil) != (c.Color.RangeMax == nil) {
		return errors.New("color.range_min and color.range_max must be set together")
	}
	if c.Color.RangeMin != nil && *c.Color.RangeMin >= *c.Color.RangeMax {
		return errors.New("color.range_min must be less than color.range_max")
	}
	return nil
}
