package colormap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"skylapse/internal/faults"
	"skylapse/internal/series"
)

// missingColor marks cells with no observation. It sits outside both ramps so
// gaps never read as data.
var missingColor = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

// Scale maps scalar values to colors against a fixed range. It is computed
// once per pipeline run and never recomputed, which is what keeps colors
// stable across every frame of an animation.
type Scale struct {
	min  float64
	max  float64
	ramp Ramp
}

// FromRange builds a Scale pinned to an explicit [min, max] range. Use this
// when animations across locations or periods must share one scale.
func FromRange(min, max float64, ramp Ramp) (Scale, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Scale{}, faults.Wrap(faults.ErrConfiguration, "colormap", "scale",
			"range bounds must be finite", nil)
	}
	if min >= max {
		return Scale{}, faults.Wrap(faults.ErrConfiguration, "colormap", "scale",
			fmt.Sprintf("range min %v must be less than max %v", min, max), nil)
	}
	if len(ramp.stops) == 0 {
		return Scale{}, faults.Wrap(faults.ErrConfiguration, "colormap", "scale",
			"ramp has no color stops", nil)
	}
	return Scale{min: min, max: max, ramp: ramp}, nil
}

// FromSeries derives a Scale from the global min/max observed across the whole
// series. A flat series is widened by half a unit either side so the scale
// keeps a nonzero span.
func FromSeries(s *series.Series, ramp Ramp) (Scale, error) {
	min, max := s.Range()
	if min == max {
		min -= 0.5
		max += 0.5
	}
	return FromRange(min, max, ramp)
}

// Min returns the lower bound of the scale.
func (s Scale) Min() float64 { return s.min }

// Max returns the upper bound of the scale.
func (s Scale) Max() float64 { return s.max }

// Color maps one value to a pixel color. Out-of-range values clamp to the
// scale endpoints; missing values map to the sentinel color, never an
// interpolated one.
func (s Scale) Color(v float64) color.RGBA {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingColor
	}
	t := (v - s.min) / (s.max - s.min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return s.ramp.at(t)
}

// MissingColor returns the sentinel color used for missing observations.
func (s Scale) MissingColor() color.RGBA { return missingColor }

// Apply renders a grid to a raster, one pixel per cell, row 0 at the top.
func (s Scale) Apply(g series.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			img.SetRGBA(x, y, s.Color(g.At(x, y)))
		}
	}
	return img
}
