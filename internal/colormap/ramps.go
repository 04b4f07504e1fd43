package colormap

import (
	"fmt"
	"image/color"
	"sort"
)

// Stop anchors a color at a normalized position in [0, 1].
type Stop struct {
	Pos float64
	C   color.RGBA
}

// Ramp is an ordered sequence of color stops interpolated linearly between
// neighbors.
type Ramp struct {
	name  string
	stops []Stop
}

// Thermal is the temperature ramp: blue through mediumslateblue to red.
func Thermal() Ramp {
	return Ramp{
		name: "thermal",
		stops: []Stop{
			{Pos: 0.0, C: color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}},
			{Pos: 0.5, C: color.RGBA{R: 0x7b, G: 0x68, B: 0xee, A: 0xff}},
			{Pos: 1.0, C: color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}},
		},
	}
}

// Muted is a desaturated ramp for background or comparison renders.
func Muted() Ramp {
	return Ramp{
		name: "muted",
		stops: []Stop{
			{Pos: 0.0, C: color.RGBA{R: 0xa9, G: 0xa9, B: 0xa9, A: 0xff}},
			{Pos: 1.0, C: color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}},
		},
	}
}

// ByName resolves a configured ramp name.
func ByName(name string) (Ramp, error) {
	switch name {
	case "thermal":
		return Thermal(), nil
	case "muted":
		return Muted(), nil
	default:
		return Ramp{}, fmt.Errorf("unknown color ramp %q", name)
	}
}

// Custom builds a ramp from explicit stops. Stops are sorted by position;
// positions outside [0, 1] are rejected.
func Custom(name string, stops []Stop) (Ramp, error) {
	if len(stops) < 2 {
		return Ramp{}, fmt.Errorf("ramp %q needs at least 2 stops", name)
	}
	ordered := make([]Stop, len(stops))
	copy(ordered, stops)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Pos < ordered[j].Pos })
	for _, stop := range ordered {
		if stop.Pos < 0 || stop.Pos > 1 {
			return Ramp{}, fmt.Errorf("ramp %q stop position %v outside [0, 1]", name, stop.Pos)
		}
	}
	return Ramp{name: name, stops: ordered}, nil
}

// Name returns the ramp identifier.
func (r Ramp) Name() string { return r.name }

func (r Ramp) at(t float64) color.RGBA {
	stops := r.stops
	if t <= stops[0].Pos {
		return stops[0].C
	}
	last := stops[len(stops)-1]
	if t >= last.Pos {
		return last.C
	}
	for i := 1; i < len(stops); i++ {
		if t > stops[i].Pos {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		span := hi.Pos - lo.Pos
		if span <= 0 {
			return hi.C
		}
		f := (t - lo.Pos) / span
		return color.RGBA{
			R: lerp(lo.C.R, hi.C.R, f),
			G: lerp(lo.C.G, hi.C.G, f),
			B: lerp(lo.C.B, hi.C.B, f),
			A: 0xff,
		}
	}
	return last.C
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}
