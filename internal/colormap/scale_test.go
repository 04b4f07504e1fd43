package colormap_test

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"skylapse/internal/colormap"
	"skylapse/internal/faults"
	"skylapse/internal/series"
)

func testSeries(t *testing.T, values ...float64) *series.Series {
	t.Helper()
	epoch := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]series.Sample, len(values))
	for i, v := range values {
		g, err := series.UniformGrid(2, 2, v)
		if err != nil {
			t.Fatal(err)
		}
		samples[i] = series.Sample{Timestamp: epoch.Add(time.Duration(i) * time.Hour), Grid: g}
	}
	s, err := series.New(series.Metadata{SourceID: "test"}, samples)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFromSeriesUsesGlobalRange(t *testing.T) {
	scale, err := colormap.FromSeries(testSeries(t, -10, 0, 30), colormap.Thermal())
	if err != nil {
		t.Fatalf("FromSeries: %v", err)
	}
	if scale.Min() != -10 || scale.Max() != 30 {
		t.Fatalf("unexpected range [%v, %v]", scale.Min(), scale.Max())
	}
}

func TestFromSeriesWidensFlatSeries(t *testing.T) {
	scale, err := colormap.FromSeries(testSeries(t, 5, 5, 5), colormap.Thermal())
	if err != nil {
		t.Fatalf("FromSeries: %v", err)
	}
	if scale.Min() >= scale.Max() {
		t.Fatalf("flat series produced empty range [%v, %v]", scale.Min(), scale.Max())
	}
}

func TestFromRangeRejectsInvertedRange(t *testing.T) {
	_, err := colormap.FromRange(10, 10, colormap.Thermal())
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestColorClampsToEndpoints(t *testing.T) {
	scale, err := colormap.FromRange(0, 10, colormap.Thermal())
	if err != nil {
		t.Fatal(err)
	}
	blue := color.RGBA{B: 0xff, A: 0xff}
	red := color.RGBA{R: 0xff, A: 0xff}
	if got := scale.Color(-100); got != blue {
		t.Fatalf("below-range value mapped to %v, want %v", got, blue)
	}
	if got := scale.Color(100); got != red {
		t.Fatalf("above-range value mapped to %v, want %v", got, red)
	}
}

func TestColorIsDeterministicForEqualValues(t *testing.T) {
	scale, err := colormap.FromRange(-5, 25, colormap.Thermal())
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{-5, 0, 7.3, 25} {
		if scale.Color(v) != scale.Color(v) {
			t.Fatalf("color for %v not stable", v)
		}
	}
}

func TestColorMapsMissingToSentinel(t *testing.T) {
	scale, err := colormap.FromRange(0, 1, colormap.Thermal())
	if err != nil {
		t.Fatal(err)
	}
	if got := scale.Color(math.NaN()); got != scale.MissingColor() {
		t.Fatalf("NaN mapped to %v, want sentinel %v", got, scale.MissingColor())
	}
	if got := scale.Color(math.Inf(-1)); got != scale.MissingColor() {
		t.Fatalf("-Inf mapped to %v, want sentinel %v", got, scale.MissingColor())
	}
}

func TestColorInterpolatesMidpoint(t *testing.T) {
	scale, err := colormap.FromRange(0, 1, colormap.Thermal())
	if err != nil {
		t.Fatal(err)
	}
	mid := scale.Color(0.5)
	want := color.RGBA{R: 0x7b, G: 0x68, B: 0xee, A: 0xff}
	if mid != want {
		t.Fatalf("midpoint mapped to %v, want %v", mid, want)
	}
}

func TestApplyPaintsEveryCell(t *testing.T) {
	rows := [][]float64{
		{0, math.NaN()},
		{1, 0.5},
	}
	g, err := series.GridFromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	scale, err := colormap.FromRange(0, 1, colormap.Thermal())
	if err != nil {
		t.Fatal(err)
	}
	img := scale.Apply(g)
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected raster bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 0); got != scale.MissingColor() {
		t.Fatalf("missing cell painted %v", got)
	}
	if got := img.RGBAAt(0, 0); (got != color.RGBA{B: 0xff, A: 0xff}) {
		t.Fatalf("min cell painted %v", got)
	}
}

func TestByNameResolvesKnownRamps(t *testing.T) {
	for _, name := range []string{"thermal", "muted"} {
		ramp, err := colormap.ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if ramp.Name() != name {
			t.Fatalf("ByName(%q) returned %q", name, ramp.Name())
		}
	}
	if _, err := colormap.ByName("neon"); err == nil {
		t.Fatal("expected error for unknown ramp")
	}
}

func TestCustomRampOrdersStops(t *testing.T) {
	ramp, err := colormap.Custom("wind", []colormap.Stop{
		{Pos: 1.0, C: color.RGBA{R: 0xff, A: 0xff}},
		{Pos: 0.0, C: color.RGBA{G: 0xff, A: 0xff}},
	})
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	scale, err := colormap.FromRange(0, 1, ramp)
	if err != nil {
		t.Fatal(err)
	}
	if got := scale.Color(0); (got != color.RGBA{G: 0xff, A: 0xff}) {
		t.Fatalf("low endpoint %v", got)
	}
}
