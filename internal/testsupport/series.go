package testsupport

import (
	"testing"
	"time"

	"skylapse/internal/series"
)

// SeriesEpoch is the base timestamp synthetic series start from.
var SeriesEpoch = time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

// HourlySeries builds a validated series of n hourly w×h grids with values
// that drift upward over time, so derived color scales have a real span.
func HourlySeries(t testing.TB, n, w, h int) *series.Series {
	t.Helper()
	samples := make([]series.Sample, n)
	for i := range samples {
		rows := make([][]float64, h)
		for y := range rows {
			rows[y] = make([]float64, w)
			for x := range rows[y] {
				rows[y][x] = float64(i) + float64(x+y)/float64(w+h)
			}
		}
		grid, err := series.GridFromRows(rows)
		if err != nil {
			t.Fatalf("build grid: %v", err)
		}
		samples[i] = series.Sample{
			Timestamp: SeriesEpoch.Add(time.Duration(i) * time.Hour),
			Grid:      grid,
		}
	}
	s, err := series.New(series.Metadata{
		SourceID: "test-station",
		Variable: "temperature",
		Units:    "degC",
	}, samples)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}
