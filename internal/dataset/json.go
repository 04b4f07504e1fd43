package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"skylapse/internal/faults"
	"skylapse/internal/series"
)

// griddedFile is the JSON layout for rasterized datasets. Grids are row-major
// with row 0 northmost; null cells mark missing observations.
type griddedFile struct {
	Timestamps []string       `json:"timestamps"`
	Grids      [][][]*float64 `json:"grids"`
}

func loadJSON(manifest *Manifest) (*series.Series, error) {
	data, err := os.ReadFile(manifest.Data)
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "json",
			fmt.Sprintf("read %s", manifest.Data), err)
	}
	var file griddedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "json",
			fmt.Sprintf("parse %s", manifest.Data), err)
	}
	if len(file.Timestamps) != len(file.Grids) {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "json",
			fmt.Sprintf("%d timestamps but %d grids", len(file.Timestamps), len(file.Grids)), nil)
	}

	samples := make([]series.Sample, 0, len(file.Timestamps))
	for i, raw := range file.Timestamps {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "dataset", "json",
				fmt.Sprintf("timestamp %d: %q is not RFC 3339", i, raw), nil)
		}
		rows := make([][]float64, len(file.Grids[i]))
		for y, row := range file.Grids[i] {
			rows[y] = make([]float64, len(row))
			for x, cell := range row {
				if cell == nil {
					rows[y][x] = math.NaN()
				} else {
					rows[y][x] = *cell
				}
			}
		}
		grid, err := series.GridFromRows(rows)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "dataset", "json",
				fmt.Sprintf("timestamp %s", raw), err)
		}
		samples = append(samples, series.Sample{Timestamp: ts, Grid: grid})
	}
	return series.New(manifest.metadata(), samples)
}
