package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"skylapse/internal/faults"
	"skylapse/internal/series"
)

// timestampLayouts are tried in order when parsing CSV timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type observation struct {
	ts    time.Time
	value float64
}

// loadCSV reads timestamp,value rows, fills interior gaps by linear
// interpolation in time, drops leading and trailing gaps that have no
// neighbor to interpolate from, and expands each value to the manifest's
// grid shape.
func loadCSV(manifest *Manifest) (*series.Series, error) {
	file, err := os.Open(manifest.Data)
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "csv",
			fmt.Sprintf("open %s", manifest.Data), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "dataset", "csv",
			fmt.Sprintf("parse %s", manifest.Data), err)
	}

	observations := make([]observation, 0, len(records))
	for i, record := range records {
		ts, err := parseTimestamp(record[0])
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return nil, faults.Wrap(faults.ErrValidation, "dataset", "csv",
				fmt.Sprintf("row %d: bad timestamp %q", i+1, record[0]), nil)
		}
		value := math.NaN()
		if raw := strings.TrimSpace(record[1]); raw != "" {
			value, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, faults.Wrap(faults.ErrValidation, "dataset", "csv",
					fmt.Sprintf("row %d: bad value %q", i+1, record[1]), nil)
			}
		}
		observations = append(observations, observation{ts: ts, value: value})
	}

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].ts.Before(observations[j].ts)
	})
	observations = interpolate(observations)

	samples := make([]series.Sample, 0, len(observations))
	for _, obs := range observations {
		grid, err := series.UniformGrid(manifest.Grid.Width, manifest.Grid.Height, obs.value)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "dataset", "csv", "build grid", err)
		}
		samples = append(samples, series.Sample{Timestamp: obs.ts, Grid: grid})
	}
	return series.New(manifest.metadata(), samples)
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// interpolate fills missing interior values linearly in time between the
// nearest finite neighbors. Leading and trailing gaps are dropped since they
// have only one neighbor.
func interpolate(observations []observation) []observation {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	first, last := -1, -1
	for i, obs := range observations {
		if finite(obs.value) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil
	}
	observations = observations[first : last+1]

	for i := 0; i < len(observations); i++ {
		if finite(observations[i].value) {
			continue
		}
		prev := i - 1
		next := i + 1
		for !finite(observations[next].value) {
			next++
		}
		span := observations[next].ts.Sub(observations[prev].ts).Seconds()
		frac := observations[i].ts.Sub(observations[prev].ts).Seconds() / span
		observations[i].value = observations[prev].value +
			frac*(observations[next].value-observations[prev].value)
	}
	return observations
}
