package series

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"skylapse/internal/faults"
)

// Extent describes the geographic bounding box a grid covers.
type Extent struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Metadata identifies the variable a series carries and where it was sampled.
type Metadata struct {
	// SourceID names the location or upstream source; it keys output artifact
	// file names.
	SourceID string
	Variable string
	Units    string
	Extent   Extent
}

// Sample pairs one timestamp with its grid.
type Sample struct {
	Timestamp time.Time
	Grid      Grid
}

// Series is an immutable, validated sequence of (timestamp, grid) samples with
// strictly increasing timestamps and identical grid shapes. It is owned by the
// pipeline run that loaded it.
type Series struct {
	meta    Metadata
	samples []Sample
}

// New validates and constructs a Series from samples ordered by timestamp.
// Fewer than two samples yields faults.ErrInsufficientFrames; shape, ordering,
// and all-missing violations yield faults.ErrValidation naming the offending
// timestamp.
func New(meta Metadata, samples []Sample) (*Series, error) {
	if len(samples) < 2 {
		return nil, faults.Wrap(faults.ErrInsufficientFrames, "series", "construct",
			fmt.Sprintf("need at least 2 timestamps to animate, got %d", len(samples)), nil)
	}

	shape := samples[0].Grid
	if shape.IsZero() {
		return nil, validationErr(samples[0].Timestamp, "empty grid")
	}
	prev := samples[0].Timestamp
	for i, sample := range samples {
		if sample.Grid.IsZero() {
			return nil, validationErr(sample.Timestamp, "empty grid")
		}
		if !sample.Grid.SameShape(shape) {
			return nil, validationErr(sample.Timestamp, fmt.Sprintf(
				"grid shape %dx%d does not match %dx%d",
				sample.Grid.Width(), sample.Grid.Height(), shape.Width(), shape.Height()))
		}
		if i > 0 && !sample.Timestamp.After(prev) {
			return nil, validationErr(sample.Timestamp, "timestamps must be strictly increasing")
		}
		if sample.Grid.AllMissing() {
			return nil, validationErr(sample.Timestamp, "grid contains no finite values")
		}
		prev = sample.Timestamp
	}

	owned := make([]Sample, len(samples))
	copy(owned, samples)
	return &Series{meta: meta, samples: owned}, nil
}

// FromMap sorts a timestamp→grid mapping and constructs a Series from it.
func FromMap(meta Metadata, grids map[time.Time]Grid) (*Series, error) {
	samples := make([]Sample, 0, len(grids))
	for ts, grid := range grids {
		samples = append(samples, Sample{Timestamp: ts, Grid: grid})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	return New(meta, samples)
}

func validationErr(ts time.Time, message string) error {
	return faults.Wrap(faults.ErrValidation, "series", "construct",
		fmt.Sprintf("%s: %s", ts.UTC().Format(time.RFC3339), message), nil)
}

// Meta returns the series metadata.
func (s *Series) Meta() Metadata { return s.meta }

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.samples) }

// At returns the i-th sample in timestamp order.
func (s *Series) At(i int) Sample { return s.samples[i] }

// GridShape returns the shared grid dimensions.
func (s *Series) GridShape() (w, h int) {
	return s.samples[0].Grid.Width(), s.samples[0].Grid.Height()
}

// Samples iterates the series in timestamp order. The sequence is finite and
// restartable.
func (s *Series) Samples() iter.Seq2[time.Time, Grid] {
	return func(yield func(time.Time, Grid) bool) {
		for _, sample := range s.samples {
			if !yield(sample.Timestamp, sample.Grid) {
				return
			}
		}
	}
}

// Timestamps returns the ordered timestamps.
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.Timestamp
	}
	return out
}

// Range computes the global minimum and maximum over all finite values in the
// series, ignoring missing-value sentinels.
func (s *Series) Range() (min, max float64) {
	first := true
	for _, sample := range s.samples {
		lo, hi, ok := sample.Grid.FiniteRange()
		if !ok {
			continue
		}
		if first || lo < min {
			min = lo
		}
		if first || hi > max {
			max = hi
		}
		first = false
	}
	return min, max
}

// Span returns the time covered from first to last sample.
func (s *Series) Span() time.Duration {
	return s.samples[len(s.samples)-1].Timestamp.Sub(s.samples[0].Timestamp)
}
