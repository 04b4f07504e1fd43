package series

import (
	"errors"
	"fmt"
	"math"
)

// Grid is a fixed-shape 2D field of scalar values in row-major order.
// Missing observations are represented as NaN. Grids are immutable after
// construction; Clone the backing data if a mutable copy is needed.
type Grid struct {
	width  int
	height int
	values []float64
}

// GridFromRows builds a Grid from row slices. Every row must have the same
// length.
func GridFromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, errors.New("grid needs at least one row and column")
	}
	width := len(rows[0])
	values := make([]float64, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return Grid{}, fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
		}
		values = append(values, row...)
	}
	return Grid{width: width, height: len(rows), values: values}, nil
}

// UniformGrid builds a w×h Grid with every cell set to value. Intended for
// scalar series (one reading per timestamp) and tests.
func UniformGrid(w, h int, value float64) (Grid, error) {
	if w <= 0 || h <= 0 {
		return Grid{}, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	values := make([]float64, w*h)
	for i := range values {
		values[i] = value
	}
	return Grid{width: w, height: h, values: values}, nil
}

// Width returns the number of columns.
func (g Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g Grid) Height() int { return g.height }

// At returns the value at column x, row y. NaN marks a missing observation.
func (g Grid) At(x, y int) float64 {
	return g.values[y*g.width+x]
}

// IsZero reports whether the grid has no cells.
func (g Grid) IsZero() bool { return g.width == 0 || g.height == 0 }

// SameShape reports whether both grids have identical dimensions.
func (g Grid) SameShape(other Grid) bool {
	return g.width == other.width && g.height == other.height
}

// AllMissing reports whether every cell is NaN or infinite.
func (g Grid) AllMissing() bool {
	for _, v := range g.values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FiniteRange returns the minimum and maximum finite cell values. ok is false
// when the grid holds no finite values.
func (g Grid) FiniteRange() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}
