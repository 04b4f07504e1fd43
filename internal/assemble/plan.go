package assemble

import (
	"fmt"
	"sort"
	"time"

	"skylapse/internal/faults"
	"skylapse/internal/render"
)

// Options controls how source timestamps map onto playback time.
type Options struct {
	// TargetDuration is the playback length the animation is normalized to,
	// excluding the end pause.
	TargetDuration time.Duration
	// EndPause holds the final frame before the loop restarts.
	EndPause time.Duration
	// FrameRate overrides the derived mp4 frame rate when > 0.
	FrameRate int
	// UniformTolerance is the maximum relative deviation between time deltas
	// still treated as a uniform cadence. Zero means the default of 1%.
	UniformTolerance float64
}

const defaultUniformTolerance = 0.01

// GIFPlan assigns each source frame a display duration in GIF delay units
// (hundredths of a second).
type GIFPlan struct {
	DelaysCS []int
}

// Duration returns total playback time under the plan.
func (p GIFPlan) Duration() time.Duration {
	total := 0
	for _, d := range p.DelaysCS {
		total += d
	}
	return time.Duration(total) * 10 * time.Millisecond
}

// MP4Plan plays source frames at a constant rate. Sequence holds source-frame
// indices; irregular series are resampled onto the constant clock by
// nearest-frame selection, and the end pause repeats the final index.
type MP4Plan struct {
	FPS      int
	Sequence []int
}

// Duration returns total playback time under the plan.
func (p MP4Plan) Duration() time.Duration {
	if p.FPS <= 0 {
		return 0
	}
	return time.Duration(len(p.Sequence)) * time.Second / time.Duration(p.FPS)
}

// Plan is the format-specific encoding plan for one aspect ratio's frames.
type Plan struct {
	Aspect     render.Aspect
	Timestamps []time.Time
	GIF        GIFPlan
	MP4        MP4Plan
}

// Build orders frames by source timestamp and derives the encoding plan.
// Frames may arrive in any completion order; the returned slice is the
// timestamp-ordered sequence both sub-plans index into.
func Build(frames []*render.Frame, opts Options) ([]*render.Frame, Plan, error) {
	if len(frames) < 2 {
		return nil, Plan{}, faults.Wrap(faults.ErrInsufficientFrames, "assemble", "plan",
			fmt.Sprintf("cannot animate %d frame(s)", len(frames)), nil)
	}
	if opts.TargetDuration <= 0 {
		return nil, Plan{}, faults.Wrap(faults.ErrConfiguration, "assemble", "plan",
			"target duration must be positive", nil)
	}

	ordered := make([]*render.Frame, len(frames))
	copy(ordered, frames)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	aspect := ordered[0].Aspect
	timestamps := make([]time.Time, len(ordered))
	for i, frame := range ordered {
		if frame.Aspect != aspect {
			return nil, Plan{}, faults.Wrap(faults.ErrConfiguration, "assemble", "plan",
				fmt.Sprintf("mixed aspects %q and %q in one plan", aspect, frame.Aspect), nil)
		}
		timestamps[i] = frame.Timestamp
	}

	deltas := make([]time.Duration, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		deltas[i-1] = timestamps[i].Sub(timestamps[i-1])
	}

	tolerance := opts.UniformTolerance
	if tolerance <= 0 {
		tolerance = defaultUniformTolerance
	}
	uniform := uniformDeltas(deltas, tolerance)

	plan := Plan{
		Aspect:     aspect,
		Timestamps: timestamps,
		GIF:        buildGIFPlan(deltas, uniform, opts),
		MP4:        buildMP4Plan(timestamps, deltas, uniform, opts),
	}
	return ordered, plan, nil
}

func uniformDeltas(deltas []time.Duration, tolerance float64) bool {
	first := float64(deltas[0])
	for _, d := range deltas[1:] {
		diff := float64(d) - first
		if diff < 0 {
			diff = -diff
		}
		if diff > first*tolerance {
			return false
		}
	}
	return true
}
