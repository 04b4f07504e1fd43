package assemble_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"skylapse/internal/assemble"
	"skylapse/internal/faults"
	"skylapse/internal/render"
)

var epoch = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

func frameAt(index int, offset time.Duration, aspect render.Aspect) *render.Frame {
	return &render.Frame{Timestamp: epoch.Add(offset), Aspect: aspect, Index: index}
}

func hourlyFrames(n int) []*render.Frame {
	frames := make([]*render.Frame, n)
	for i := range frames {
		frames[i] = frameAt(i, time.Duration(i)*time.Hour, render.AspectSquare)
	}
	return frames
}

func TestBuildUniformSeries(t *testing.T) {
	// 24 hourly frames over a 6 second animation: 250ms per gif frame, 4fps mp4.
	ordered, plan, err := assemble.Build(hourlyFrames(24), assemble.Options{
		TargetDuration: 6 * time.Second,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ordered) != 24 {
		t.Fatalf("ordered length %d", len(ordered))
	}
	for i, delay := range plan.GIF.DelaysCS {
		if delay != 25 {
			t.Fatalf("frame %d delay %dcs, want 25", i, delay)
		}
	}
	if got := plan.GIF.Duration(); got != 6*time.Second {
		t.Fatalf("gif duration %v, want 6s", got)
	}
	if plan.MP4.FPS != 4 {
		t.Fatalf("mp4 fps %d, want 4", plan.MP4.FPS)
	}
	if len(plan.MP4.Sequence) != 24 {
		t.Fatalf("mp4 sequence length %d, want 24", len(plan.MP4.Sequence))
	}
	for i, idx := range plan.MP4.Sequence {
		if idx != i {
			t.Fatalf("uniform series should map frames one-to-one, got %v", plan.MP4.Sequence)
		}
	}
	if got := plan.MP4.Duration(); got != 6*time.Second {
		t.Fatalf("mp4 duration %v, want 6s", got)
	}
}

func TestBuildReordersCompletionOrder(t *testing.T) {
	frames := hourlyFrames(12)
	shuffled := make([]*render.Frame, len(frames))
	copy(shuffled, frames)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	ordered, plan, err := assemble.Build(shuffled, assemble.Options{TargetDuration: 6 * time.Second})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].Timestamp.After(ordered[i-1].Timestamp) {
			t.Fatalf("frames not in timestamp order at %d", i)
		}
		if !plan.Timestamps[i].After(plan.Timestamps[i-1]) {
			t.Fatalf("plan timestamps not increasing at %d", i)
		}
	}
}

func TestBuildRejectsSingleFrame(t *testing.T) {
	_, _, err := assemble.Build(hourlyFrames(1), assemble.Options{TargetDuration: 6 * time.Second})
	if !errors.Is(err, faults.ErrInsufficientFrames) {
		t.Fatalf("expected ErrInsufficientFrames, got %v", err)
	}
}

func TestBuildRejectsMixedAspects(t *testing.T) {
	frames := hourlyFrames(3)
	frames[1] = frameAt(1, time.Hour, render.AspectVertical)
	_, _, err := assemble.Build(frames, assemble.Options{TargetDuration: 6 * time.Second})
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBuildIrregularGapsProportionalGIFDelays(t *testing.T) {
	offsets := []time.Duration{0, time.Hour, 2 * time.Hour, 5 * time.Hour}
	frames := make([]*render.Frame, len(offsets))
	for i, off := range offsets {
		frames[i] = frameAt(i, off, render.AspectSquare)
	}

	_, plan, err := assemble.Build(frames, assemble.Options{TargetDuration: 6 * time.Second})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Deltas 1h, 1h, 3h with a mean-delta tail frame: 90, 90, 270, 150 cs.
	want := []int{90, 90, 270, 150}
	for i, delay := range plan.GIF.DelaysCS {
		if delay != want[i] {
			t.Fatalf("delays %v, want %v", plan.GIF.DelaysCS, want)
		}
	}
	if got := plan.GIF.Duration(); got != 6*time.Second {
		t.Fatalf("gif duration %v, want 6s", got)
	}
}

func TestBuildIrregularGapsResampleMP4(t *testing.T) {
	offsets := []time.Duration{0, time.Hour, 2 * time.Hour, 5 * time.Hour}
	frames := make([]*render.Frame, len(offsets))
	for i, off := range offsets {
		frames[i] = frameAt(i, off, render.AspectSquare)
	}

	_, plan, err := assemble.Build(frames, assemble.Options{
		TargetDuration: 6 * time.Second,
		FrameRate:      2,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.MP4.FPS != 2 {
		t.Fatalf("fps %d, want 2", plan.MP4.FPS)
	}
	seq := plan.MP4.Sequence
	if len(seq) != 12 {
		t.Fatalf("sequence length %d, want 12", len(seq))
	}
	if seq[0] != 0 || seq[len(seq)-1] != 3 {
		t.Fatalf("sequence must span first to last frame, got %v", seq)
	}
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] {
			t.Fatalf("sequence must be nondecreasing, got %v", seq)
		}
	}
}

func TestBuildEndPauseHoldsLastFrame(t *testing.T) {
	ordered, plan, err := assemble.Build(hourlyFrames(24), assemble.Options{
		TargetDuration: 6 * time.Second,
		EndPause:       2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	last := len(ordered) - 1
	if got := plan.GIF.DelaysCS[last]; got != 25+200 {
		t.Fatalf("gif final delay %dcs, want 225", got)
	}
	seq := plan.MP4.Sequence
	if len(seq) != 24+8 {
		t.Fatalf("mp4 sequence length %d, want 32", len(seq))
	}
	for _, idx := range seq[24:] {
		if idx != last {
			t.Fatalf("pause frames must repeat the final index, got %v", seq[24:])
		}
	}
}

func TestBuildFrameRateFloorsAtOne(t *testing.T) {
	_, plan, err := assemble.Build(hourlyFrames(2), assemble.Options{
		TargetDuration: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.MP4.FPS != 1 {
		t.Fatalf("fps %d, want floor of 1", plan.MP4.FPS)
	}
}
