package assemble

import (
	"math"
	"time"
)

// GIF delay units below 2 (20ms) are rounded up to 10cs by most decoders, so
// 2 is the floor for any per-frame delay.
const minDelayCS = 2

func buildGIFPlan(deltas []time.Duration, uniform bool, opts Options) GIFPlan {
	frameCount := len(deltas) + 1
	targetCS := int(math.Round(opts.TargetDuration.Seconds() * 100))

	delays := make([]int, frameCount)
	if uniform {
		per := targetCS / frameCount
		if per < minDelayCS {
			per = minDelayCS
		}
		for i := range delays {
			delays[i] = per
		}
		// Spread the quantization remainder over the leading frames so the
		// total stays within one delay unit of the target.
		for i, remainder := 0, targetCS-per*frameCount; i < remainder; i++ {
			delays[i]++
		}
	} else {
		// Irregular cadence: each frame displays proportionally to the time
		// gap it covers, normalized so the whole animation hits the target
		// duration. The final frame covers the mean delta.
		var span time.Duration
		for _, d := range deltas {
			span += d
		}
		mean := span / time.Duration(len(deltas))
		total := span + mean
		for i := range delays {
			covered := mean
			if i < len(deltas) {
				covered = deltas[i]
			}
			cs := int(math.Round(float64(targetCS) * float64(covered) / float64(total)))
			if cs < minDelayCS {
				cs = minDelayCS
			}
			delays[i] = cs
		}
	}

	if pause := int(math.Round(opts.EndPause.Seconds() * 100)); pause > 0 {
		delays[frameCount-1] += pause
	}
	return GIFPlan{DelaysCS: delays}
}

func buildMP4Plan(timestamps []time.Time, deltas []time.Duration, uniform bool, opts Options) MP4Plan {
	frameCount := len(timestamps)

	fps := opts.FrameRate
	if fps <= 0 {
		fps = int(math.Round(float64(frameCount) / opts.TargetDuration.Seconds()))
		if fps < 1 {
			fps = 1
		}
	}

	var sequence []int
	if uniform {
		sequence = make([]int, frameCount)
		for i := range sequence {
			sequence[i] = i
		}
	} else {
		// Resample onto the constant clock by nearest-frame selection; no
		// frame is duplicated beyond what the clock demands.
		ticks := int(math.Round(opts.TargetDuration.Seconds() * float64(fps)))
		if ticks < 2 {
			ticks = 2
		}
		start := timestamps[0]
		span := timestamps[frameCount-1].Sub(start)
		sequence = make([]int, ticks)
		cursor := 0
		for i := range sequence {
			at := start.Add(time.Duration(float64(span) * float64(i) / float64(ticks-1)))
			cursor = nearestIndex(timestamps, cursor, at)
			sequence[i] = cursor
		}
	}

	if opts.EndPause > 0 {
		hold := int(math.Round(opts.EndPause.Seconds() * float64(fps)))
		last := sequence[len(sequence)-1]
		for i := 0; i < hold; i++ {
			sequence = append(sequence, last)
		}
	}
	return MP4Plan{FPS: fps, Sequence: sequence}
}

// nearestIndex advances from a monotonically increasing cursor to the
// timestamp closest to at.
func nearestIndex(timestamps []time.Time, cursor int, at time.Time) int {
	best := cursor
	for i := cursor; i < len(timestamps); i++ {
		if dist(timestamps[i], at) <= dist(timestamps[best], at) {
			best = i
			continue
		}
		break
	}
	return best
}

func dist(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
