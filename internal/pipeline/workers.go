package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"skylapse/internal/render"
	"skylapse/internal/series"
)

type renderJob struct {
	index int
	ts    time.Time
	grid  series.Grid
}

// renderAspect renders every timestamp of the series for one aspect ratio.
// Work is spread over a bounded pool and reassembled by source index, so the
// returned frames are in timestamp order regardless of completion order.
func (o *Orchestrator) renderAspect(
	ctx context.Context,
	s *series.Series,
	renderer *render.Renderer,
	aspect render.Aspect,
	opts Options,
) ([]*render.Frame, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > s.Len() {
		workers = s.Len()
	}

	jobs := make(chan renderJob)
	frames := make([]*render.Frame, s.Len())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				frame, err := renderer.Render(job.index, job.ts, job.grid, aspect)
				if err != nil {
					fail(err)
					return
				}
				mu.Lock()
				frames[job.index] = frame
				done++
				completed := done
				mu.Unlock()
				tickProgress(opts.OnProgress, "render", completed, s.Len())
			}
		}()
	}

feed:
	for i := 0; i < s.Len(); i++ {
		sample := s.At(i)
		select {
		case jobs <- renderJob{index: i, ts: sample.Timestamp, grid: sample.Grid}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}
