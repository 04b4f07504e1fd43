package ledger

import "time"

// Run is one recorded pipeline execution.
type Run struct {
	ID            string
	SourceID      string
	Variable      string
	StartedAt     time.Time
	FinishedAt    time.Time
	Timestamps    int
	ArtifactCount int
	FailureCount  int
}

// Elapsed returns how long the run took.
func (r Run) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Artifact is one output file produced by a run.
type Artifact struct {
	RunID      string
	Path       string
	Format     string
	Aspect     string
	Width      int
	Height     int
	FrameCount int
	Duration   time.Duration
	SizeBytes  int64
}

// Failure is one variant a run could not produce.
type Failure struct {
	RunID  string
	Aspect string
	Format string
	Reason string
}
