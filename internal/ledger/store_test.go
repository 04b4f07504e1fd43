package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"skylapse/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:         id,
		SourceID:   "oulu-airport",
		Variable:   "temperature",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Timestamps: 24,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	artifacts := []Artifact{{
		RunID:      "run-1",
		Path:       "/out/oulu-airport_square.gif",
		Format:     "gif",
		Aspect:     "square",
		Width:      720,
		Height:     720,
		FrameCount: 24,
		Duration:   6 * time.Second,
		SizeBytes:  123456,
	}}
	failures := []Failure{{
		RunID:  "run-1",
		Aspect: "square",
		Format: "mp4",
		Reason: "ffmpeg not found",
	}}
	if err := store.RecordRun(ctx, sampleRun("run-1", base), artifacts, failures); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(ctx, sampleRun("run-2", base.Add(time.Hour)), nil, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Fatalf("runs must be newest first, got %q", runs[0].ID)
	}
	if runs[1].ArtifactCount != 1 || runs[1].FailureCount != 1 {
		t.Fatalf("run-1 counts wrong: %+v", runs[1])
	}
	if runs[1].Elapsed() != 3*time.Second {
		t.Fatalf("elapsed %v, want 3s", runs[1].Elapsed())
	}
}

func TestListRunsHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.RecordRun(ctx, run, nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}

func TestArtifactsAndFailuresRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC))
	artifact := Artifact{
		RunID: "run-1", Path: "/out/a.mp4", Format: "mp4", Aspect: "vertical",
		Width: 720, Height: 1280, FrameCount: 24, Duration: 6 * time.Second, SizeBytes: 99,
	}
	failure := Failure{RunID: "run-1", Aspect: "vertical", Format: "gif", Reason: "boom"}
	if err := store.RecordRun(ctx, run, []Artifact{artifact}, []Failure{failure}); err != nil {
		t.Fatal(err)
	}

	gotArtifacts, err := store.ArtifactsForRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotArtifacts) != 1 || gotArtifacts[0] != artifact {
		t.Fatalf("artifacts round trip: %+v", gotArtifacts)
	}

	gotFailures, err := store.FailuresForRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotFailures) != 1 || gotFailures[0] != failure {
		t.Fatalf("failures round trip: %+v", gotFailures)
	}
}

func TestOpenUsesConfiguredLedgerPath(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.LedgerPath = filepath.Join(dir, "logs", "ledger.db")

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if store.Path() != cfg.Paths.LedgerPath {
		t.Fatalf("store path %q", store.Path())
	}
}

func TestDuplicateRunIDFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run := sampleRun("run-1", time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC))
	if err := store.RecordRun(ctx, run, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRun(ctx, run, nil, nil); err == nil {
		t.Fatal("expected primary key violation on duplicate run id")
	}
}
