package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"skylapse/internal/config"
)

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.LedgerPath)
}

// OpenPath connects to the ledger at an explicit database path.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// RecordRun stores a completed run with its artifacts and failures in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, artifacts []Artifact, failures []Failure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, source_id, variable, started_at, finished_at,
            timestamps, artifact_count, failure_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.SourceID,
		run.Variable,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Timestamps,
		len(artifacts),
		len(failures),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, artifact := range artifacts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO artifacts (
                run_id, path, format, aspect, width, height,
                frame_count, duration_ms, size_bytes
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			artifact.Path,
			artifact.Format,
			artifact.Aspect,
			artifact.Width,
			artifact.Height,
			artifact.FrameCount,
			artifact.Duration.Milliseconds(),
			artifact.SizeBytes,
		)
		if err != nil {
			return fmt.Errorf("insert artifact %s: %w", artifact.Path, err)
		}
	}

	for _, failure := range failures {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, aspect, format, reason) VALUES (?, ?, ?, ?)`,
			run.ID, failure.Aspect, failure.Format, failure.Reason)
		if err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_id, variable, started_at, finished_at,
        timestamps, artifact_count, failure_count
        FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                  Run
			startedAt, finished string
		)
		if err := rows.Scan(&run.ID, &run.SourceID, &run.Variable, &startedAt, &finished,
			&run.Timestamps, &run.ArtifactCount, &run.FailureCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ArtifactsForRun returns every artifact a run produced.
func (s *Store) ArtifactsForRun(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, format, aspect, width, height, frame_count, duration_ms, size_bytes
         FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			artifact   Artifact
			durationMS int64
		)
		if err := rows.Scan(&artifact.RunID, &artifact.Path, &artifact.Format, &artifact.Aspect,
			&artifact.Width, &artifact.Height, &artifact.FrameCount, &durationMS, &artifact.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.Duration = time.Duration(durationMS) * time.Millisecond
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// FailuresForRun returns every variant a run failed to produce.
func (s *Store) FailuresForRun(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, aspect, format, reason FROM failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var failure Failure
		if err := rows.Scan(&failure.RunID, &failure.Aspect, &failure.Format, &failure.Reason); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, failure)
	}
	return failures, rows.Err()
}
