package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// CreateJobRun inserts a new job run row.
func (s *Store) CreateJobRun(ctx context.Context, tx store.DBTransaction, run *store.JobRun) error {
	query := `
		INSERT INTO job_runs (id, job_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query, run.ID, run.JobID, run.Status, run.StartedAt)
	return err
}

func (s *Store) GetJobRunByID(ctx context.Context, id uuid.UUID) (*store.JobRun, error) {
	query := `
		SELECT id, job_id, status, started_at, completed_at, rows_processed, error_message
		FROM job_runs
		WHERE id = $1
	`

	run, err := scanJobRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return run, nil
}

// GetLatestJobRun returns the most recently started run of a job.
func (s *Store) GetLatestJobRun(ctx context.Context, jobID uuid.UUID) (*store.JobRun, error) {
	query := `
		SELECT id, job_id, status, started_at, completed_at, rows_processed, error_message
		FROM job_runs
		WHERE job_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	run, err := scanJobRun(s.db.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return run, nil
}

func (s *Store) ListJobRuns(ctx context.Context, jobID uuid.UUID, limit int) ([]store.JobRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, job_id, status, started_at, completed_at, rows_processed, error_message
		FROM job_runs
		WHERE job_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.JobRun
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// UpdateJobRun persists the completion fields of a run.
func (s *Store) UpdateJobRun(ctx context.Context, run *store.JobRun) error {
	query := `
		UPDATE job_runs
		SET status = $1, completed_at = $2, rows_processed = $3, error_message = $4
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		run.Status, run.CompletedAt, run.RowsProcessed, run.ErrorMessage, run.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanJobRun(row rowScanner) (*store.JobRun, error) {
	var run store.JobRun

	err := row.Scan(
		&run.ID, &run.JobID, &run.Status, &run.StartedAt,
		&run.CompletedAt, &run.RowsProcessed, &run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	return &run, nil
}
