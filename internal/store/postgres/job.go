package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const jobColumns = `id, owner_id, source_id, transformation_id, destination_id, frequency, schedule,
	last_run, next_run, status, is_deleted, deletion_marked_at, created_at`

// CreateJob inserts a new job row.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	query := `
		INSERT INTO jobs (id, owner_id, source_id, transformation_id, destination_id, frequency, schedule, next_run, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		job.SourceID,
		job.TransformationID,
		job.DestinationID,
		job.Frequency,
		job.Schedule,
		job.NextRun,
		job.Status,
		job.CreatedAt,
	)
	return err
}

func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs WHERE id = $1"

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs WHERE owner_id = $1"
	if !includeDeleted {
		query += " AND NOT is_deleted"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

// UpdateJobSchedule persists the scheduling fields of a job.
func (s *Store) UpdateJobSchedule(ctx context.Context, job *store.Job) error {
	query := `
		UPDATE jobs
		SET status = $1, last_run = $2, next_run = $3
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, job.Status, job.LastRun, job.NextRun, job.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ClaimDueJobs claims up to 'limit' due jobs atomically using
// SELECT ... FOR UPDATE SKIP LOCKED, so concurrent scheduler instances
// never claim the same job. Claimed jobs get their next_run pushed forward
// by claimTTL; a crashed claimer's jobs become due again after the TTL.
func (s *Store) ClaimDueJobs(ctx context.Context, limit int, claimTTL time.Duration) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT id
		FROM jobs
		WHERE status = 'active' AND NOT is_deleted AND next_run <= NOW()
		ORDER BY next_run ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`

	rows, err := tx.QueryContext(ctx, selectQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("claim query failed: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("claim scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim rows error: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET next_run = NOW() + ($1 * INTERVAL '1 second')
		WHERE id = ANY($2)
	`, claimTTL.Seconds(), pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("claim ttl update failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return ids, nil
}

// CountDueJobs returns the number of active jobs due to run now.
func (s *Store) CountDueJobs(ctx context.Context) (int64, error) {
	query := "SELECT COUNT(*) FROM jobs WHERE status = 'active' AND NOT is_deleted AND next_run <= NOW()"

	var count int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func scanJob(row rowScanner) (*store.Job, error) {
	var job store.Job

	err := row.Scan(
		&job.ID, &job.OwnerID, &job.SourceID, &job.TransformationID,
		&job.DestinationID, &job.Frequency, &job.Schedule,
		&job.LastRun, &job.NextRun, &job.Status,
		&job.IsDeleted, &job.DeletionMarkedAt, &job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &job, nil
}
