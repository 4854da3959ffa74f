package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dataforge/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return &Store{db: db}, mock
}

func TestClaimDueJobs_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	ctx := context.Background()
	job1 := uuid.New()
	job2 := uuid.New()

	mock.ExpectBegin()

	// SELECT ... FOR UPDATE SKIP LOCKED LIMIT 5
	mock.ExpectQuery(`SELECT id\s+FROM jobs`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(job1).
			AddRow(job2))

	// Push next_run forward by the claim TTL
	mock.ExpectExec(`UPDATE jobs`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	mock.ExpectCommit()

	ids, err := s.ClaimDueJobs(ctx, 5, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimDueJobs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %d", len(ids))
	}
	if ids[0] != job1 || ids[1] != job2 {
		t.Errorf("claimed ids out of order: %v", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestClaimDueJobs_QueryStructure(t *testing.T) {
	// Verify the generated SQL keeps the SKIP LOCKED clause and the active
	// filter. This catches regression if someone simplifies the query.
	s, mock := newMockStore(t)
	defer s.db.Close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id\s+FROM jobs\s+WHERE status = 'active' AND NOT is_deleted AND next_run <= NOW\(\)\s+ORDER BY next_run ASC\s+FOR UPDATE SKIP LOCKED`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectExec(`UPDATE jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ids, err := s.ClaimDueJobs(ctx, 1, time.Minute)
	if err != nil {
		t.Fatalf("ClaimDueJobs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 id, got %d", len(ids))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestClaimDueJobs_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id\s+FROM jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	ids, err := s.ClaimDueJobs(ctx, 10, time.Minute)
	if err != nil {
		t.Errorf("expected no error for empty claim, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected 0 ids, got %d", len(ids))
	}
}

func TestClaimDueJobs_LimitDefaultsToOne(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id\s+FROM jobs`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	if _, err := s.ClaimDueJobs(ctx, 0, time.Minute); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetJobByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM jobs`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetJobByID(context.Background(), id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateJobSchedule_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	job := &store.Job{ID: uuid.New(), Status: store.JobStatusActive}

	mock.ExpectExec(`UPDATE jobs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateJobSchedule(context.Background(), job); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestGetLatestJobRun_NeverRun(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	jobID := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM job_runs`).
		WithArgs(jobID).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetLatestJobRun(context.Background(), jobID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a job with no runs, got %v", err)
	}
}

func TestCountDueJobs(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountDueJobs(context.Background())
	if err != nil {
		t.Fatalf("CountDueJobs failed: %v", err)
	}
	if count != 7 {
		t.Errorf("got count %d, want 7", count)
	}
}
