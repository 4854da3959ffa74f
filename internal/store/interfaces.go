package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// UserStore handles retrieving user information for authentication.
type UserStore interface {
	// CreateUser inserts a new user to the database
	CreateUser(ctx context.Context, user *User, hashedKey string) error

	// GetUserByAPIKeyHash returns a user by its API key hash.
	GetUserByAPIKeyHash(ctx context.Context, hash string) (*User, error)
}

// SourceStore handles the persistence of connected sources.
type SourceStore interface {
	CreateSource(ctx context.Context, tx DBTransaction, source *Source) error

	// GetSourceByID returns a source by its ID. Soft-deleted sources are
	// reported as ErrNotFound.
	GetSourceByID(ctx context.Context, id uuid.UUID) (*Source, error)

	ListSources(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]Source, error)

	UpdateSourceStatus(ctx context.Context, id uuid.UUID, status SourceStatus) error
}

// DatasetStore handles the persistence of extraction definitions.
type DatasetStore interface {
	CreateDataset(ctx context.Context, tx DBTransaction, dataset *Dataset) error

	GetDatasetByID(ctx context.Context, id uuid.UUID) (*Dataset, error)

	ListDatasets(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]Dataset, error)

	// UpdateDatasetRun persists the run-state fields of a dataset: status,
	// progress, record count, result data, status message, completed_at.
	UpdateDatasetRun(ctx context.Context, dataset *Dataset) error
}

// TransformationStore handles the persistence of transformation rule sets.
type TransformationStore interface {
	CreateTransformation(ctx context.Context, tx DBTransaction, tr *Transformation) error

	GetTransformationByID(ctx context.Context, id uuid.UUID) (*Transformation, error)

	ListTransformations(ctx context.Context, ownerID uuid.UUID) ([]Transformation, error)
}

// JobStore handles the persistence of scheduled jobs and their run history.
type JobStore interface {
	CreateJob(ctx context.Context, tx DBTransaction, job *Job) error

	GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error)

	ListJobs(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]Job, error)

	// UpdateJobSchedule persists the scheduling fields of a job: status,
	// last_run, next_run.
	UpdateJobSchedule(ctx context.Context, job *Job) error

	// ClaimDueJobs atomically claims up to 'limit' active jobs whose
	// next_run is due, pushing their next_run forward by claimTTL so other
	// scheduler instances skip them. Implementations must use
	// SELECT ... FOR UPDATE SKIP LOCKED semantics.
	ClaimDueJobs(ctx context.Context, limit int, claimTTL time.Duration) ([]uuid.UUID, error)

	// CountDueJobs returns the number of active jobs due to run now.
	CountDueJobs(ctx context.Context) (int64, error)

	CreateJobRun(ctx context.Context, tx DBTransaction, run *JobRun) error

	GetJobRunByID(ctx context.Context, id uuid.UUID) (*JobRun, error)

	// GetLatestJobRun returns the most recently started run of a job, or
	// ErrNotFound when the job has never run.
	GetLatestJobRun(ctx context.Context, jobID uuid.UUID) (*JobRun, error)

	ListJobRuns(ctx context.Context, jobID uuid.UUID, limit int) ([]JobRun, error)

	// UpdateJobRun persists the completion fields of a run: status,
	// completed_at, rows_processed, error_message.
	UpdateJobRun(ctx context.Context, run *JobRun) error
}

// NotificationStore handles notification records emitted by lifecycle
// transitions.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *Notification) error

	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)

	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error

	// DeleteNotificationsBefore removes notifications created before the
	// cutoff and returns how many were removed.
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LifecycleStore is the generic soft-delete cycle shared by sources,
// datasets and jobs, parameterized by entity type.
type LifecycleStore interface {
	// GetEntityLifecycle returns the owner and soft-delete state of an
	// entity regardless of its concrete type.
	GetEntityLifecycle(ctx context.Context, ref EntityRef) (*EntityLifecycle, error)

	SoftDeleteEntity(ctx context.Context, ref EntityRef, at time.Time) error

	RestoreEntity(ctx context.Context, ref EntityRef) error

	// PurgeEntity hard-removes a soft-deleted entity.
	PurgeEntity(ctx context.Context, ref EntityRef) error

	// PurgeExpiredEntities hard-removes soft-deleted entities whose
	// deletion_marked_at is strictly before the cutoff. Returns the number
	// of removed rows.
	PurgeExpiredEntities(ctx context.Context, entityType EntityType, cutoff time.Time) (int64, error)
}
