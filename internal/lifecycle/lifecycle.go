// Package lifecycle governs status transitions for datasets, jobs and job
// runs, and the soft-delete/restore/purge cycle shared by sources,
// datasets and jobs. All transitions are explicit commands; recomputation
// and cleanup passes are triggered externally.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dataforge/internal/notify"
	"dataforge/internal/schedule"
	"dataforge/internal/store"

	"github.com/google/uuid"
)

// Store combines the repository surfaces the lifecycle manager needs.
type Store interface {
	store.DatasetStore
	store.JobStore
	store.LifecycleStore
	store.NotificationStore
}

// Manager applies lifecycle transitions and emits a notification for every
// user-visible state change. Notification dispatch failures are logged and
// swallowed; the transition's correctness does not depend on delivery.
type Manager struct {
	store      Store
	dispatcher notify.Dispatcher
	log        *slog.Logger
	now        func() time.Time
}

// New creates a lifecycle manager.
func New(s Store, d notify.Dispatcher, log *slog.Logger) *Manager {
	return &Manager{
		store:      s,
		dispatcher: d,
		log:        log,
		now:        time.Now,
	}
}

// RunResult carries the outcome of a successful dataset extraction.
type RunResult struct {
	RecordCount int64
	ResultData  json.RawMessage
}

// StartRun moves a dataset to running. A dataset whose last run is still
// running is rejected with StateConflictError; no duplicate run record is
// created. Starting from a terminal state begins a logically new run: the
// previous result fields are cleared.
func (m *Manager) StartRun(ctx context.Context, datasetID uuid.UUID) (*store.Dataset, error) {
	dataset, err := m.getDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	if dataset.Status == store.DatasetStatusRunning {
		return nil, &store.StateConflictError{Entity: "dataset", State: string(dataset.Status), Op: "start run"}
	}

	dataset.Status = store.DatasetStatusRunning
	dataset.Progress = 0
	dataset.RecordCount = nil
	dataset.ResultData = nil
	dataset.StatusMessage = nil
	dataset.CompletedAt = nil

	if err := m.store.UpdateDatasetRun(ctx, dataset); err != nil {
		return nil, &store.StoreError{Op: "update dataset run", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    dataset.OwnerID,
		Severity:  store.SeverityInfo,
		Category:  store.CategoryExport,
		Message:   fmt.Sprintf("Extraction started for dataset %q", dataset.Name),
		RelatedID: &dataset.ID,
	})
	return dataset, nil
}

// CompleteRun moves a running dataset to completed and persists the result
// metadata. Only a running dataset may complete.
func (m *Manager) CompleteRun(ctx context.Context, datasetID uuid.UUID, result RunResult) error {
	dataset, err := m.getDataset(ctx, datasetID)
	if err != nil {
		return err
	}

	if dataset.Status != store.DatasetStatusRunning {
		return &store.StateConflictError{Entity: "dataset", State: string(dataset.Status), Op: "complete run"}
	}

	completedAt := m.now().UTC()
	dataset.Status = store.DatasetStatusCompleted
	dataset.Progress = 100
	dataset.RecordCount = &result.RecordCount
	dataset.ResultData = result.ResultData
	dataset.CompletedAt = &completedAt

	if err := m.store.UpdateDatasetRun(ctx, dataset); err != nil {
		return &store.StoreError{Op: "update dataset run", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    dataset.OwnerID,
		Severity:  store.SeverityInfo,
		Category:  store.CategoryExport,
		Message:   fmt.Sprintf("Extraction completed for dataset %q (%d records)", dataset.Name, result.RecordCount),
		RelatedID: &dataset.ID,
	})
	return nil
}

// FailRun moves a running dataset to failed and records the message.
func (m *Manager) FailRun(ctx context.Context, datasetID uuid.UUID, message string) error {
	dataset, err := m.getDataset(ctx, datasetID)
	if err != nil {
		return err
	}

	if dataset.Status != store.DatasetStatusRunning {
		return &store.StateConflictError{Entity: "dataset", State: string(dataset.Status), Op: "fail run"}
	}

	dataset.Status = store.DatasetStatusFailed
	dataset.StatusMessage = &message

	if err := m.store.UpdateDatasetRun(ctx, dataset); err != nil {
		return &store.StoreError{Op: "update dataset run", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    dataset.OwnerID,
		Severity:  store.SeverityError,
		Category:  store.CategoryExport,
		Message:   fmt.Sprintf("Extraction failed for dataset %q: %s", dataset.Name, message),
		RelatedID: &dataset.ID,
	})
	return nil
}

// ToggleJob flips a job between active and paused. A pending job activates
// on its first toggle. Resuming recomputes next_run relative to the
// current time; pausing leaves next_run untouched. Terminal jobs cannot be
// toggled.
func (m *Manager) ToggleJob(ctx context.Context, jobID uuid.UUID) (*store.Job, error) {
	job, err := m.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case store.JobStatusActive:
		job.Status = store.JobStatusPaused
	case store.JobStatusPending, store.JobStatusPaused:
		job.Status = store.JobStatusActive
		next := schedule.NextRun(job.Frequency, m.now().UTC())
		job.NextRun = &next
	default:
		return nil, &store.StateConflictError{Entity: "job", State: string(job.Status), Op: "toggle"}
	}

	if err := m.store.UpdateJobSchedule(ctx, job); err != nil {
		return nil, &store.StoreError{Op: "update job schedule", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    job.OwnerID,
		Severity:  store.SeverityInfo,
		Category:  store.CategoryJob,
		Message:   fmt.Sprintf("Job is now %s", job.Status),
		RelatedID: &job.ID,
	})
	return job, nil
}

// TriggerJob starts a new run of an active job. At most one running
// JobRun may exist per job: a start request while the last known run is
// still running is rejected with StateConflictError.
func (m *Manager) TriggerJob(ctx context.Context, jobID uuid.UUID) (*store.JobRun, error) {
	job, err := m.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != store.JobStatusActive {
		return nil, &store.StateConflictError{Entity: "job", State: string(job.Status), Op: "trigger"}
	}

	last, err := m.store.GetLatestJobRun(ctx, jobID)
	if err != nil && err != store.ErrNotFound {
		return nil, &store.StoreError{Op: "get latest job run", Err: err}
	}
	if last != nil && last.Status == store.RunStatusRunning {
		return nil, &store.StateConflictError{Entity: "job run", State: string(last.Status), Op: "start a new run"}
	}

	run := &store.JobRun{
		ID:        uuid.New(),
		JobID:     jobID,
		Status:    store.RunStatusRunning,
		StartedAt: m.now().UTC(),
	}
	if err := m.store.CreateJobRun(ctx, nil, run); err != nil {
		return nil, &store.StoreError{Op: "create job run", Err: err}
	}

	m.emit(ctx, store.Notification{
		UserID:    job.OwnerID,
		Severity:  store.SeverityInfo,
		Category:  store.CategoryJob,
		Message:   "Job run started",
		RelatedID: &job.ID,
	})
	return run, nil
}

// CompleteJobRun records a successful run outcome. Once jobs terminate at
// completed; recurring jobs return to active with next_run recomputed from
// last_run.
func (m *Manager) CompleteJobRun(ctx context.Context, runID uuid.UUID, rowsProcessed *int64) error {
	return m.finishJobRun(ctx, runID, true, rowsProcessed, "")
}

// FailJobRun records a failed run outcome. Once jobs terminate at failed;
// recurring jobs return to active and keep their schedule.
func (m *Manager) FailJobRun(ctx context.Context, runID uuid.UUID, message string) error {
	return m.finishJobRun(ctx, runID, false, nil, message)
}

func (m *Manager) finishJobRun(ctx context.Context, runID uuid.UUID, success bool, rowsProcessed *int64, message string) error {
	run, err := m.store.GetJobRunByID(ctx, runID)
	if err != nil {
		if err == store.ErrNotFound {
			return fmt.Errorf("job run %s: %w", runID, store.ErrNotFound)
		}
		return &store.StoreError{Op: "get job run", Err: err}
	}

	if run.Status != store.RunStatusRunning {
		return &store.StateConflictError{Entity: "job run", State: string(run.Status), Op: "finish"}
	}

	// Resolve the job before the run row changes so a purged job fails the
	// whole report instead of leaving it half applied. A soft-deleted job
	// still accepts its result: the run was already in flight, and the job
	// keeps its history through a restore.
	job, err := m.store.GetJobByID(ctx, run.JobID)
	if err != nil {
		if err == store.ErrNotFound {
			return fmt.Errorf("job %s: %w", run.JobID, store.ErrNotFound)
		}
		return &store.StoreError{Op: "get job", Err: err}
	}

	completedAt := m.now().UTC()
	run.CompletedAt = &completedAt
	if success {
		run.Status = store.RunStatusSuccess
		run.RowsProcessed = rowsProcessed
	} else {
		run.Status = store.RunStatusFailed
		run.ErrorMessage = &message
	}

	if err := m.store.UpdateJobRun(ctx, run); err != nil {
		return &store.StoreError{Op: "update job run", Err: err}
	}

	lastRun := completedAt
	job.LastRun = &lastRun

	if job.Frequency == store.FrequencyOnce {
		// A once job runs a single time and is not rescheduled.
		if success {
			job.Status = store.JobStatusCompleted
		} else {
			job.Status = store.JobStatusFailed
		}
		job.NextRun = nil
	} else {
		job.Status = store.JobStatusActive
		next := schedule.NextRun(job.Frequency, lastRun)
		job.NextRun = &next
	}

	if err := m.store.UpdateJobSchedule(ctx, job); err != nil {
		return &store.StoreError{Op: "update job schedule", Err: err}
	}

	severity := store.SeverityInfo
	msg := "Job run completed"
	if !success {
		severity = store.SeverityError
		msg = fmt.Sprintf("Job run failed: %s", message)
	}
	m.emit(ctx, store.Notification{
		UserID:    job.OwnerID,
		Severity:  severity,
		Category:  store.CategoryJob,
		Message:   msg,
		RelatedID: &job.ID,
	})
	return nil
}

func (m *Manager) getDataset(ctx context.Context, id uuid.UUID) (*store.Dataset, error) {
	dataset, err := m.store.GetDatasetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("dataset %s: %w", id, store.ErrNotFound)
		}
		return nil, &store.StoreError{Op: "get dataset", Err: err}
	}
	if dataset.IsDeleted {
		return nil, fmt.Errorf("dataset %s: %w", id, store.ErrNotFound)
	}
	return dataset, nil
}

func (m *Manager) getJob(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	job, err := m.store.GetJobByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
		}
		return nil, &store.StoreError{Op: "get job", Err: err}
	}
	if job.IsDeleted {
		return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
	}
	return job, nil
}

func (m *Manager) emit(ctx context.Context, n store.Notification) {
	if err := m.dispatcher.Emit(ctx, n); err != nil {
		m.log.Warn("notification dispatch failed",
			"category", n.Category,
			"severity", n.Severity,
			"error", err,
		)
	}
}
