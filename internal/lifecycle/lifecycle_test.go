package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// fakeStore is an in-memory implementation of the lifecycle Store surface.
type fakeStore struct {
	datasets  map[uuid.UUID]*store.Dataset
	jobs      map[uuid.UUID]*store.Job
	runs      map[uuid.UUID]*store.JobRun
	runsOrder []uuid.UUID
	notifs    []store.Notification

	updateDatasetErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		datasets: make(map[uuid.UUID]*store.Dataset),
		jobs:     make(map[uuid.UUID]*store.Job),
		runs:     make(map[uuid.UUID]*store.JobRun),
	}
}

func (f *fakeStore) CreateDataset(_ context.Context, _ store.DBTransaction, d *store.Dataset) error {
	cp := *d
	f.datasets[d.ID] = &cp
	return nil
}

func (f *fakeStore) GetDatasetByID(_ context.Context, id uuid.UUID) (*store.Dataset, error) {
	d, ok := f.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) ListDatasets(_ context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Dataset, error) {
	var out []store.Dataset
	for _, d := range f.datasets {
		if d.OwnerID != ownerID {
			continue
		}
		if d.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore) UpdateDatasetRun(_ context.Context, d *store.Dataset) error {
	if f.updateDatasetErr != nil {
		return f.updateDatasetErr
	}
	cp := *d
	f.datasets[d.ID] = &cp
	return nil
}

func (f *fakeStore) CreateJob(_ context.Context, _ store.DBTransaction, j *store.Job) error {
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeStore) GetJobByID(_ context.Context, id uuid.UUID) (*store.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) ListJobs(_ context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Job, error) {
	var out []store.Job
	for _, j := range f.jobs {
		if j.OwnerID != ownerID {
			continue
		}
		if j.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeStore) UpdateJobSchedule(_ context.Context, j *store.Job) error {
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeStore) ClaimDueJobs(_ context.Context, _ int, _ time.Duration) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeStore) CountDueJobs(_ context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeStore) CreateJobRun(_ context.Context, _ store.DBTransaction, r *store.JobRun) error {
	cp := *r
	f.runs[r.ID] = &cp
	f.runsOrder = append(f.runsOrder, r.ID)
	return nil
}

func (f *fakeStore) GetJobRunByID(_ context.Context, id uuid.UUID) (*store.JobRun, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetLatestJobRun(_ context.Context, jobID uuid.UUID) (*store.JobRun, error) {
	for i := len(f.runsOrder) - 1; i >= 0; i-- {
		r := f.runs[f.runsOrder[i]]
		if r.JobID == jobID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListJobRuns(_ context.Context, jobID uuid.UUID, _ int) ([]store.JobRun, error) {
	var out []store.JobRun
	for _, id := range f.runsOrder {
		if f.runs[id].JobID == jobID {
			out = append(out, *f.runs[id])
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateJobRun(_ context.Context, r *store.JobRun) error {
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeStore) lifecycleOf(ref store.EntityRef) (*store.SoftDeleteFields, uuid.UUID, bool) {
	switch ref.Type {
	case store.EntityDataset:
		if d, ok := f.datasets[ref.ID]; ok {
			return &d.SoftDeleteFields, d.OwnerID, true
		}
	case store.EntityJob:
		if j, ok := f.jobs[ref.ID]; ok {
			return &j.SoftDeleteFields, j.OwnerID, true
		}
	}
	return nil, uuid.Nil, false
}

func (f *fakeStore) GetEntityLifecycle(_ context.Context, ref store.EntityRef) (*store.EntityLifecycle, error) {
	sd, owner, ok := f.lifecycleOf(ref)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.EntityLifecycle{OwnerID: owner, SoftDeleteFields: *sd}, nil
}

func (f *fakeStore) SoftDeleteEntity(_ context.Context, ref store.EntityRef, at time.Time) error {
	sd, _, ok := f.lifecycleOf(ref)
	if !ok {
		return store.ErrNotFound
	}
	sd.IsDeleted = true
	sd.DeletionMarkedAt = &at
	return nil
}

func (f *fakeStore) RestoreEntity(_ context.Context, ref store.EntityRef) error {
	sd, _, ok := f.lifecycleOf(ref)
	if !ok {
		return store.ErrNotFound
	}
	sd.IsDeleted = false
	sd.DeletionMarkedAt = nil
	return nil
}

func (f *fakeStore) PurgeEntity(_ context.Context, ref store.EntityRef) error {
	switch ref.Type {
	case store.EntityDataset:
		delete(f.datasets, ref.ID)
	case store.EntityJob:
		delete(f.jobs, ref.ID)
	}
	return nil
}

func (f *fakeStore) PurgeExpiredEntities(_ context.Context, entityType store.EntityType, cutoff time.Time) (int64, error) {
	var removed int64
	if entityType == store.EntityDataset {
		for id, d := range f.datasets {
			if d.IsDeleted && d.DeletionMarkedAt != nil && d.DeletionMarkedAt.Before(cutoff) {
				delete(f.datasets, id)
				removed++
			}
		}
	}
	return removed, nil
}

func (f *fakeStore) InsertNotification(_ context.Context, n *store.Notification) error {
	f.notifs = append(f.notifs, *n)
	return nil
}

func (f *fakeStore) ListNotifications(_ context.Context, _ uuid.UUID, _ bool, _ int) ([]store.Notification, error) {
	return f.notifs, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (f *fakeStore) DeleteNotificationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []store.Notification
	var removed int64
	for _, n := range f.notifs {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	f.notifs = kept
	return removed, nil
}

// failingDispatcher always errors; lifecycle transitions must not care.
type failingDispatcher struct{}

func (failingDispatcher) Emit(_ context.Context, _ store.Notification) error {
	return errors.New("smtp gateway down")
}

// captureDispatcher records emitted notifications.
type captureDispatcher struct {
	emitted []store.Notification
}

func (d *captureDispatcher) Emit(_ context.Context, n store.Notification) error {
	d.emitted = append(d.emitted, n)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(f *fakeStore, d *captureDispatcher) *Manager {
	if d == nil {
		d = &captureDispatcher{}
	}
	return New(f, d, testLogger())
}

func seedDataset(f *fakeStore, status store.DatasetStatus) *store.Dataset {
	d := &store.Dataset{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "orders",
		Status:  status,
	}
	f.datasets[d.ID] = d
	return d
}

func seedJob(f *fakeStore, freq store.Frequency, status store.JobStatus) *store.Job {
	j := &store.Job{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		SourceID:  uuid.New(),
		Frequency: freq,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	f.jobs[j.ID] = j
	return j
}

func TestStartRun_ConflictWhileRunning(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusRunning)
	m := newTestManager(f, nil)

	_, err := m.StartRun(context.Background(), d.ID)
	var conflict *store.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
}

func TestStartRun_FreshRunResetsTerminalState(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusCompleted)
	count := int64(500)
	done := time.Now().UTC()
	d.Progress = 100
	d.RecordCount = &count
	d.CompletedAt = &done

	m := newTestManager(f, nil)
	got, err := m.StartRun(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	if got.Status != store.DatasetStatusRunning {
		t.Errorf("status = %s, want running", got.Status)
	}
	if got.Progress != 0 || got.RecordCount != nil || got.CompletedAt != nil {
		t.Error("starting a new run must clear the previous result fields")
	}
}

func TestStartRun_DeletedDatasetIsNotFound(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusPending)
	d.IsDeleted = true

	m := newTestManager(f, nil)
	if _, err := m.StartRun(context.Background(), d.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteRun(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusRunning)
	m := newTestManager(f, nil)

	err := m.CompleteRun(context.Background(), d.ID, RunResult{RecordCount: 42})
	if err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	got := f.datasets[d.ID]
	if got.Status != store.DatasetStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.Progress != 100 || got.RecordCount == nil || *got.RecordCount != 42 {
		t.Error("result metadata not persisted")
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	// Terminal states accept no further transition.
	var conflict *store.StateConflictError
	if err := m.CompleteRun(context.Background(), d.ID, RunResult{}); !errors.As(err, &conflict) {
		t.Errorf("expected StateConflictError from terminal state, got %v", err)
	}
}

func TestFailRun(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusRunning)
	m := newTestManager(f, nil)

	if err := m.FailRun(context.Background(), d.ID, "source timeout"); err != nil {
		t.Fatalf("FailRun failed: %v", err)
	}

	got := f.datasets[d.ID]
	if got.Status != store.DatasetStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.StatusMessage == nil || *got.StatusMessage != "source timeout" {
		t.Error("status_message not persisted")
	}
}

func TestToggleJob(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyDaily, store.JobStatusActive)
	next := time.Now().UTC().Add(3 * time.Hour)
	j.NextRun = &next

	m := newTestManager(f, nil)
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	// active -> paused keeps next_run
	got, err := m.ToggleJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("ToggleJob failed: %v", err)
	}
	if got.Status != store.JobStatusPaused {
		t.Fatalf("status = %s, want paused", got.Status)
	}
	if got.NextRun == nil || !got.NextRun.Equal(next) {
		t.Error("pausing must not alter next_run")
	}

	// paused -> active recomputes next_run relative to now
	got, err = m.ToggleJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("ToggleJob failed: %v", err)
	}
	if got.Status != store.JobStatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}
	want := now.Add(24 * time.Hour)
	if got.NextRun == nil || !got.NextRun.Equal(want) {
		t.Errorf("resume next_run = %v, want %v", got.NextRun, want)
	}
}

func TestToggleJob_PendingActivates(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyHourly, store.JobStatusPending)
	m := newTestManager(f, nil)

	got, err := m.ToggleJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("ToggleJob failed: %v", err)
	}
	if got.Status != store.JobStatusActive || got.NextRun == nil {
		t.Error("pending job should activate with a next_run")
	}
}

func TestToggleJob_TerminalIsConflict(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyOnce, store.JobStatusCompleted)
	m := newTestManager(f, nil)

	var conflict *store.StateConflictError
	if _, err := m.ToggleJob(context.Background(), j.ID); !errors.As(err, &conflict) {
		t.Errorf("expected StateConflictError, got %v", err)
	}
}

func TestTriggerJob_RejectsWhileRunning(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyDaily, store.JobStatusActive)
	m := newTestManager(f, nil)

	first, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}
	if first.Status != store.RunStatusRunning {
		t.Fatalf("run status = %s, want running", first.Status)
	}

	_, err = m.TriggerJob(context.Background(), j.ID)
	var conflict *store.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if len(f.runs) != 1 {
		t.Errorf("duplicate run record created: %d runs", len(f.runs))
	}
}

func TestTriggerJob_PausedIsConflict(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyDaily, store.JobStatusPaused)
	m := newTestManager(f, nil)

	var conflict *store.StateConflictError
	if _, err := m.TriggerJob(context.Background(), j.ID); !errors.As(err, &conflict) {
		t.Errorf("expected StateConflictError, got %v", err)
	}
}

func TestCompleteJobRun_OnceTerminates(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyOnce, store.JobStatusActive)
	m := newTestManager(f, nil)

	run, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	rows := int64(120)
	if err := m.CompleteJobRun(context.Background(), run.ID, &rows); err != nil {
		t.Fatalf("CompleteJobRun failed: %v", err)
	}

	gotJob := f.jobs[j.ID]
	if gotJob.Status != store.JobStatusCompleted {
		t.Errorf("once job status = %s, want completed", gotJob.Status)
	}
	if gotJob.NextRun != nil {
		t.Error("once job must not be rescheduled")
	}
	if gotJob.LastRun == nil {
		t.Error("last_run not recorded")
	}

	gotRun := f.runs[run.ID]
	if gotRun.Status != store.RunStatusSuccess || gotRun.RowsProcessed == nil || *gotRun.RowsProcessed != 120 {
		t.Error("run completion fields not persisted")
	}
}

func TestCompleteJobRun_RecurringReturnsToActive(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyWeekly, store.JobStatusActive)
	m := newTestManager(f, nil)

	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	run, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}
	if err := m.CompleteJobRun(context.Background(), run.ID, nil); err != nil {
		t.Fatalf("CompleteJobRun failed: %v", err)
	}

	gotJob := f.jobs[j.ID]
	if gotJob.Status != store.JobStatusActive {
		t.Errorf("recurring job status = %s, want active", gotJob.Status)
	}
	want := now.Add(7 * 24 * time.Hour)
	if gotJob.NextRun == nil || !gotJob.NextRun.Equal(want) {
		t.Errorf("next_run = %v, want %v", gotJob.NextRun, want)
	}
}

func TestCompleteJobRun_SoftDeletedJobStillRecordsResult(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyOnce, store.JobStatusActive)
	m := newTestManager(f, nil)

	run, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	// The owner trashes the job while the run is in flight.
	now := time.Now().UTC()
	f.jobs[j.ID].IsDeleted = true
	f.jobs[j.ID].DeletionMarkedAt = &now

	if err := m.CompleteJobRun(context.Background(), run.ID, nil); err != nil {
		t.Fatalf("CompleteJobRun failed: %v", err)
	}

	gotRun := f.runs[run.ID]
	if gotRun.Status != store.RunStatusSuccess || gotRun.CompletedAt == nil {
		t.Error("run completion not persisted")
	}
	gotJob := f.jobs[j.ID]
	if gotJob.LastRun == nil {
		t.Error("last_run not recorded on the trashed job")
	}
	if gotJob.Status != store.JobStatusCompleted {
		t.Errorf("once job status = %s, want completed", gotJob.Status)
	}
}

func TestCompleteJobRun_PurgedJobLeavesRunOpen(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyDaily, store.JobStatusActive)
	m := newTestManager(f, nil)

	run, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	delete(f.jobs, j.ID)

	if err := m.CompleteJobRun(context.Background(), run.ID, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// The run row is untouched, so the report is retryable as a whole.
	if f.runs[run.ID].Status != store.RunStatusRunning {
		t.Error("run must not half-apply when the job is gone")
	}
}

func TestFailJobRun(t *testing.T) {
	f := newFakeStore()
	j := seedJob(f, store.FrequencyOnce, store.JobStatusActive)
	dispatcher := &captureDispatcher{}
	m := newTestManager(f, dispatcher)

	run, err := m.TriggerJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}
	if err := m.FailJobRun(context.Background(), run.ID, "destination unreachable"); err != nil {
		t.Fatalf("FailJobRun failed: %v", err)
	}

	if f.jobs[j.ID].Status != store.JobStatusFailed {
		t.Errorf("once job status = %s, want failed", f.jobs[j.ID].Status)
	}
	gotRun := f.runs[run.ID]
	if gotRun.Status != store.RunStatusFailed || gotRun.ErrorMessage == nil {
		t.Error("run failure fields not persisted")
	}

	last := dispatcher.emitted[len(dispatcher.emitted)-1]
	if last.Severity != store.SeverityError {
		t.Errorf("failure notification severity = %s, want error", last.Severity)
	}

	// A finished run cannot finish again.
	var conflict *store.StateConflictError
	if err := m.CompleteJobRun(context.Background(), run.ID, nil); !errors.As(err, &conflict) {
		t.Errorf("expected StateConflictError on double finish, got %v", err)
	}
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusCompleted)
	m := newTestManager(f, nil)
	ref := store.EntityRef{Type: store.EntityDataset, ID: d.ID}

	if err := m.SoftDelete(context.Background(), ref); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if !f.datasets[d.ID].IsDeleted || f.datasets[d.ID].DeletionMarkedAt == nil {
		t.Fatal("soft-delete fields not set")
	}

	// Soft-deleting again is a no-op.
	if err := m.SoftDelete(context.Background(), ref); err != nil {
		t.Fatalf("second SoftDelete failed: %v", err)
	}

	if err := m.Restore(context.Background(), ref); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got := f.datasets[d.ID]
	if got.IsDeleted || got.DeletionMarkedAt != nil {
		t.Error("restore must clear both soft-delete fields")
	}

	// Restore is idempotent.
	if err := m.Restore(context.Background(), ref); err != nil {
		t.Errorf("second Restore failed: %v", err)
	}
}

func TestPermanentlyDelete_OnlyFromDeleted(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusCompleted)
	m := newTestManager(f, nil)
	ref := store.EntityRef{Type: store.EntityDataset, ID: d.ID}

	var conflict *store.StateConflictError
	if err := m.PermanentlyDelete(context.Background(), ref); !errors.As(err, &conflict) {
		t.Fatalf("purging a live entity must be StateConflictError, got %v", err)
	}

	if err := m.SoftDelete(context.Background(), ref); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if err := m.PermanentlyDelete(context.Background(), ref); err != nil {
		t.Fatalf("PermanentlyDelete failed: %v", err)
	}
	if _, ok := f.datasets[d.ID]; ok {
		t.Error("entity still present after purge")
	}
}

func TestPurgeExpired_RespectsRetentionWindow(t *testing.T) {
	f := newFakeStore()
	m := newTestManager(f, nil)

	now := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	inside := seedDataset(f, store.DatasetStatusCompleted)
	insideAt := now.AddDate(0, 0, -3)
	inside.IsDeleted = true
	inside.DeletionMarkedAt = &insideAt

	expired := seedDataset(f, store.DatasetStatusCompleted)
	expiredAt := now.AddDate(0, 0, -8) // retention + 1
	expired.IsDeleted = true
	expired.DeletionMarkedAt = &expiredAt

	removed, err := m.PurgeExpired(context.Background(), store.EntityDataset, 7)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := f.datasets[inside.ID]; !ok {
		t.Error("entity inside retention window was purged")
	}
	if _, ok := f.datasets[expired.ID]; ok {
		t.Error("expired entity was not purged")
	}
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	f := newFakeStore()
	d := seedDataset(f, store.DatasetStatusPending)
	m := New(f, failingDispatcher{}, testLogger())

	if _, err := m.StartRun(context.Background(), d.ID); err != nil {
		t.Errorf("transition must succeed despite dispatch failure, got %v", err)
	}
	if f.datasets[d.ID].Status != store.DatasetStatusRunning {
		t.Error("transition was not applied")
	}
}

func TestCleanupNotifications(t *testing.T) {
	f := newFakeStore()
	m := newTestManager(f, nil)

	now := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	f.notifs = []store.Notification{
		{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -10)},
		{ID: uuid.New(), CreatedAt: now.AddDate(0, 0, -2)},
	}

	removed, err := m.CleanupNotifications(context.Background(), 7)
	if err != nil {
		t.Fatalf("CleanupNotifications failed: %v", err)
	}
	if removed != 1 || len(f.notifs) != 1 {
		t.Errorf("removed = %d, remaining = %d; want 1 and 1", removed, len(f.notifs))
	}
}
