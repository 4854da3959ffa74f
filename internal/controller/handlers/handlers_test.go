package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/lifecycle"
	"dataforge/internal/notify"
	"dataforge/internal/store"
	"dataforge/internal/wizard"

	"github.com/google/uuid"
)

// mockTx satisfies store.Tx without a database.
type mockTx struct{}

func (mockTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (mockTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (mockTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (mockTx) Commit() error                                                    { return nil }
func (mockTx) Rollback() error                                                  { return nil }

// mockStore is an in-memory StoreFactory.
type mockStore struct {
	users           map[uuid.UUID]*store.User
	usersByKeyHash  map[string]*store.User
	sources         map[uuid.UUID]*store.Source
	datasets        map[uuid.UUID]*store.Dataset
	transformations map[uuid.UUID]*store.Transformation
	jobs            map[uuid.UUID]*store.Job
	runs            map[uuid.UUID]*store.JobRun
	runsOrder       []uuid.UUID
	notifs          []store.Notification
}

func newMockStore() *mockStore {
	return &mockStore{
		users:           make(map[uuid.UUID]*store.User),
		usersByKeyHash:  make(map[string]*store.User),
		sources:         make(map[uuid.UUID]*store.Source),
		datasets:        make(map[uuid.UUID]*store.Dataset),
		transformations: make(map[uuid.UUID]*store.Transformation),
		jobs:            make(map[uuid.UUID]*store.Job),
		runs:            make(map[uuid.UUID]*store.JobRun),
	}
}

func (m *mockStore) BeginTx(context.Context) (store.Tx, error) { return mockTx{}, nil }
func (m *mockStore) Ping(context.Context) error                { return nil }

func (m *mockStore) CreateUser(_ context.Context, user *store.User, hashedKey string) error {
	m.users[user.ID] = user
	m.usersByKeyHash[hashedKey] = user
	return nil
}

func (m *mockStore) GetUserByAPIKeyHash(_ context.Context, hash string) (*store.User, error) {
	if u, ok := m.usersByKeyHash[hash]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) CreateSource(_ context.Context, _ store.DBTransaction, s *store.Source) error {
	m.sources[s.ID] = s
	return nil
}

func (m *mockStore) GetSourceByID(_ context.Context, id uuid.UUID) (*store.Source, error) {
	s, ok := m.sources[id]
	if !ok || s.IsDeleted {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (m *mockStore) ListSources(_ context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Source, error) {
	var out []store.Source
	for _, s := range m.sources {
		if s.OwnerID == ownerID && (includeDeleted || !s.IsDeleted) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateSourceStatus(_ context.Context, id uuid.UUID, status store.SourceStatus) error {
	s, ok := m.sources[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *mockStore) CreateDataset(_ context.Context, _ store.DBTransaction, d *store.Dataset) error {
	m.datasets[d.ID] = d
	return nil
}

func (m *mockStore) GetDatasetByID(_ context.Context, id uuid.UUID) (*store.Dataset, error) {
	d, ok := m.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockStore) ListDatasets(_ context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Dataset, error) {
	var out []store.Dataset
	for _, d := range m.datasets {
		if d.OwnerID == ownerID && (includeDeleted || !d.IsDeleted) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateDatasetRun(_ context.Context, d *store.Dataset) error {
	cp := *d
	m.datasets[d.ID] = &cp
	return nil
}

func (m *mockStore) CreateTransformation(_ context.Context, _ store.DBTransaction, tr *store.Transformation) error {
	m.transformations[tr.ID] = tr
	return nil
}

func (m *mockStore) GetTransformationByID(_ context.Context, id uuid.UUID) (*store.Transformation, error) {
	tr, ok := m.transformations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return tr, nil
}

func (m *mockStore) ListTransformations(_ context.Context, ownerID uuid.UUID) ([]store.Transformation, error) {
	var out []store.Transformation
	for _, tr := range m.transformations {
		if tr.OwnerID == ownerID {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (m *mockStore) CreateJob(_ context.Context, _ store.DBTransaction, j *store.Job) error {
	m.jobs[j.ID] = j
	return nil
}

func (m *mockStore) GetJobByID(_ context.Context, id uuid.UUID) (*store.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockStore) ListJobs(_ context.Context, ownerID uuid.UUID, includeDeleted bool) ([]store.Job, error) {
	var out []store.Job
	for _, j := range m.jobs {
		if j.OwnerID == ownerID && (includeDeleted || !j.IsDeleted) {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateJobSchedule(_ context.Context, j *store.Job) error {
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *mockStore) ClaimDueJobs(context.Context, int, time.Duration) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *mockStore) CountDueJobs(context.Context) (int64, error) { return 0, nil }

func (m *mockStore) CreateJobRun(_ context.Context, _ store.DBTransaction, run *store.JobRun) error {
	m.runs[run.ID] = run
	m.runsOrder = append(m.runsOrder, run.ID)
	return nil
}

func (m *mockStore) GetJobRunByID(_ context.Context, id uuid.UUID) (*store.JobRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *mockStore) GetLatestJobRun(_ context.Context, jobID uuid.UUID) (*store.JobRun, error) {
	for i := len(m.runsOrder) - 1; i >= 0; i-- {
		if r := m.runs[m.runsOrder[i]]; r.JobID == jobID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListJobRuns(_ context.Context, jobID uuid.UUID, _ int) ([]store.JobRun, error) {
	var out []store.JobRun
	for _, id := range m.runsOrder {
		if m.runs[id].JobID == jobID {
			out = append(out, *m.runs[id])
		}
	}
	return out, nil
}

func (m *mockStore) UpdateJobRun(_ context.Context, run *store.JobRun) error {
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *mockStore) InsertNotification(_ context.Context, n *store.Notification) error {
	m.notifs = append(m.notifs, *n)
	return nil
}

func (m *mockStore) ListNotifications(_ context.Context, userID uuid.UUID, unreadOnly bool, _ int) ([]store.Notification, error) {
	var out []store.Notification
	for _, n := range m.notifs {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockStore) MarkNotificationRead(_ context.Context, id, userID uuid.UUID) error {
	for i := range m.notifs {
		if m.notifs[i].ID == id && m.notifs[i].UserID == userID {
			m.notifs[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockStore) DeleteNotificationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []store.Notification
	var removed int64
	for _, n := range m.notifs {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	m.notifs = kept
	return removed, nil
}

func (m *mockStore) softDeleteFields(ref store.EntityRef) (*store.SoftDeleteFields, uuid.UUID, bool) {
	switch ref.Type {
	case store.EntitySource:
		if s, ok := m.sources[ref.ID]; ok {
			return &s.SoftDeleteFields, s.OwnerID, true
		}
	case store.EntityDataset:
		if d, ok := m.datasets[ref.ID]; ok {
			return &d.SoftDeleteFields, d.OwnerID, true
		}
	case store.EntityJob:
		if j, ok := m.jobs[ref.ID]; ok {
			return &j.SoftDeleteFields, j.OwnerID, true
		}
	}
	return nil, uuid.Nil, false
}

func (m *mockStore) GetEntityLifecycle(_ context.Context, ref store.EntityRef) (*store.EntityLifecycle, error) {
	sd, ownerID, ok := m.softDeleteFields(ref)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.EntityLifecycle{OwnerID: ownerID, SoftDeleteFields: *sd}, nil
}

func (m *mockStore) SoftDeleteEntity(_ context.Context, ref store.EntityRef, at time.Time) error {
	sd, _, ok := m.softDeleteFields(ref)
	if !ok {
		return store.ErrNotFound
	}
	sd.IsDeleted = true
	sd.DeletionMarkedAt = &at
	return nil
}

func (m *mockStore) RestoreEntity(_ context.Context, ref store.EntityRef) error {
	sd, _, ok := m.softDeleteFields(ref)
	if !ok {
		return store.ErrNotFound
	}
	sd.IsDeleted = false
	sd.DeletionMarkedAt = nil
	return nil
}

func (m *mockStore) PurgeEntity(_ context.Context, ref store.EntityRef) error {
	switch ref.Type {
	case store.EntitySource:
		delete(m.sources, ref.ID)
	case store.EntityDataset:
		delete(m.datasets, ref.ID)
	case store.EntityJob:
		delete(m.jobs, ref.ID)
	}
	return nil
}

func (m *mockStore) PurgeExpiredEntities(context.Context, store.EntityType, time.Time) (int64, error) {
	return 0, nil
}

func newTestHandlers(m *mockStore) *Handlers {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lm := lifecycle.New(m, notify.NewStoreDispatcher(m), log)
	return New(m, lm, wizard.NewSessions(), log)
}

func authedRequest(method, target string, body io.Reader, user *store.User) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.NewContextWithUser(req.Context(), user)
	return req.WithContext(ctx)
}

func testUser() *store.User {
	return &store.User{ID: uuid.New(), Name: "tester", CreatedAt: time.Now().UTC()}
}
