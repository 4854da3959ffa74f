package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/schedule"
	"dataforge/internal/store"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// CreateJob handles POST /jobs.
// A job is created pending and must be toggled active before it runs.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	freq := store.Frequency(req.Frequency)
	if !schedule.ValidFrequency(freq) {
		h.httpError(w, "Invalid frequency", http.StatusBadRequest)
		return
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		h.httpError(w, "Invalid source id", http.StatusBadRequest)
		return
	}

	source, err := h.store.GetSourceByID(ctx, sourceID)
	if err != nil || source.OwnerID != ownerID {
		h.httpError(w, "Related source not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	cronSpec, err := schedule.CronSpec(freq, now)
	if err != nil {
		h.httpError(w, "Invalid frequency", http.StatusBadRequest)
		return
	}

	job := &store.Job{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		SourceID:  sourceID,
		Frequency: freq,
		Schedule:  cronSpec,
		Status:    store.JobStatusPending,
		CreatedAt: now,
	}

	if req.TransformationID != nil {
		trID, err := uuid.Parse(*req.TransformationID)
		if err != nil {
			h.httpError(w, "Invalid transformation id", http.StatusBadRequest)
			return
		}
		job.TransformationID = &trID
	}
	if req.DestinationID != nil {
		destID, err := uuid.Parse(*req.DestinationID)
		if err != nil {
			h.httpError(w, "Invalid destination id", http.StatusBadRequest)
			return
		}
		job.DestinationID = &destID
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if err := h.store.CreateJob(ctx, tx, job); err != nil {
		h.httpError(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		h.httpError(w, "Failed to commit transaction", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, jobResponse(job))
}

// ListJobs handles GET /jobs. The deleted=true query includes trash.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	includeDeleted := r.URL.Query().Get("deleted") == "true"
	jobs, err := h.store.ListJobs(ctx, ownerID, includeDeleted)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := make([]api.JobResponse, 0, len(jobs))
	for i := range jobs {
		resp = append(resp, jobResponse(&jobs[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetJob handles GET /jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.getOwnedJob(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, jobResponse(job))
}

// ToggleJob handles POST /jobs/{id}/toggle.
// Flips the job between active and paused.
func (h *Handlers) ToggleJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.getOwnedJob(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	updated, err := h.lifecycle.ToggleJob(r.Context(), job.ID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, jobResponse(updated))
}

// TriggerJob handles POST /jobs/{id}/trigger.
// Starts a run immediately, outside the schedule.
func (h *Handlers) TriggerJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.getOwnedJob(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	run, err := h.lifecycle.TriggerJob(r.Context(), job.ID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusAccepted, jobRunResponse(run))
}

// ListJobRuns handles GET /jobs/{id}/runs.
func (h *Handlers) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	job, err := h.getOwnedJob(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.store.ListJobRuns(r.Context(), job.ID, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := make([]api.JobRunResponse, 0, len(runs))
	for i := range runs {
		resp = append(resp, jobRunResponse(&runs[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// DeleteJob handles DELETE /jobs/{id} (soft delete).
func (h *Handlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	h.softDeleteEntity(w, r, store.EntityJob)
}

// RestoreJob handles POST /jobs/{id}/restore.
func (h *Handlers) RestoreJob(w http.ResponseWriter, r *http.Request) {
	h.restoreEntity(w, r, store.EntityJob)
}

// PurgeJob handles DELETE /jobs/{id}/purge.
func (h *Handlers) PurgeJob(w http.ResponseWriter, r *http.Request) {
	h.purgeEntity(w, r, store.EntityJob)
}

// InternalJobRunResult handles PUT /internal/runs/{id}/result.
// Called by the execution worker when a run finishes.
func (h *Handlers) InternalJobRunResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid run id", http.StatusBadRequest)
		return
	}

	var req api.JobRunResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Success {
		err = h.lifecycle.CompleteJobRun(ctx, runID, req.RowsProcessed)
	} else {
		err = h.lifecycle.FailJobRun(ctx, runID, req.Error)
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}

func (h *Handlers) getOwnedJob(r *http.Request) (*store.Job, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, store.ErrNotFound
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &store.ValidationError{Reason: "invalid job id"}
	}

	job, err := h.store.GetJobByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID || job.IsDeleted {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func jobResponse(j *store.Job) api.JobResponse {
	resp := api.JobResponse{
		ID:        j.ID.String(),
		SourceID:  j.SourceID.String(),
		Frequency: string(j.Frequency),
		Schedule:  j.Schedule,
		Status:    string(j.Status),
		LastRun:   j.LastRun,
		NextRun:   j.NextRun,
		CreatedAt: j.CreatedAt,
	}
	if j.TransformationID != nil {
		id := j.TransformationID.String()
		resp.TransformationID = &id
	}
	if j.DestinationID != nil {
		id := j.DestinationID.String()
		resp.DestinationID = &id
	}
	return resp
}

func jobRunResponse(run *store.JobRun) api.JobRunResponse {
	return api.JobRunResponse{
		ID:            run.ID.String(),
		JobID:         run.JobID.String(),
		Status:        string(run.Status),
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		RowsProcessed: run.RowsProcessed,
		Error:         run.ErrorMessage,
	}
}
