package handlers

import (
	"encoding/json"
	"net/http"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/lifecycle"
	"dataforge/internal/store"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// ListDatasets handles GET /datasets. The deleted=true query includes trash.
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	includeDeleted := r.URL.Query().Get("deleted") == "true"
	datasets, err := h.store.ListDatasets(ctx, ownerID, includeDeleted)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := make([]api.DatasetResponse, 0, len(datasets))
	for i := range datasets {
		resp = append(resp, datasetResponse(&datasets[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetDataset handles GET /datasets/{id}.
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.getOwnedDataset(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, datasetResponse(dataset))
}

// RunDataset handles POST /datasets/{id}/run.
// It moves the dataset to running; the extraction itself is performed by an
// external worker that reports back through the internal result endpoint.
func (h *Handlers) RunDataset(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.getOwnedDataset(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	updated, err := h.lifecycle.StartRun(r.Context(), dataset.ID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusAccepted, datasetResponse(updated))
}

// DeleteDataset handles DELETE /datasets/{id} (soft delete).
func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	h.softDeleteEntity(w, r, store.EntityDataset)
}

// RestoreDataset handles POST /datasets/{id}/restore.
func (h *Handlers) RestoreDataset(w http.ResponseWriter, r *http.Request) {
	h.restoreEntity(w, r, store.EntityDataset)
}

// PurgeDataset handles DELETE /datasets/{id}/purge.
func (h *Handlers) PurgeDataset(w http.ResponseWriter, r *http.Request) {
	h.purgeEntity(w, r, store.EntityDataset)
}

// InternalDatasetResult handles PUT /internal/datasets/{id}/result.
// Called by the extraction worker when a run finishes.
func (h *Handlers) InternalDatasetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid dataset id", http.StatusBadRequest)
		return
	}

	var req api.DatasetResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Success {
		err = h.lifecycle.CompleteRun(ctx, id, lifecycle.RunResult{
			RecordCount: req.RecordCount,
			ResultData:  req.ResultData,
		})
	} else {
		err = h.lifecycle.FailRun(ctx, id, req.Error)
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}

func (h *Handlers) getOwnedDataset(r *http.Request) (*store.Dataset, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, store.ErrNotFound
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &store.ValidationError{Reason: "invalid dataset id"}
	}

	dataset, err := h.store.GetDatasetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if dataset.OwnerID != ownerID || dataset.IsDeleted {
		return nil, store.ErrNotFound
	}
	return dataset, nil
}

func datasetResponse(d *store.Dataset) api.DatasetResponse {
	return api.DatasetResponse{
		ID:             d.ID.String(),
		SourceID:       d.SourceID.String(),
		Name:           d.Name,
		ExtractionType: string(d.ExtractionType),
		TemplateName:   d.TemplateName,
		CustomQuery:    d.CustomQuery,
		Status:         string(d.Status),
		Progress:       d.Progress,
		RecordCount:    d.RecordCount,
		StatusMessage:  d.StatusMessage,
		CompletedAt:    d.CompletedAt,
		CreatedAt:      d.CreatedAt,
	}
}
