package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/store"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// CreateSource handles POST /sources.
func (h *Handlers) CreateSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.URL == "" || req.SourceType == "" {
		h.httpError(w, "Name, URL and SourceType are required", http.StatusBadRequest)
		return
	}

	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	source := &store.Source{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		URL:         req.URL,
		SourceType:  req.SourceType,
		Status:      store.SourceStatusPending,
		Credentials: req.Credentials,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.store.CreateSource(ctx, nil, source); err != nil {
		h.httpError(w, "Failed to create source", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, sourceResponse(source))
}

// ListSources handles GET /sources. The deleted=true query includes trash.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	includeDeleted := r.URL.Query().Get("deleted") == "true"
	sources, err := h.store.ListSources(ctx, ownerID, includeDeleted)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := make([]api.SourceResponse, 0, len(sources))
	for i := range sources {
		resp = append(resp, sourceResponse(&sources[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetSource handles GET /sources/{id}.
func (h *Handlers) GetSource(w http.ResponseWriter, r *http.Request) {
	source, err := h.getOwnedSource(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusOK, sourceResponse(source))
}

// DeleteSource handles DELETE /sources/{id} (soft delete).
func (h *Handlers) DeleteSource(w http.ResponseWriter, r *http.Request) {
	h.softDeleteEntity(w, r, store.EntitySource)
}

// RestoreSource handles POST /sources/{id}/restore.
func (h *Handlers) RestoreSource(w http.ResponseWriter, r *http.Request) {
	h.restoreEntity(w, r, store.EntitySource)
}

// PurgeSource handles DELETE /sources/{id}/purge.
func (h *Handlers) PurgeSource(w http.ResponseWriter, r *http.Request) {
	h.purgeEntity(w, r, store.EntitySource)
}

func (h *Handlers) getOwnedSource(r *http.Request) (*store.Source, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, store.ErrNotFound
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &store.ValidationError{Reason: "invalid source id"}
	}

	source, err := h.store.GetSourceByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if source.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return source, nil
}

func sourceResponse(s *store.Source) api.SourceResponse {
	return api.SourceResponse{
		ID:         s.ID.String(),
		Name:       s.Name,
		URL:        s.URL,
		SourceType: s.SourceType,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
	}
}
