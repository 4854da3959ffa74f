// Package handlers contains HTTP handlers for the API server.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"dataforge/internal/lifecycle"
	"dataforge/internal/store"
	"dataforge/internal/wizard"
	"dataforge/pkg/api"
)

// StoreFactory combines the interfaces needed for the API server to function.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.UserStore
	store.SourceStore
	store.DatasetStore
	store.TransformationStore
	store.JobStore
	store.NotificationStore
	store.LifecycleStore
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store     StoreFactory
	lifecycle *lifecycle.Manager
	sessions  *wizard.Sessions
	log       *slog.Logger
}

// New creates a new Handlers instance with the given dependencies.
func New(s StoreFactory, lm *lifecycle.Manager, sessions *wizard.Sessions, log *slog.Logger) *Handlers {
	return &Handlers{
		store:     s,
		lifecycle: lm,
		sessions:  sessions,
		log:       log,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// handleError maps domain errors to HTTP status codes.
func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	var validation *store.ValidationError
	var derived *store.InvalidDerivedColumnError
	var conflict *store.StateConflictError
	var partial *store.PartialCommitError

	switch {
	case errors.Is(err, store.ErrNotFound):
		h.httpError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &validation), errors.As(err, &derived):
		h.httpError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		h.httpError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &partial):
		// The dataset exists; surface its id so the caller can reconcile.
		h.respondJson(w, http.StatusInternalServerError, api.ErrorResponse{
			Error:   "commit partially succeeded",
			Code:    strconv.Itoa(http.StatusInternalServerError),
			Details: err.Error(),
		})
	default:
		h.log.Error("request failed", "error", err)
		h.httpError(w, "internal error", http.StatusInternalServerError)
	}
}
