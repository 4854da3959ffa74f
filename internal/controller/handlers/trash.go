package handlers

import (
	"net/http"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/store"

	"github.com/google/uuid"
)

// ownedEntityRef resolves the path id into an entity ref after checking the
// entity belongs to the authenticated user. Foreign entities are reported
// as ErrNotFound, never as forbidden.
func (h *Handlers) ownedEntityRef(r *http.Request, entityType store.EntityType) (store.EntityRef, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return store.EntityRef{}, store.ErrNotFound
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return store.EntityRef{}, &store.ValidationError{Reason: "invalid " + string(entityType) + " id"}
	}

	ref := store.EntityRef{Type: entityType, ID: id}
	lc, err := h.store.GetEntityLifecycle(r.Context(), ref)
	if err != nil {
		return store.EntityRef{}, err
	}
	if lc.OwnerID != ownerID {
		return store.EntityRef{}, store.ErrNotFound
	}
	return ref, nil
}

func (h *Handlers) softDeleteEntity(w http.ResponseWriter, r *http.Request, entityType store.EntityType) {
	ref, err := h.ownedEntityRef(r, entityType)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.lifecycle.SoftDelete(r.Context(), ref); err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusNoContent, nil)
}

func (h *Handlers) restoreEntity(w http.ResponseWriter, r *http.Request, entityType store.EntityType) {
	ref, err := h.ownedEntityRef(r, entityType)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.lifecycle.Restore(r.Context(), ref); err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusNoContent, nil)
}

func (h *Handlers) purgeEntity(w http.ResponseWriter, r *http.Request, entityType store.EntityType) {
	ref, err := h.ownedEntityRef(r, entityType)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.lifecycle.PermanentlyDelete(r.Context(), ref); err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusNoContent, nil)
}
