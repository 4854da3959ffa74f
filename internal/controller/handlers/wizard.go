package handlers

import (
	"encoding/json"
	"net/http"

	"dataforge/internal/controller/middleware"
	"dataforge/internal/store"
	"dataforge/internal/wizard"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// StartWizard handles POST /wizard.
// It opens a new in-memory session at the source step; nothing is persisted
// until the session commits.
func (h *Handlers) StartWizard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sess := h.sessions.Create(ownerID)

	sess.Mu.Lock()
	resp := wizardStateResponse(sess)
	sess.Mu.Unlock()

	h.respondJson(w, http.StatusCreated, resp)
}

// GetWizard handles GET /wizard/{id}.
func (h *Handlers) GetWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	sess.Mu.Lock()
	resp := wizardStateResponse(sess)
	sess.Mu.Unlock()

	h.respondJson(w, http.StatusOK, resp)
}

// UpdateWizard handles PUT /wizard/{id}.
// The whole snapshot is replaced on every update, so data entered on other
// steps survives back-navigation.
func (h *Handlers) UpdateWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var payload api.WizardSnapshotPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess.Mu.Lock()
	sess.Controller.Apply(snapshotFromPayload(payload))
	resp := wizardStateResponse(sess)
	sess.Mu.Unlock()

	h.respondJson(w, http.StatusOK, resp)
}

// AdvanceWizard handles POST /wizard/{id}/advance.
// Advancing past the preview step commits the session.
func (h *Handlers) AdvanceWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	sess.Mu.Lock()
	result, err := sess.Controller.Advance(r.Context(), h.store)
	resp := wizardStateResponse(sess)
	sess.Mu.Unlock()

	if err != nil {
		h.handleError(w, err)
		return
	}

	if result != nil {
		h.sessions.Remove(sess.ID)
		h.respondJson(w, http.StatusCreated, commitResponse(result))
		return
	}
	h.respondJson(w, http.StatusOK, resp)
}

// RetreatWizard handles POST /wizard/{id}/retreat.
func (h *Handlers) RetreatWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	sess.Mu.Lock()
	err = sess.Controller.Retreat()
	resp := wizardStateResponse(sess)
	sess.Mu.Unlock()

	if err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, resp)
}

// CommitWizard handles POST /wizard/{id}/commit.
// Commit from any step re-checks every guard, so an incomplete session can
// never commit early.
func (h *Handlers) CommitWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	sess.Mu.Lock()
	result, err := sess.Controller.Commit(r.Context(), h.store)
	sess.Mu.Unlock()

	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sessions.Remove(sess.ID)
	h.respondJson(w, http.StatusCreated, commitResponse(result))
}

// CancelWizard handles DELETE /wizard/{id}.
// Abandoning a session has no side effects.
func (h *Handlers) CancelWizard(w http.ResponseWriter, r *http.Request) {
	sess, err := h.getSession(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sessions.Remove(sess.ID)
	h.respondJson(w, http.StatusNoContent, nil)
}

func (h *Handlers) getSession(r *http.Request) (*wizard.Session, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, store.ErrNotFound
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &store.ValidationError{Reason: "invalid session id"}
	}

	return h.sessions.Get(id, ownerID)
}

func wizardStateResponse(sess *wizard.Session) api.WizardStateResponse {
	snap := sess.Controller.Snapshot()
	return api.WizardStateResponse{
		SessionID:  sess.ID.String(),
		Step:       string(sess.Controller.Step()),
		CanAdvance: sess.Controller.CanAdvance(),
		Snapshot:   payloadFromSnapshot(snap),
	}
}

func commitResponse(result *wizard.CommitResult) api.WizardCommitResponse {
	resp := api.WizardCommitResponse{DatasetID: result.DatasetID.String()}
	if result.TransformationID != nil {
		id := result.TransformationID.String()
		resp.TransformationID = &id
	}
	return resp
}

func snapshotFromPayload(p api.WizardSnapshotPayload) wizard.Snapshot {
	snap := wizard.Snapshot{
		SourceID:          p.SourceID,
		ExtractionType:    store.ExtractionType(p.ExtractionType),
		Name:              p.Name,
		TemplateName:      p.TemplateName,
		DependentTemplate: p.DependentTemplate,
		CustomQuery:       p.CustomQuery,
	}

	if p.Transformation != nil {
		draft := &wizard.TransformationDraft{
			Name:               p.Transformation.Name,
			SkipTransformation: p.Transformation.SkipTransformation,
		}
		for _, f := range p.Transformation.Fields {
			draft.Fields = append(draft.Fields, store.TransformationField{
				ID:       f.ID,
				Name:     f.Name,
				Category: f.Category,
				Selected: f.Selected,
				Alias:    f.Alias,
			})
		}
		for _, d := range p.Transformation.DerivedColumns {
			draft.DerivedColumns = append(draft.DerivedColumns, store.DerivedColumn{
				Name:        d.Name,
				Expression:  d.Expression,
				Description: d.Description,
			})
		}
		snap.Transformation = draft
	}
	return snap
}

func payloadFromSnapshot(s wizard.Snapshot) api.WizardSnapshotPayload {
	p := api.WizardSnapshotPayload{
		SourceID:          s.SourceID,
		ExtractionType:    string(s.ExtractionType),
		Name:              s.Name,
		TemplateName:      s.TemplateName,
		DependentTemplate: s.DependentTemplate,
		CustomQuery:       s.CustomQuery,
	}

	if s.Transformation != nil {
		t := &api.TransformationPayload{
			Name:               s.Transformation.Name,
			SkipTransformation: s.Transformation.SkipTransformation,
		}
		for _, f := range s.Transformation.Fields {
			t.Fields = append(t.Fields, api.TransformationFieldPayload{
				ID:       f.ID,
				Name:     f.Name,
				Category: f.Category,
				Selected: f.Selected,
				Alias:    f.Alias,
			})
		}
		for _, d := range s.Transformation.DerivedColumns {
			t.DerivedColumns = append(t.DerivedColumns, api.DerivedColumnPayload{
				Name:        d.Name,
				Expression:  d.Expression,
				Description: d.Description,
			})
		}
		p.Transformation = t
	}
	return p
}
