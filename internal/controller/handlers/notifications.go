package handlers

import (
	"net/http"
	"strconv"

	"dataforge/internal/controller/middleware"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// ListNotifications handles GET /notifications.
// Supports unread=true and limit query parameters.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := h.store.ListNotifications(ctx, userID, unreadOnly, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := make([]api.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		item := api.NotificationResponse{
			ID:        n.ID.String(),
			Severity:  string(n.Severity),
			Category:  string(n.Category),
			Message:   n.Message,
			Read:      n.Read,
			Link:      n.Link,
			CreatedAt: n.CreatedAt,
		}
		if n.RelatedID != nil {
			id := n.RelatedID.String()
			item.RelatedID = &id
		}
		resp = append(resp, item)
	}
	h.respondJson(w, http.StatusOK, resp)
}

// MarkNotificationRead handles POST /notifications/{id}/read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.store.MarkNotificationRead(ctx, id, userID); err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusNoContent, nil)
}
