package handlers

import (
	"net/http"
)

// Healthz handles GET /healthz. It reports degraded when the database is
// unreachable.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.respondJson(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	h.respondJson(w, http.StatusOK, map[string]string{"status": "ok"})
}
