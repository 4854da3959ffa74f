package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dataforge/internal/auth"
	"dataforge/internal/store"
	"dataforge/pkg/api"

	"github.com/google/uuid"
)

// CreateUser handles POST /users.
// The generated API key is returned exactly once; only its hash is stored.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}

	apiKey, err := auth.GenerateKey()
	if err != nil {
		h.httpError(w, "Failed to generate api key", http.StatusInternalServerError)
		return
	}

	user := &store.User{
		ID:             uuid.New(),
		Name:           req.Name,
		RateLimit:      10,
		RateLimitBurst: 20,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.store.CreateUser(ctx, user, auth.HashKey(apiKey)); err != nil {
		h.httpError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, api.CreateUserResponse{
		ID:     user.ID.String(),
		Name:   user.Name,
		ApiKey: apiKey,
	})
}
