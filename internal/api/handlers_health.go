package api

import (
	"net/http"

	"anjoman/internal/store"
)

// HealthHandler reports service liveness and basic stats.
type HealthHandler struct {
	db *store.DB
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db *store.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	sessionCount := 0
	if n, err := h.db.SessionCount(); err != nil {
		status = "degraded"
	} else {
		sessionCount = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "anjoman",
		"status":   status,
		"sessions": sessionCount,
	})
}
