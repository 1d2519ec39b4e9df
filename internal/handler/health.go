package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/httputil"
)

const healthProbeKey = "dharmabotHealth"

// HealthHandler reports whether the server can reach its storage
type HealthHandler struct {
	store  repositories.KVStore
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store repositories.KVStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// HealthCheck reads a probe key from storage
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := h.store.Get(ctx, healthProbeKey); err != nil {
		h.logger.Error("health check failed", "error", err)
		httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
