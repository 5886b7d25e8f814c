package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
)

// HealthChecker is a dependency that can report whether it is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetaHandler serves liveness and static reference data
type MetaHandler struct {
	checks map[string]HealthChecker
}

// NewMetaHandler creates a meta handler. checks maps a dependency name to its health check.
func NewMetaHandler(checks map[string]HealthChecker) *MetaHandler {
	return &MetaHandler{checks: checks}
}

// Health handles GET /health
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondWithJSON(w, status, map[string]interface{}{
		"status":       state,
		"dependencies": deps,
	})
}

// Categories handles GET /api/categories
func (h *MetaHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaint":        entities.ComplaintCategories,
		"feedback":         entities.FeedbackCategories,
		"complaint_status": entities.ComplaintStatuses,
	})
}
