package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"mcmerge/internal/infrastructure"
	"mcmerge/pkg/contracts"
	apiv1 "mcmerge/pkg/contracts/api/v1"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	logger  *slog.Logger
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  infrastructure.WithComponent(logger, "health_handler"),
		version: version,
		started: time.Now(),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, apiv1.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
