package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetgrader/internal/domain"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	mode          domain.GradingMode
	remoteEnabled bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(mode domain.GradingMode, remoteEnabled bool) *HealthHandler {
	return &HealthHandler{mode: mode, remoteEnabled: remoteEnabled}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.mode == domain.GradingModeRemote && !h.remoteEnabled {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Mode:   string(h.mode),
			Error:  "remote grading selected but no provider configured",
		})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:           "ok",
		Mode:             string(h.mode),
		RemoteExtraction: h.remoteEnabled,
	})
}
