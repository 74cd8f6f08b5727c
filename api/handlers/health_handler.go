package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunStatus reports whether the server can accept and is executing runs
type RunStatus interface {
	IsRunning() bool
	Busy() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	runs    RunStatus
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(runs RunStatus, version string) *HealthHandler {
	return &HealthHandler{
		runs:    runs,
		version: version,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Busy    bool   `json:"busy"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Busy:    h.runs.Busy(),
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.runs.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "run manager not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
