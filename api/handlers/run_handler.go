package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/app"
	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// RunService submits and looks up background runs
type RunService interface {
	RunStatus
	Submit(req app.RunRequest) (domain.PipelineRun, error)
	Get(id string) (domain.PipelineRun, bool)
}

// RunHandler handles run-related HTTP requests
type RunHandler struct {
	runs   RunService
	logger *zap.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs RunService, logger *zap.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logger,
	}
}

// CreateRunRequest represents a request to start a run
type CreateRunRequest struct {
	URL      string `json:"url" binding:"required"`
	Interval int    `json:"interval" binding:"required,gt=0"`
	Choice   string `json:"choice,omitempty"`
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	choice, err := app.ParseCategory(req.Choice)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	run, err := h.runs.Submit(app.RunRequest{URL: req.URL, Interval: req.Interval, Choice: choice})
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			abortWithError(c, http.StatusConflict, err)
			return
		}
		h.logger.Error("Failed to submit run", zap.Error(err))
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":    run.ID,
		"state": run.State,
	})
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, ok := h.runs.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}
