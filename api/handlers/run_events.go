package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RunEventsHandler streams run snapshots over a WebSocket until the run ends
type RunEventsHandler struct {
	runs     RunService
	logger   *zap.Logger
	interval time.Duration
}

// NewRunEventsHandler creates a new run events handler. Runs are polled at
// the given interval.
func NewRunEventsHandler(runs RunService, logger *zap.Logger, interval time.Duration) *RunEventsHandler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &RunEventsHandler{
		runs:     runs,
		logger:   logger,
		interval: interval,
	}
}

// Stream handles GET /api/v1/runs/:id/events
func (h *RunEventsHandler) Stream(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.runs.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("Run event client connected",
		zap.String("run_id", id),
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Read messages from client so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last domain.PipelineRun
	sent := false
	for {
		run, ok := h.runs.Get(id)
		if !ok {
			return
		}
		if !sent || run.State != last.State || !run.UpdatedAt.Equal(last.UpdatedAt) {
			if err := conn.WriteJSON(run); err != nil {
				h.logger.Debug("Failed to send run event", zap.Error(err))
				return
			}
			last, sent = run, true
		}
		if run.IsTerminal() {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(run.State)))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
