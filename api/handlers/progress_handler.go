package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/progress"
)

// ProgressHandler streams download progress over server-sent events.
type ProgressHandler struct {
	registry *progress.Registry
	interval time.Duration
	logger   *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(registry *progress.Registry, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		registry: registry,
		interval: time.Second,
		logger:   logger,
	}
}

// StreamProgress handles GET /api/v1/downloads/:id/progress. Events are sent
// once per second until the download reaches a terminal state; the terminal
// event is always delivered before the stream closes.
func (h *ProgressHandler) StreamProgress(c *gin.Context) {
	id := c.Param("id")

	tracker, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		event := tracker.Snapshot()
		c.SSEvent("progress", event)

		if tracker.Terminal() {
			return false
		}

		select {
		case <-ticker.C:
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
