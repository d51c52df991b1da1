package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/progress"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ProgressWebSocketHandler pushes progress events over a WebSocket for
// clients that prefer it over server-sent events.
type ProgressWebSocketHandler struct {
	registry *progress.Registry
	interval time.Duration
	logger   *zap.Logger
}

// NewProgressWebSocketHandler creates a new WebSocket progress handler
func NewProgressWebSocketHandler(registry *progress.Registry, logger *zap.Logger) *ProgressWebSocketHandler {
	return &ProgressWebSocketHandler{
		registry: registry,
		interval: time.Second,
		logger:   logger,
	}
}

// HandleWebSocket handles GET /api/v1/downloads/:id/progress/ws
func (h *ProgressWebSocketHandler) HandleWebSocket(c *gin.Context) {
	id := c.Param("id")

	tracker, ok := h.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket client connected",
		zap.String("id", id),
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Read pump so client pings and close frames are handled.
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

	for {
		event := tracker.Snapshot()
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal progress event", zap.Error(err))
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}

		if tracker.Terminal() {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			return
		}
	}
}
