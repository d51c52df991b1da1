package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/mediagrab-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	service *app.DownloadService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *app.DownloadService) *HealthHandler {
	return &HealthHandler{service: service}
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
		Version: "1.0.0",
		Busy:    h.service.Busy(),
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.service.Busy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "download in progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
