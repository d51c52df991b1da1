package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// FormatHandler handles format inquiry requests
type FormatHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(service *app.DownloadService, logger *zap.Logger) *FormatHandler {
	return &FormatHandler{service: service, logger: logger}
}

// FormatRequest represents a format inquiry
type FormatRequest struct {
	URL string `json:"url" binding:"required"`
}

// ListFormats handles POST /api/v1/formats
func (h *FormatHandler) ListFormats(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.service.ListFormats(c.Request.Context(), req.URL)
	if err != nil {
		if domain.IsFilterRejection(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Format inquiry failed",
			zap.String("url", req.URL),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to fetch video information"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
