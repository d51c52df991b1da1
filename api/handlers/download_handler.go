package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service *app.DownloadService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{service: service, logger: logger}
}

// StartDownloadRequest represents a request to start a download
type StartDownloadRequest struct {
	URL           string `json:"url" binding:"required"`
	FormatID      string `json:"format_id,omitempty"`
	ForceDownload bool   `json:"force_download,omitempty"`
}

// StartDownload handles POST /api/v1/downloads
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req StartDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.StartDownload(req.URL, req.FormatID, req.ForceDownload)
	if err != nil {
		if errors.Is(err, domain.ErrDownloadBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "a download is already in progress"})
			return
		}
		h.logger.Error("Failed to start download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// AudioRequest represents a request to extract audio as mp3
type AudioRequest struct {
	URL string `json:"url" binding:"required"`
}

// StartAudioExtraction handles POST /api/v1/downloads/mp3
func (h *DownloadHandler) StartAudioExtraction(c *gin.Context) {
	var req AudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.StartAudioExtraction(req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrDownloadBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "a download is already in progress"})
			return
		}
		h.logger.Error("Failed to start audio extraction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	id := c.Param("id")

	job, ok := h.service.Job(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}
