package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api/handlers"
	"github.com/yourusername/mediagrab-go/api/middleware"
	"github.com/yourusername/mediagrab-go/internal/app"
)

// SetupRouter sets up the HTTP router
func SetupRouter(service *app.DownloadService, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(service)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		formatHandler := handlers.NewFormatHandler(service, log)
		v1.POST("/formats", formatHandler.ListFormats)

		downloadHandler := handlers.NewDownloadHandler(service, log)
		progressHandler := handlers.NewProgressHandler(service.Registry(), log)
		progressWS := handlers.NewProgressWebSocketHandler(service.Registry(), log)
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.StartDownload)
			downloads.POST("/mp3", downloadHandler.StartAudioExtraction)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.GET("/:id/progress", progressHandler.StreamProgress)
			downloads.GET("/:id/progress/ws", progressWS.HandleWebSocket)
		}
	}

	return router
}
