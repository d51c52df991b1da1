package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/internal/progress"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := createDirectories(config); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting MediaGrab server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("download_dir", config.Download.Dir))

	service := buildService(config, log)
	router := api.SetupRouter(service, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// buildService wires the full download pipeline from configuration.
func buildService(config *domain.Config, log *zap.Logger) *app.DownloadService {
	logsDir := config.Download.LogsDir

	primaryBrowser := infrastructure.NewChromedpEngine(config.Download.UserAgent, log)
	secondaryBrowser := infrastructure.NewRodEngine(log)
	resolver := app.NewStreamResolver(primaryBrowser, secondaryBrowser, &config.Resolver, log)

	extractor := infrastructure.NewYTDLPExtractor(config.Engines.YTDLPBinary, log)
	primaryEngine := infrastructure.NewYTDLPEngine(&config.Engines, &config.Download, log)

	fallbacks := make([]domain.DownloadEngine, 0, len(config.Engines.Escalation))
	for _, name := range config.Engines.Escalation {
		fallbacks = append(fallbacks, buildEngine(domain.EngineName(name), config, primaryBrowser, log))
	}
	finalCopy := infrastructure.NewFFmpegCopyEngine(
		domain.EngineFFmpegFallback, config.Engines.FFmpegBinary, logsDir, log)

	orch := app.NewDownloadOrchestrator(primaryEngine, fallbacks, finalCopy, &config.Download, log)

	transcoder := infrastructure.NewFFmpegTranscoder(config.Engines.FFmpegBinary, &config.Audio, logsDir, log)
	audio := app.NewAudioPipeline(primaryEngine, transcoder, &config.Audio, config.Download.Dir, log)

	registry := progress.NewRegistry()
	return app.NewDownloadService(extractor, resolver, orch, audio, registry, config, log)
}

func buildEngine(name domain.EngineName, config *domain.Config, browser domain.BrowserEngine, log *zap.Logger) domain.DownloadEngine {
	logsDir := config.Download.LogsDir

	switch name {
	case domain.EngineStreamlink:
		return infrastructure.NewStreamlinkEngine(config.Engines.StreamlinkBinary, logsDir, log)
	case domain.EngineFFmpegDirect:
		return infrastructure.NewFFmpegCopyEngine(name, config.Engines.FFmpegBinary, logsDir, log)
	case domain.EngineMPV:
		return infrastructure.NewMPVEngine(config.Engines.MPVBinary, logsDir, log)
	case domain.EngineAria2c:
		return infrastructure.NewAria2cEngine(config.Engines.Aria2cBinary, logsDir, log)
	case domain.EngineBlobDetect:
		copier := infrastructure.NewFFmpegCopyEngine(
			domain.EngineFFmpegDirect, config.Engines.FFmpegBinary, logsDir, log)
		return infrastructure.NewBlobDetectEngine(browser, copier, log)
	default:
		// Unknown names are rejected by config validation.
		panic(fmt.Sprintf("unknown engine: %s", name))
	}
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.Dir,
		config.Download.LogsDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
