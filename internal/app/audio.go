package app

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/progress"
)

// AudioPipeline downloads the best available audio track and transcodes it
// to MP3. The pipeline is strictly sequential: a failure at either step
// aborts the whole run with one combined error, and the intermediate file is
// removed only after a successful transcode.
type AudioPipeline struct {
	engine     domain.DownloadEngine
	transcoder domain.AudioTranscoder
	cfg        *domain.AudioConfig
	dir        string
	logger     *zap.Logger
}

// NewAudioPipeline creates the MP3 extraction pipeline.
func NewAudioPipeline(engine domain.DownloadEngine, transcoder domain.AudioTranscoder, cfg *domain.AudioConfig, downloadDir string, logger *zap.Logger) *AudioPipeline {
	return &AudioPipeline{
		engine:     engine,
		transcoder: transcoder,
		cfg:        cfg,
		dir:        downloadDir,
		logger:     logger,
	}
}

// Extract runs the download-then-transcode sequence and returns the MP3 path.
func (p *AudioPipeline) Extract(ctx context.Context, url string, tracker *progress.Tracker) (string, error) {
	tempPath := filepath.Join(p.dir, p.cfg.TempFile)
	outputPath := filepath.Join(p.dir, p.cfg.OutputFile)

	res := p.engine.Attempt(ctx, domain.EngineRequest{
		URL:        url,
		FormatID:   "bestaudio/best",
		OutputDir:  p.dir,
		OutputPath: tempPath,
		Tracker:    tracker,
	})
	if !res.Succeeded {
		return "", &domain.ConversionFailure{Stage: "download", Err: res.Err}
	}

	tracker.Converting()
	if err := p.transcoder.Transcode(ctx, tempPath, outputPath); err != nil {
		// The temp file is left in place; cleanup only runs on success.
		return "", &domain.ConversionFailure{Stage: "transcode", Err: err}
	}

	if err := os.Remove(tempPath); err != nil {
		p.logger.Warn("Failed to remove intermediate audio file",
			zap.String("path", tempPath),
			zap.Error(err))
	}

	p.logger.Info("MP3 extraction complete", zap.String("path", outputPath))
	return outputPath, nil
}
