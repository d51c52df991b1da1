package infrastructure

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// FFmpegTranscoder converts downloaded audio into mp3 via ffmpeg.
type FFmpegTranscoder struct {
	binary  string
	cfg     *domain.AudioConfig
	logsDir string
	logger  *zap.Logger
}

// NewFFmpegTranscoder creates an ffmpeg-backed audio transcoder.
func NewFFmpegTranscoder(binary string, cfg *domain.AudioConfig, logsDir string, logger *zap.Logger) *FFmpegTranscoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegTranscoder{binary: binary, cfg: cfg, logsDir: logsDir, logger: logger}
}

// Transcode re-encodes the input's audio track to mp3 at the configured
// bitrate and sample rate.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-b:a", t.cfg.Bitrate,
		"-ar", fmt.Sprintf("%d", t.cfg.SampleRate),
		"-f", "mp3",
		outputPath,
	}

	processLog, err := openProcessLog(t.logsDir)
	if err != nil {
		return fmt.Errorf("failed to open process log: %w", err)
	}
	defer processLog.Close()

	writeLogHeader(processLog, "mp3_transcode", ShellEscapeCommand(t.binary, args...))

	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Stdout = processLog
	cmd.Stderr = processLog

	if err := cmd.Run(); err != nil {
		writeLogFooter(processLog, false, err.Error())
		return fmt.Errorf("ffmpeg transcode failed: %w", err)
	}

	writeLogFooter(processLog, true, fmt.Sprintf("Transcoded: %s", outputPath))
	t.logger.Info("Audio transcoded",
		zap.String("input", inputPath),
		zap.String("output", outputPath))
	return nil
}
