package infrastructure

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// runEngineCommand executes one fallback engine invocation with output
// redirected to the shared process log. Engines are judged solely by exit
// status; no engine-specific output parsing happens here.
func runEngineCommand(ctx context.Context, logsDir string, logger *zap.Logger, name domain.EngineName, binary string, args ...string) domain.EngineResult {
	processLog, err := openProcessLog(logsDir)
	if err != nil {
		return domain.EngineResult{Err: fmt.Errorf("failed to open process log: %w", err)}
	}
	defer processLog.Close()

	cmdLine := ShellEscapeCommand(binary, args...)
	writeLogHeader(processLog, string(name), cmdLine)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = processLog
	cmd.Stderr = processLog

	if err := cmd.Run(); err != nil {
		writeLogFooter(processLog, false, err.Error())
		logger.Warn("Engine command failed",
			zap.String("engine", string(name)),
			zap.Error(err))
		return domain.EngineResult{Err: &domain.EngineFailure{Engine: name, Err: err}}
	}

	writeLogFooter(processLog, true, "done")
	return domain.EngineResult{Succeeded: true}
}

// StreamlinkEngine grabs streams via the streamlink CLI.
type StreamlinkEngine struct {
	binary  string
	logsDir string
	logger  *zap.Logger
}

// NewStreamlinkEngine creates the streamlink fallback engine.
func NewStreamlinkEngine(binary, logsDir string, logger *zap.Logger) *StreamlinkEngine {
	return &StreamlinkEngine{binary: binary, logsDir: logsDir, logger: logger}
}

// Name returns the engine identifier.
func (e *StreamlinkEngine) Name() domain.EngineName {
	return domain.EngineStreamlink
}

// Attempt records the best stream quality to a fixed output file.
func (e *StreamlinkEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	outputPath := filepath.Join(req.OutputDir, "streamlink_output.mp4")
	res := runEngineCommand(ctx, e.logsDir, e.logger, e.Name(), e.binary,
		req.URL, "best", "-o", outputPath)
	if res.Succeeded {
		res.OutputPath = outputPath
	}
	return res
}

// FFmpegCopyEngine performs a direct stream copy with ffmpeg. It serves both
// as the escalation transcoder and, under a different name, as the terminal
// attempt against a resolved stream URL.
type FFmpegCopyEngine struct {
	name    domain.EngineName
	binary  string
	logsDir string
	logger  *zap.Logger
}

// NewFFmpegCopyEngine creates a direct-copy ffmpeg engine under the given name.
func NewFFmpegCopyEngine(name domain.EngineName, binary, logsDir string, logger *zap.Logger) *FFmpegCopyEngine {
	return &FFmpegCopyEngine{name: name, binary: binary, logsDir: logsDir, logger: logger}
}

// Name returns the engine identifier.
func (e *FFmpegCopyEngine) Name() domain.EngineName {
	return e.name
}

// Attempt copies the input stream into an mp4 container without re-encoding.
func (e *FFmpegCopyEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(req.OutputDir, "ffmpeg_output.mp4")
	}
	res := runEngineCommand(ctx, e.logsDir, e.logger, e.Name(), e.binary,
		"-y",
		"-i", req.URL,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		outputPath)
	if res.Succeeded {
		res.OutputPath = outputPath
	}
	return res
}

// MPVEngine records a stream through mpv's stream dump.
type MPVEngine struct {
	binary  string
	logsDir string
	logger  *zap.Logger
}

// NewMPVEngine creates the mpv fallback engine.
func NewMPVEngine(binary, logsDir string, logger *zap.Logger) *MPVEngine {
	return &MPVEngine{binary: binary, logsDir: logsDir, logger: logger}
}

// Name returns the engine identifier.
func (e *MPVEngine) Name() domain.EngineName {
	return domain.EngineMPV
}

// Attempt records the stream to a fixed output file.
func (e *MPVEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	outputPath := filepath.Join(req.OutputDir, "mpv_output.mp4")
	res := runEngineCommand(ctx, e.logsDir, e.logger, e.Name(), e.binary,
		req.URL, "--stream-record="+outputPath)
	if res.Succeeded {
		res.OutputPath = outputPath
	}
	return res
}

// Aria2cEngine fetches a direct URL with parallel segment connections.
type Aria2cEngine struct {
	binary  string
	logsDir string
	logger  *zap.Logger
}

// NewAria2cEngine creates the aria2c fallback engine.
func NewAria2cEngine(binary, logsDir string, logger *zap.Logger) *Aria2cEngine {
	return &Aria2cEngine{binary: binary, logsDir: logsDir, logger: logger}
}

// Name returns the engine identifier.
func (e *Aria2cEngine) Name() domain.EngineName {
	return domain.EngineAria2c
}

// Attempt downloads into the output directory with 16 parallel segments.
func (e *Aria2cEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	res := runEngineCommand(ctx, e.logsDir, e.logger, e.Name(), e.binary,
		"-x", "16",
		"-s", "16",
		"-d", req.OutputDir,
		req.URL)
	if res.Succeeded {
		res.OutputPath = req.OutputDir
	}
	return res
}
