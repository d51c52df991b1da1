package domain

import (
	"context"

	"github.com/yourusername/mediagrab-go/internal/progress"
)

// EngineName identifies a download engine in the escalation sequence.
type EngineName string

const (
	EnginePrimary        EngineName = "primary"
	EngineForcedGeneric  EngineName = "forced_generic"
	EngineStreamlink     EngineName = "streamlink"
	EngineFFmpegDirect   EngineName = "ffmpeg_direct"
	EngineMPV            EngineName = "mpv"
	EngineAria2c         EngineName = "aria2c"
	EngineBlobDetect     EngineName = "blob_detect"
	EngineFFmpegFallback EngineName = "ffmpeg_fallback"
	EngineNone           EngineName = ""
)

// EngineRequest carries everything an engine needs for one attempt.
type EngineRequest struct {
	URL       string
	FormatID  string
	OutputDir string
	// OutputPath, when set, forces the engine to write to this exact path
	// instead of deriving a name under OutputDir.
	OutputPath string
	Tracker    *progress.Tracker
}

// EngineResult is the structured outcome of a single engine attempt.
// Engines are opaque: success is judged by process exit status alone.
type EngineResult struct {
	Succeeded  bool
	OutputPath string
	Err        error
}

// DownloadEngine is the capability interface every download mechanism
// implements. Engines can be added, removed, or reordered via configuration
// without touching the orchestrator.
type DownloadEngine interface {
	Name() EngineName
	Attempt(ctx context.Context, req EngineRequest) EngineResult
}

// DownloadOutcome is the terminal result of a full orchestrated download.
type DownloadOutcome struct {
	Succeeded  bool       `json:"succeeded"`
	Engine     EngineName `json:"engine_used"`
	OutputPath string     `json:"output_path,omitempty"`
	Message    string     `json:"message"`
	Err        error      `json:"-"`
}
