package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/progress"
)

// DefaultFormatSelector is used when the caller picks no format.
const DefaultFormatSelector = "bestvideo+bestaudio/best"

// GenericFormatSelector is the broadest selection, used by the forced retry.
const GenericFormatSelector = "best"

// DownloadRequest describes one orchestrated download.
type DownloadRequest struct {
	URL           string
	FormatID      string
	ForceDownload bool
	// ResolvedURL is the real stream URL from resolution, when one exists.
	// It backs the terminal direct-copy attempt after all engines fail.
	ResolvedURL string
	OutputDir   string
	Tracker     *progress.Tracker
}

// DownloadOrchestrator escalates through download engines in a fixed order,
// stopping at the first success. Engines are opaque capabilities; the
// orchestrator never interprets their output beyond success or failure.
type DownloadOrchestrator struct {
	primary    domain.DownloadEngine
	fallbacks  []domain.DownloadEngine
	finalCopy  domain.DownloadEngine
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewDownloadOrchestrator wires the primary engine, the ordered fallback
// sequence, and the last-resort direct-copy engine.
func NewDownloadOrchestrator(
	primary domain.DownloadEngine,
	fallbacks []domain.DownloadEngine,
	finalCopy domain.DownloadEngine,
	cfg *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadOrchestrator {
	return &DownloadOrchestrator{
		primary:    primary,
		fallbacks:  fallbacks,
		finalCopy:  finalCopy,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Run executes the full escalation state machine for one download.
func (o *DownloadOrchestrator) Run(ctx context.Context, req DownloadRequest) domain.DownloadOutcome {
	formatID := req.FormatID
	if formatID == "" || formatID == "none" {
		formatID = DefaultFormatSelector
	}

	res := o.attemptPrimary(ctx, req, formatID)
	if res.Succeeded {
		return success(domain.EnginePrimary, res, "download complete")
	}

	primaryErr := res.Err
	o.logger.Warn("Primary engine failed",
		zap.String("format", formatID),
		zap.Bool("force_download", req.ForceDownload),
		zap.Error(primaryErr))

	// Escalation is opt-in: without force-download the primary error is
	// returned verbatim and no other engine runs.
	if !req.ForceDownload {
		return failure(domain.EnginePrimary, primaryErr)
	}

	res = o.attemptPrimary(ctx, req, GenericFormatSelector)
	if res.Succeeded {
		return success(domain.EngineForcedGeneric, res, "forced default format download complete")
	}
	lastErr := res.Err
	o.logger.Warn("Forced generic-format retry failed", zap.Error(lastErr))

	for _, engine := range o.fallbacks {
		o.logger.Info("Escalating to fallback engine", zap.String("engine", string(engine.Name())))
		res = engine.Attempt(ctx, domain.EngineRequest{
			URL:       req.URL,
			OutputDir: req.OutputDir,
			Tracker:   req.Tracker,
		})
		if res.Succeeded {
			return success(engine.Name(), res, fmt.Sprintf("download complete via %s", engine.Name()))
		}
		lastErr = engineErr(engine.Name(), res.Err)
		o.logger.Warn("Fallback engine failed",
			zap.String("engine", string(engine.Name())),
			zap.Error(res.Err))
	}

	if req.ResolvedURL != "" {
		o.logger.Info("Trying final direct-copy attempt against resolved stream URL",
			zap.String("stream_url", req.ResolvedURL))
		res = o.finalCopy.Attempt(ctx, domain.EngineRequest{
			URL:       req.ResolvedURL,
			OutputDir: req.OutputDir,
			Tracker:   req.Tracker,
		})
		if res.Succeeded {
			return success(domain.EngineFFmpegFallback, res, "fallback download via resolved stream complete")
		}
		lastErr = engineErr(domain.EngineFFmpegFallback, res.Err)
	}

	return failure(domain.EngineNone, fmt.Errorf("all download engines exhausted: %w", lastErr))
}

// attemptPrimary runs the primary engine under the configured bounded retry
// policy with a constant delay between attempts.
func (o *DownloadOrchestrator) attemptPrimary(ctx context.Context, req DownloadRequest, formatID string) domain.EngineResult {
	var last domain.EngineResult

	operation := func() error {
		last = o.primary.Attempt(ctx, domain.EngineRequest{
			URL:       req.URL,
			FormatID:  formatID,
			OutputDir: req.OutputDir,
			Tracker:   req.Tracker,
		})
		if !last.Succeeded {
			if last.Err == nil {
				last.Err = errors.New("primary engine reported failure")
			}
			return last.Err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.retryDelay), uint64(o.maxRetries)),
		ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		last.Succeeded = false
		last.Err = engineErr(domain.EnginePrimary, err)
	}
	return last
}

func success(engine domain.EngineName, res domain.EngineResult, message string) domain.DownloadOutcome {
	return domain.DownloadOutcome{
		Succeeded:  true,
		Engine:     engine,
		OutputPath: res.OutputPath,
		Message:    message,
	}
}

func failure(engine domain.EngineName, err error) domain.DownloadOutcome {
	return domain.DownloadOutcome{
		Engine:  engine,
		Message: err.Error(),
		Err:     err,
	}
}

func engineErr(name domain.EngineName, err error) error {
	if err == nil {
		err = errors.New("engine reported failure")
	}
	var ef *domain.EngineFailure
	if errors.As(err, &ef) {
		return err
	}
	return &domain.EngineFailure{Engine: name, Err: err}
}
