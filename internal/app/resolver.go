package app

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

var (
	streamURLPattern = regexp.MustCompile(`https?://[^\s"'<>]+?\.(?:m3u8|mp4)(?:\?[^"'<>]*)?`)
	m3u8Pattern      = regexp.MustCompile(`https?://[^\s"']+\.m3u8`)
	mp4Pattern       = regexp.MustCompile(`https?://[^\s"']+\.mp4`)
)

// excludedURLMarkers disqualify a stream URL candidate as non-primary
// content when a better alternative exists on the page.
var excludedURLMarkers = []string{"trailer", "preview", "teaser", "promo"}

// embedMarkers make an iframe src worth following.
var embedMarkers = []string{".mp4", ".m3u8", "stream", "embed"}

// StreamResolver turns a web page URL into a best-guess real media URL by
// cascading a primary headless engine, its DOM probes, and a secondary
// headless engine, all under one wall-clock budget. Results are advisory:
// callers fall back to the original URL whenever resolution yields nothing.
type StreamResolver struct {
	primary      domain.BrowserEngine
	secondary    domain.BrowserEngine
	budget       time.Duration
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewStreamResolver creates a stream resolver over two browser engines.
func NewStreamResolver(primary, secondary domain.BrowserEngine, cfg *domain.ResolverConfig, logger *zap.Logger) *StreamResolver {
	return &StreamResolver{
		primary:      primary,
		secondary:    secondary,
		budget:       cfg.Budget,
		probeTimeout: cfg.ProbeTimeout,
		logger:       logger,
	}
}

// Resolve runs one bounded resolution pass. Exceeding the budget is a soft
// failure: the zero-strategy result is returned and the work is cancelled
// rather than left running detached.
func (r *StreamResolver) Resolve(ctx context.Context, pageURL string) domain.ResolutionResult {
	ctx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	results := make(chan domain.ResolutionResult, 1)
	go func() {
		results <- r.resolveOnce(ctx, pageURL)
	}()

	select {
	case res := <-results:
		return res
	case <-ctx.Done():
		r.logger.Warn("Stream resolution exceeded budget, using original URL",
			zap.String("url", pageURL),
			zap.Duration("budget", r.budget))
		return domain.ResolutionResult{Strategy: domain.StrategyNone}
	}
}

func (r *StreamResolver) resolveOnce(ctx context.Context, pageURL string) domain.ResolutionResult {
	if url, err := r.resolveWithPrimary(ctx, pageURL); err == nil && url != "" {
		r.logger.Info("Stream URL resolved",
			zap.String("engine", r.primary.Name()),
			zap.String("stream_url", url))
		return domain.ResolutionResult{URL: url, Strategy: domain.StrategyHeadlessPrimary}
	} else if err != nil {
		r.logger.Warn("Primary headless engine failed",
			zap.String("engine", r.primary.Name()),
			zap.Error(err))
	}

	if url, err := r.resolveWithSecondary(ctx, pageURL); err == nil && url != "" {
		r.logger.Info("Stream URL resolved",
			zap.String("engine", r.secondary.Name()),
			zap.String("stream_url", url))
		return domain.ResolutionResult{URL: url, Strategy: domain.StrategyHeadlessSecondary}
	} else if err != nil {
		r.logger.Warn("Secondary headless engine failed",
			zap.String("engine", r.secondary.Name()),
			zap.Error(err))
	}

	return domain.ResolutionResult{Strategy: domain.StrategyNone}
}

// resolveWithPrimary renders the page and walks the full probe sequence:
// HTML candidate scan, <video> src, <video><source> src, iframe srcs, then
// the final regex passes.
func (r *StreamResolver) resolveWithPrimary(ctx context.Context, pageURL string) (string, error) {
	page, cleanup, err := r.primary.Open(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer cleanup()

	html, err := page.HTML(ctx)
	if err != nil {
		return "", err
	}

	if url := PickStreamCandidate(html); url != "" {
		return url, nil
	}

	if url := r.probeDOM(ctx, page); url != "" {
		return url, nil
	}

	return ScanForStreamURL(html), nil
}

// resolveWithSecondary reuses only the regex extraction against the fallback
// engine's rendered HTML.
func (r *StreamResolver) resolveWithSecondary(ctx context.Context, pageURL string) (string, error) {
	page, cleanup, err := r.secondary.Open(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer cleanup()

	html, err := page.HTML(ctx)
	if err != nil {
		return "", err
	}

	if url := PickStreamCandidate(html); url != "" {
		return url, nil
	}
	return ScanForStreamURL(html), nil
}

// probeDOM inspects the live DOM. Each probe gets its own short timeout so a
// missing element cannot eat the whole resolution budget.
func (r *StreamResolver) probeDOM(ctx context.Context, page domain.BrowserPage) string {
	if src, ok := r.attribute(ctx, page, "video", "src"); ok {
		if src != "" && !strings.HasPrefix(src, "blob:") {
			return src
		}
	}

	if src, ok := r.attribute(ctx, page, "video source", "src"); ok && src != "" {
		return src
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	srcs, err := page.Attributes(probeCtx, "iframe", "src")
	if err == nil {
		for _, src := range srcs {
			if LooksLikeStreamEmbed(src) {
				return src
			}
		}
	}

	return ""
}

func (r *StreamResolver) attribute(ctx context.Context, page domain.BrowserPage, selector, name string) (string, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	val, ok, err := page.Attribute(probeCtx, selector, name)
	if err != nil || !ok {
		return "", false
	}
	return val, true
}

// PickStreamCandidate scans rendered HTML for .m3u8/.mp4 URLs, preferring
// any candidate whose URL does not look like trailer content, else the first
// match regardless.
func PickStreamCandidate(html string) string {
	candidates := streamURLPattern.FindAllString(html, -1)
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates {
		if !containsExcludedMarker(c) {
			return c
		}
	}
	return candidates[0]
}

// ScanForStreamURL is the last-resort regex pass over the page markup.
// m3u8 wins over mp4 when both are present.
func ScanForStreamURL(html string) string {
	if m := m3u8Pattern.FindString(html); m != "" {
		return m
	}
	return mp4Pattern.FindString(html)
}

// LooksLikeStreamEmbed reports whether an iframe src points at streaming
// content worth following.
func LooksLikeStreamEmbed(src string) bool {
	if src == "" {
		return false
	}
	for _, marker := range embedMarkers {
		if strings.Contains(src, marker) {
			return true
		}
	}
	return false
}

func containsExcludedMarker(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range excludedURLMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
