package infrastructure

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

var (
	blobURLPattern   = regexp.MustCompile(`blob:https?://[^\s"']+`)
	mediaURLPattern  = regexp.MustCompile(`https?://[^\s"'<>]+\.(?:m3u8|mp4)(?:\?[^"'<>\s]*)?`)
	manifestPriority = []string{".m3u8", ".mp4"}
)

// BlobDetectEngine handles pages that serve video through MediaSource blob
// URLs. A blob URL is process-local to the browser and cannot be fetched, so
// the engine renders the page, confirms the blob, then hunts the markup for
// the real manifest URL feeding it and hands that to a direct-copy engine.
type BlobDetectEngine struct {
	browser domain.BrowserEngine
	copier  domain.DownloadEngine
	logger  *zap.Logger
}

// NewBlobDetectEngine creates a blob-sniffing engine over a headless browser
// and a direct-copy download engine.
func NewBlobDetectEngine(browser domain.BrowserEngine, copier domain.DownloadEngine, logger *zap.Logger) *BlobDetectEngine {
	return &BlobDetectEngine{browser: browser, copier: copier, logger: logger}
}

// Name returns the engine identifier.
func (e *BlobDetectEngine) Name() domain.EngineName {
	return domain.EngineBlobDetect
}

// Attempt renders the page, locates the manifest URL behind a blob-backed
// player, and delegates the actual transfer to the copy engine.
func (e *BlobDetectEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	page, cleanup, err := e.browser.Open(ctx, req.URL)
	if err != nil {
		return domain.EngineResult{Err: &domain.EngineFailure{Engine: e.Name(), Err: err}}
	}
	defer cleanup()

	html, err := page.HTML(ctx)
	if err != nil {
		return domain.EngineResult{Err: &domain.EngineFailure{Engine: e.Name(), Err: err}}
	}

	blob := blobURLPattern.FindString(html)
	if src, ok, err := page.Attribute(ctx, "video", "src"); err == nil && ok && strings.HasPrefix(src, "blob:") {
		blob = src
	}
	if blob == "" {
		return domain.EngineResult{Err: &domain.EngineFailure{
			Engine: e.Name(),
			Err:    fmt.Errorf("no blob-backed player found on page"),
		}}
	}

	manifest := findManifestURL(html)
	if manifest == "" {
		return domain.EngineResult{Err: &domain.EngineFailure{
			Engine: e.Name(),
			Err:    fmt.Errorf("blob player detected but no manifest URL found in markup"),
		}}
	}

	e.logger.Info("Blob player detected, copying manifest stream",
		zap.String("blob", blob),
		zap.String("manifest", manifest))

	copyReq := req
	copyReq.URL = manifest
	res := e.copier.Attempt(ctx, copyReq)
	if res.Err != nil {
		res.Err = &domain.EngineFailure{Engine: e.Name(), Err: res.Err}
	}
	return res
}

// findManifestURL picks the most likely media source from page markup.
// HLS manifests win over bare mp4 files.
func findManifestURL(html string) string {
	candidates := mediaURLPattern.FindAllString(html, -1)
	if len(candidates) == 0 {
		return ""
	}
	for _, ext := range manifestPriority {
		for _, c := range candidates {
			if strings.Contains(c, ext) {
				return c
			}
		}
	}
	return candidates[0]
}
