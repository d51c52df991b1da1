package domain

import "context"

// ExtractOptions tune a structured extractor probe.
type ExtractOptions struct {
	CookieFile     string
	UserAgent      string
	Referer        string
	FormatSelector string
}

// Inspection is the typed result of one extractor metadata pass. Untyped
// extractor records never propagate past this boundary.
type Inspection struct {
	Title      string            `json:"title"`
	Duration   float64           `json:"duration"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
	Candidates []StreamCandidate `json:"candidates"`
}

// Extractor is the structured-metadata collaborator (yt-dlp style). Probe
// inspects a URL without downloading; network or parse failures surface as
// an ExtractionError and are not retried at this layer.
type Extractor interface {
	Probe(ctx context.Context, url string, opts ExtractOptions) (*Inspection, error)
}
