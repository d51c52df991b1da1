package domain

// ResolutionStrategy identifies which resolution step produced a stream URL.
type ResolutionStrategy string

const (
	StrategyExtractor         ResolutionStrategy = "extractor"
	StrategyHeadlessPrimary   ResolutionStrategy = "headless_primary"
	StrategyHeadlessSecondary ResolutionStrategy = "headless_secondary"
	StrategyNone              ResolutionStrategy = "none"
)

// ResolutionResult is the advisory outcome of one stream resolution pass.
// An empty URL means the caller should keep using the original page URL.
type ResolutionResult struct {
	URL      string             `json:"resolved_url,omitempty"`
	Strategy ResolutionStrategy `json:"source_strategy"`
}

// Resolved reports whether a real stream URL was found.
func (r ResolutionResult) Resolved() bool {
	return r.URL != "" && r.Strategy != StrategyNone
}
