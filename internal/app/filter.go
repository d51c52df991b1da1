package app

import "strings"

// trailerMarkers are the title substrings that mark non-primary content.
var trailerMarkers = []string{"trailer", "teaser", "promo"}

// minPrimaryDurationSeconds flags implausibly short content. Duration alone
// is an unreliable trailer signal, so it only ever produces a warning.
const minPrimaryDurationSeconds = 180

// FilterReasonTrailer is the rejection reason for trailer-like titles.
const FilterReasonTrailer = "filtered: trailer-like title"

// FilterDecision is the content filter verdict for one metadata record.
type FilterDecision struct {
	Allowed       bool
	Reason        string
	ShortDuration bool
}

// CheckContent applies the content filter to a title and duration. A
// trailer-like title is a hard rejection; a short duration is surfaced as a
// warning but never rejects on its own.
func CheckContent(title string, durationSeconds float64) FilterDecision {
	decision := FilterDecision{Allowed: true}

	lower := strings.ToLower(title)
	for _, marker := range trailerMarkers {
		if strings.Contains(lower, marker) {
			decision.Allowed = false
			decision.Reason = FilterReasonTrailer
			break
		}
	}

	if durationSeconds > 0 && durationSeconds < minPrimaryDurationSeconds {
		decision.ShortDuration = true
	}

	return decision
}
