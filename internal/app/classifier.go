package app

import (
	"fmt"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// SelectBestAudio picks the audio-only candidate with the highest bitrate.
// Ties keep the first candidate seen, so selection is deterministic for a
// given extractor ordering. The bool is false when no audio-only candidate
// exists at all.
func SelectBestAudio(candidates []domain.StreamCandidate) (domain.StreamCandidate, bool) {
	var best domain.StreamCandidate
	found := false
	for _, c := range candidates {
		if c.HasVideo() || !c.HasAudio() {
			continue
		}
		if !found || c.Bitrate > best.Bitrate {
			best = c
			found = true
		}
	}
	return best, found
}

// ClassifyFormats buckets extractor candidates into combined, video-paired,
// and audio groups. Video-only candidates are paired with the best audio
// track via a synthesized "<video>+<audio>" format id; without any audio
// track to pair they are dropped as unusable. The audio bucket is populated
// only by the MP3-conversion placeholder, so an audio extraction path is
// always on offer regardless of what the source exposes.
//
// The returned bool is the force-download flag: true when every bucket ended
// empty before placeholder injection, signaling that raw passthrough should
// be attempted instead of structured format selection.
func ClassifyFormats(candidates []domain.StreamCandidate) (domain.FormatBuckets, bool) {
	var buckets domain.FormatBuckets

	bestAudio, hasAudio := SelectBestAudio(candidates)

	for _, c := range candidates {
		switch {
		case c.HasVideo() && c.HasAudio():
			buckets.Combined = append(buckets.Combined, c)
		case c.HasVideo() && hasAudio:
			paired := c
			paired.FormatID = fmt.Sprintf("%s+%s", c.FormatID, bestAudio.FormatID)
			buckets.Video = append(buckets.Video, paired)
		}
		// Video-only without any audio track is unusable and dropped.
	}

	force := buckets.Empty()

	if len(buckets.Audio) == 0 {
		buckets.Audio = append(buckets.Audio, domain.PlaceholderAudioCandidate())
	}

	return buckets, force
}
