package domain

import "fmt"

// CodecNone is the sentinel the extractor uses for an absent codec.
const CodecNone = "none"

// PlaceholderAudioFormatID identifies the synthetic MP3-conversion entry
// injected into the audio bucket when no native audio-only format exists.
const PlaceholderAudioFormatID = "convert_to_mp3"

// StreamCandidate is an immutable snapshot of one encoding reported by the
// structured extractor during a single extraction pass.
type StreamCandidate struct {
	FormatID   string  `json:"format_id"`
	Resolution string  `json:"resolution"`
	Size       string  `json:"size"`
	SizeBytes  *int64  `json:"size_bytes,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	Bitrate    float64 `json:"bitrate,omitempty"`
}

// HasVideo reports whether the candidate carries a video stream.
func (c StreamCandidate) HasVideo() bool {
	return c.VideoCodec != "" && c.VideoCodec != CodecNone
}

// HasAudio reports whether the candidate carries an audio stream.
func (c StreamCandidate) HasAudio() bool {
	return c.AudioCodec != "" && c.AudioCodec != CodecNone
}

// SizeLabel formats the candidate size for display.
func SizeLabel(sizeBytes *int64) string {
	if sizeBytes == nil || *sizeBytes <= 0 {
		return "Unknown size"
	}
	return fmt.Sprintf("%.2f MB", float64(*sizeBytes)/(1024*1024))
}

// PlaceholderAudioCandidate returns the synthetic MP3-conversion entry.
func PlaceholderAudioCandidate() StreamCandidate {
	return StreamCandidate{
		FormatID:   PlaceholderAudioFormatID,
		Resolution: "MP3 (converted)",
		Size:       "To be generated",
	}
}

// FormatBuckets partitions stream candidates by how they can be downloaded.
// Buckets are derived per request and never persisted.
type FormatBuckets struct {
	Combined []StreamCandidate `json:"combined"`
	Video    []StreamCandidate `json:"video"`
	Audio    []StreamCandidate `json:"audio"`
}

// Empty reports whether no bucket holds any candidate.
func (b FormatBuckets) Empty() bool {
	return len(b.Combined) == 0 && len(b.Video) == 0 && len(b.Audio) == 0
}
