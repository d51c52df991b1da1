package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func candidate(id, vcodec, acodec string, bitrate float64) domain.StreamCandidate {
	return domain.StreamCandidate{
		FormatID:   id,
		Resolution: "1280x720",
		Size:       "10.00 MB",
		VideoCodec: vcodec,
		AudioCodec: acodec,
		Bitrate:    bitrate,
	}
}

func TestSelectBestAudio(t *testing.T) {
	tests := []struct {
		name       string
		candidates []domain.StreamCandidate
		wantID     string
		wantFound  bool
	}{
		{
			name: "highest bitrate wins",
			candidates: []domain.StreamCandidate{
				candidate("a1", "none", "mp4a", 64),
				candidate("a2", "none", "mp4a", 128),
				candidate("a3", "none", "opus", 96),
			},
			wantID:    "a2",
			wantFound: true,
		},
		{
			name: "tie keeps first seen",
			candidates: []domain.StreamCandidate{
				candidate("a1", "none", "mp4a", 128),
				candidate("a2", "none", "opus", 128),
			},
			wantID:    "a1",
			wantFound: true,
		},
		{
			name: "combined formats are not audio-only",
			candidates: []domain.StreamCandidate{
				candidate("22", "avc1", "mp4a", 192),
			},
			wantFound: false,
		},
		{
			name:      "no candidates",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, found := SelectBestAudio(tt.candidates)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantID, best.FormatID)
			}
		})
	}
}

func TestClassifyFormats(t *testing.T) {
	buckets, force := ClassifyFormats([]domain.StreamCandidate{
		candidate("22", "avc1", "mp4a", 192),
		candidate("137", "avc1", "none", 0),
		candidate("140", "none", "mp4a", 128),
		candidate("139", "none", "mp4a", 48),
	})

	assert.False(t, force)

	require.Len(t, buckets.Combined, 1)
	assert.Equal(t, "22", buckets.Combined[0].FormatID)

	// Video-only pairs with the best audio track.
	require.Len(t, buckets.Video, 1)
	assert.Equal(t, "137+140", buckets.Video[0].FormatID)

	// The audio bucket always offers exactly the conversion placeholder.
	require.Len(t, buckets.Audio, 1)
	assert.Equal(t, domain.PlaceholderAudioFormatID, buckets.Audio[0].FormatID)
}

func TestClassifyFormats_VideoOnlyWithoutAudioDropped(t *testing.T) {
	buckets, force := ClassifyFormats([]domain.StreamCandidate{
		candidate("137", "avc1", "none", 0),
	})

	assert.True(t, force)
	assert.Empty(t, buckets.Combined)
	assert.Empty(t, buckets.Video)
	require.Len(t, buckets.Audio, 1)
	assert.Equal(t, domain.PlaceholderAudioFormatID, buckets.Audio[0].FormatID)
}

func TestClassifyFormats_EmptyInputForcesDownload(t *testing.T) {
	buckets, force := ClassifyFormats(nil)

	assert.True(t, force)
	require.Len(t, buckets.Audio, 1)
	assert.Equal(t, domain.PlaceholderAudioFormatID, buckets.Audio[0].FormatID)
}

func TestClassifyFormats_ForceDecidedBeforePlaceholder(t *testing.T) {
	// The placeholder must not mask the empty-buckets condition.
	buckets, force := ClassifyFormats([]domain.StreamCandidate{})
	assert.True(t, force)
	assert.False(t, buckets.Empty())
}
