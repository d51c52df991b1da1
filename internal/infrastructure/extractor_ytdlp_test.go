package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

const sampleMetadata = `{
  "title": "Feature Presentation",
  "duration": 5400.0,
  "thumbnail": "https://cdn.example.com/thumb.jpg",
  "formats": [
    {
      "format_id": "22",
      "width": 1280,
      "height": 720,
      "filesize": 104857600,
      "vcodec": "avc1.64001F",
      "acodec": "mp4a.40.2",
      "tbr": 1200.5
    },
    {
      "format_id": "137",
      "width": 1920,
      "height": 1080,
      "filesize_approx": 209715200,
      "vcodec": "avc1.640028",
      "acodec": "none"
    },
    {
      "format_id": "140",
      "format_note": "medium",
      "vcodec": "none",
      "acodec": "mp4a.40.2",
      "abr": 128.0
    },
    {
      "format_id": "hls-0",
      "vcodec": "",
      "acodec": ""
    }
  ]
}`

func TestParseInspection(t *testing.T) {
	insp, err := parseInspection([]byte(sampleMetadata))
	require.NoError(t, err)

	assert.Equal(t, "Feature Presentation", insp.Title)
	assert.Equal(t, 5400.0, insp.Duration)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", insp.Thumbnail)
	require.Len(t, insp.Candidates, 4)

	combined := insp.Candidates[0]
	assert.Equal(t, "22", combined.FormatID)
	assert.Equal(t, "1280x720", combined.Resolution)
	assert.Equal(t, "100.00 MB", combined.Size)
	assert.True(t, combined.HasVideo())
	assert.True(t, combined.HasAudio())
	// TBR backs the bitrate when no audio bitrate is reported.
	assert.Equal(t, 1200.5, combined.Bitrate)

	videoOnly := insp.Candidates[1]
	assert.Equal(t, "1920x1080", videoOnly.Resolution)
	assert.Equal(t, "200.00 MB", videoOnly.Size)
	assert.True(t, videoOnly.HasVideo())
	assert.False(t, videoOnly.HasAudio())

	audioOnly := insp.Candidates[2]
	// Without dimensions the format note stands in for the resolution.
	assert.Equal(t, "medium", audioOnly.Resolution)
	assert.Equal(t, "Unknown size", audioOnly.Size)
	assert.False(t, audioOnly.HasVideo())
	assert.Equal(t, 128.0, audioOnly.Bitrate)

	bare := insp.Candidates[3]
	assert.Equal(t, "Unknown", bare.Resolution)
	assert.Equal(t, domain.CodecNone, bare.VideoCodec)
	assert.Equal(t, domain.CodecNone, bare.AudioCodec)
}

func TestParseInspection_InvalidJSON(t *testing.T) {
	_, err := parseInspection([]byte("not json"))
	assert.Error(t, err)
}

func TestParseInspection_NoFormats(t *testing.T) {
	insp, err := parseInspection([]byte(`{"title": "Empty", "duration": 10}`))
	require.NoError(t, err)
	assert.Empty(t, insp.Candidates)
}
