package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

func testEngine(t *testing.T) *YTDLPEngine {
	t.Helper()
	return NewYTDLPEngine(
		&domain.EngineConfig{
			YTDLPBinary: "yt-dlp",
			// Not on PATH, so the external downloader block stays off.
			Aria2cBinary: "aria2c-not-installed-anywhere",
		},
		&domain.DownloadConfig{
			Dir:                 "/downloads",
			OutputTemplate:      "%(title)s.%(ext)s",
			MaxRetries:          3,
			RetryDelay:          time.Second,
			FragmentRetries:     50,
			ConcurrentFragments: 32,
			SocketTimeout:       30 * time.Second,
		},
		zap.NewNop())
}

func TestBuildArgs(t *testing.T) {
	args := testEngine(t).buildArgs(domain.EngineRequest{
		URL:       "https://example.com/v",
		FormatID:  "137+140",
		OutputDir: "/downloads",
	})

	assert.Equal(t, "-f", args[0])
	assert.Equal(t, "137+140", args[1])
	assert.Contains(t, args, "--newline")
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--merge-output-format")

	requireFlagValue(t, args, "--retries", "3")
	requireFlagValue(t, args, "--fragment-retries", "50")
	requireFlagValue(t, args, "--concurrent-fragments", "32")
	requireFlagValue(t, args, "--socket-timeout", "30")
	requireFlagValue(t, args, "-o", filepath.Join("/downloads", "%(title)s.%(ext)s"))

	assert.NotContains(t, args, "--downloader")
	assert.NotContains(t, args, "--cookies")

	// URL always comes last.
	assert.Equal(t, "https://example.com/v", args[len(args)-1])
}

func TestBuildArgs_DefaultFormat(t *testing.T) {
	args := testEngine(t).buildArgs(domain.EngineRequest{
		URL:       "https://example.com/v",
		OutputDir: "/downloads",
	})
	requireFlagValue(t, args, "-f", "bestvideo+bestaudio/best")
}

func TestBuildArgs_ExplicitOutputPath(t *testing.T) {
	args := testEngine(t).buildArgs(domain.EngineRequest{
		URL:        "https://example.com/v",
		OutputDir:  "/downloads",
		OutputPath: "/downloads/temp_audio.mp4",
	})
	requireFlagValue(t, args, "-o", "/downloads/temp_audio.mp4")
}

func requireFlagValue(t *testing.T, args []string, flag, want string) {
	t.Helper()
	for i, a := range args {
		if a == flag {
			require.Less(t, i+1, len(args))
			assert.Equal(t, want, args[i+1])
			return
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
}

func TestProgressPatterns(t *testing.T) {
	m := percentPattern.FindStringSubmatch("[download]  42.7% of 10.00MiB at 1.00MiB/s")
	require.NotNil(t, m)
	assert.Equal(t, "42.7", m[1])

	m = destinationPattern.FindStringSubmatch("[download] Destination: /downloads/video.mp4")
	require.NotNil(t, m)
	assert.Equal(t, "/downloads/video.mp4", m[1])

	m = mergePattern.FindStringSubmatch(`[Merger] Merging formats into "/downloads/video.mp4"`)
	require.NotNil(t, m)
	assert.Equal(t, "/downloads/video.mp4", m[1])

	assert.Nil(t, percentPattern.FindStringSubmatch("[info] Writing video metadata"))
}
