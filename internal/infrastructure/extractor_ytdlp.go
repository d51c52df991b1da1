package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// YTDLPExtractor implements domain.Extractor by shelling out to yt-dlp for
// a metadata-only pass (-J, no download).
type YTDLPExtractor struct {
	binary string
	logger *zap.Logger
}

// NewYTDLPExtractor creates a yt-dlp backed extractor.
func NewYTDLPExtractor(binary string, logger *zap.Logger) *YTDLPExtractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPExtractor{binary: binary, logger: logger}
}

// Probe inspects a URL without downloading anything.
func (e *YTDLPExtractor) Probe(ctx context.Context, url string, opts domain.ExtractOptions) (*domain.Inspection, error) {
	args := []string{
		"-J",
		"--no-warnings",
		"--skip-download",
		"--no-check-certificates",
		"--no-playlist",
	}
	if opts.CookieFile != "" && fileExists(opts.CookieFile) {
		args = append(args, "--cookies", opts.CookieFile)
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent", opts.UserAgent)
	}
	if opts.Referer != "" {
		args = append(args, "--referer", opts.Referer)
	}
	if opts.FormatSelector != "" {
		args = append(args, "-f", opts.FormatSelector)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	insp, err := parseInspection(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Probe complete",
		zap.String("url", url),
		zap.String("title", insp.Title),
		zap.Int("candidates", len(insp.Candidates)))

	return insp, nil
}

// ytdlpInfo mirrors the slice of yt-dlp's -J output the classifier needs.
type ytdlpInfo struct {
	Title     string        `json:"title"`
	Duration  float64       `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string  `json:"format_id"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	FormatNote     string  `json:"format_note"`
	Filesize       *int64  `json:"filesize"`
	FilesizeApprox *int64  `json:"filesize_approx"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	ABR            float64 `json:"abr"`
	TBR            float64 `json:"tbr"`
}

// parseInspection converts raw yt-dlp JSON into the typed inspection record.
// Untyped extractor data never travels past this boundary.
func parseInspection(data []byte) (*domain.Inspection, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	insp := &domain.Inspection{
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
	}

	for _, f := range info.Formats {
		size := f.Filesize
		if size == nil {
			size = f.FilesizeApprox
		}

		resolution := "Unknown"
		if f.Height > 0 && f.Width > 0 {
			resolution = fmt.Sprintf("%dx%d", f.Width, f.Height)
		} else if f.FormatNote != "" {
			resolution = f.FormatNote
		}

		bitrate := f.ABR
		if bitrate == 0 {
			bitrate = f.TBR
		}

		insp.Candidates = append(insp.Candidates, domain.StreamCandidate{
			FormatID:   f.FormatID,
			Resolution: resolution,
			Size:       domain.SizeLabel(size),
			SizeBytes:  size,
			VideoCodec: codecOrNone(f.VCodec),
			AudioCodec: codecOrNone(f.ACodec),
			Bitrate:    bitrate,
		})
	}

	return insp, nil
}

func codecOrNone(codec string) string {
	if codec == "" {
		return domain.CodecNone
	}
	return codec
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
