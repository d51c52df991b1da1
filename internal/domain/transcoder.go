package domain

import "context"

// AudioTranscoder converts a downloaded media file into a standard audio
// container at a fixed quality.
type AudioTranscoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}
