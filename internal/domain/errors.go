package domain

import (
	"errors"
	"fmt"
)

// ErrDownloadBusy is returned when a download request arrives while another
// download is already in flight. The design assumes a single active download.
var ErrDownloadBusy = errors.New("another download is already in progress")

// ExtractionError wraps a structured-extractor network or parse failure.
// It is surfaced to the caller without retry.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FilterRejection is a hard stop: the content was judged non-primary
// (trailer-like) and no download is attempted.
type FilterRejection struct {
	Reason string
}

func (e *FilterRejection) Error() string { return e.Reason }

// EngineFailure records an opaque per-engine failure. The orchestrator reacts
// only by escalating to the next engine.
type EngineFailure struct {
	Engine EngineName
	Err    error
}

func (e *EngineFailure) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Engine, e.Err)
}

func (e *EngineFailure) Unwrap() error { return e.Err }

// ConversionFailure aborts the audio extraction pipeline. Stage is either
// "download" or "transcode"; both surface as one combined error.
type ConversionFailure struct {
	Stage string
	Err   error
}

func (e *ConversionFailure) Error() string {
	return fmt.Sprintf("audio extraction failed at %s step: %v", e.Stage, e.Err)
}

func (e *ConversionFailure) Unwrap() error { return e.Err }

// IsFilterRejection reports whether err is (or wraps) a content-filter stop.
func IsFilterRejection(err error) bool {
	var fr *FilterRejection
	return errors.As(err, &fr)
}
