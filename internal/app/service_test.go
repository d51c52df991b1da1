package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/progress"
)

type stubExtractor struct {
	insp *domain.Inspection
	err  error
}

func (s *stubExtractor) Probe(ctx context.Context, url string, opts domain.ExtractOptions) (*domain.Inspection, error) {
	return s.insp, s.err
}

type stubResolver struct {
	result domain.ResolutionResult
}

func (s *stubResolver) Resolve(ctx context.Context, pageURL string) domain.ResolutionResult {
	return s.result
}

type stubOrchestrator struct {
	outcome  domain.DownloadOutcome
	requests chan DownloadRequest
	block    chan struct{}
}

func newStubOrchestrator(outcome domain.DownloadOutcome) *stubOrchestrator {
	return &stubOrchestrator{outcome: outcome, requests: make(chan DownloadRequest, 4)}
}

func (s *stubOrchestrator) Run(ctx context.Context, req DownloadRequest) domain.DownloadOutcome {
	s.requests <- req
	if s.block != nil {
		<-s.block
	}
	return s.outcome
}

type stubAudio struct {
	path string
	err  error
}

func (s *stubAudio) Extract(ctx context.Context, url string, tracker *progress.Tracker) (string, error) {
	return s.path, s.err
}

func goodInspection() *domain.Inspection {
	return &domain.Inspection{
		Title:    "Feature Presentation",
		Duration: 3600,
		Candidates: []domain.StreamCandidate{
			{FormatID: "22", Resolution: "1280x720", VideoCodec: "avc1", AudioCodec: "mp4a"},
		},
	}
}

func newTestService(extractor domain.Extractor, resolver Resolver, orch Orchestrator, audio AudioExtractor) *DownloadService {
	cfg := domain.DefaultConfig()
	return NewDownloadService(extractor, resolver, orch, audio,
		progress.NewRegistry(), cfg, zap.NewNop())
}

func waitForJob(t *testing.T, s *DownloadService, id string) *JobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := s.Job(id); ok && job.Done {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not complete in time")
	return nil
}

func TestListFormats_TrailerRejected(t *testing.T) {
	s := newTestService(
		&stubExtractor{insp: &domain.Inspection{Title: "Official Trailer", Duration: 90}},
		&stubResolver{}, newStubOrchestrator(domain.DownloadOutcome{}), &stubAudio{})

	_, err := s.ListFormats(context.Background(), "https://example.com/v")
	assert.True(t, domain.IsFilterRejection(err))
}

func TestListFormats_ExtractionErrorWrapped(t *testing.T) {
	s := newTestService(
		&stubExtractor{err: errors.New("no extractor matched")},
		&stubResolver{}, newStubOrchestrator(domain.DownloadOutcome{}), &stubAudio{})

	_, err := s.ListFormats(context.Background(), "https://example.com/v")

	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "https://example.com/v", ee.URL)
}

func TestStartDownload_Lifecycle(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{
		Succeeded:  true,
		Engine:     domain.EnginePrimary,
		OutputPath: "/tmp/out.mp4",
		Message:    "download complete",
	})
	s := newTestService(&stubExtractor{insp: goodInspection()}, &stubResolver{}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "22", false)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job := waitForJob(t, s, id)
	require.NotNil(t, job.Outcome)
	assert.True(t, job.Outcome.Succeeded)
	assert.Empty(t, job.Error)

	tracker, ok := s.Registry().Get(id)
	require.True(t, ok)
	assert.Equal(t, progress.StatusComplete, tracker.Snapshot().Status)
	assert.False(t, s.Busy())
}

func TestStartDownload_BusyGate(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{Succeeded: true})
	orch.block = make(chan struct{})
	s := newTestService(&stubExtractor{insp: goodInspection()}, &stubResolver{}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)

	// Wait until the first job reaches the orchestrator.
	select {
	case <-orch.requests:
	case <-time.After(5 * time.Second):
		t.Fatal("first download never started")
	}

	_, err = s.StartDownload("https://example.com/other", "", false)
	assert.ErrorIs(t, err, domain.ErrDownloadBusy)

	close(orch.block)
	waitForJob(t, s, id)

	// The gate reopens once the job finishes.
	_, err = s.StartDownload("https://example.com/third", "", false)
	assert.NoError(t, err)
}

func TestStartDownload_ResolvedURLForwarded(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{Succeeded: true})
	s := newTestService(&stubExtractor{insp: goodInspection()},
		&stubResolver{result: domain.ResolutionResult{
			URL:      "https://cdn.example.com/v.m3u8",
			Strategy: domain.StrategyHeadlessPrimary,
		}}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)
	waitForJob(t, s, id)

	req := <-orch.requests
	assert.Equal(t, "https://cdn.example.com/v.m3u8", req.URL)
	assert.Equal(t, "https://cdn.example.com/v.m3u8", req.ResolvedURL)
}

func TestStartDownload_ForceImpliedByClassifier(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{Succeeded: true})
	// Only a video-only candidate with no audio anywhere: unusable buckets.
	s := newTestService(&stubExtractor{insp: &domain.Inspection{
		Title:    "Feature Presentation",
		Duration: 3600,
		Candidates: []domain.StreamCandidate{
			{FormatID: "137", VideoCodec: "avc1", AudioCodec: "none"},
		},
	}}, &stubResolver{}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)
	waitForJob(t, s, id)

	req := <-orch.requests
	assert.True(t, req.ForceDownload)
}

func TestStartDownload_ProbeFailure(t *testing.T) {
	s := newTestService(&stubExtractor{err: errors.New("unsupported url")},
		&stubResolver{}, newStubOrchestrator(domain.DownloadOutcome{}), &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)

	job := waitForJob(t, s, id)
	assert.Contains(t, job.Error, "unable to fetch video information")

	tracker, _ := s.Registry().Get(id)
	assert.Equal(t, progress.StatusFailed, tracker.Snapshot().Status)
}

func TestStartDownload_TrailerRejectedDuringRun(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{Succeeded: true})
	s := newTestService(&stubExtractor{insp: &domain.Inspection{
		Title: "Movie X - Official Trailer", Duration: 90,
	}}, &stubResolver{}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)

	job := waitForJob(t, s, id)
	assert.Equal(t, "trailer content detected, try another video", job.Error)
	assert.Empty(t, orch.requests, "rejected content must not reach the orchestrator")
}

func TestStartDownload_ShortDurationWarns(t *testing.T) {
	orch := newStubOrchestrator(domain.DownloadOutcome{Succeeded: true})
	s := newTestService(&stubExtractor{insp: &domain.Inspection{
		Title:    "Quick clip",
		Duration: 45,
		Candidates: []domain.StreamCandidate{
			{FormatID: "22", VideoCodec: "avc1", AudioCodec: "mp4a"},
		},
	}}, &stubResolver{}, orch, &stubAudio{})

	id, err := s.StartDownload("https://example.com/v", "", false)
	require.NoError(t, err)

	job := waitForJob(t, s, id)
	assert.NotEmpty(t, job.Warning)
	require.NotNil(t, job.Outcome)
	assert.True(t, job.Outcome.Succeeded)
}

func TestStartAudioExtraction(t *testing.T) {
	s := newTestService(&stubExtractor{insp: goodInspection()}, &stubResolver{},
		newStubOrchestrator(domain.DownloadOutcome{}),
		&stubAudio{path: "/tmp/converted_audio.mp3"})

	id, err := s.StartAudioExtraction("https://example.com/v")
	require.NoError(t, err)

	job := waitForJob(t, s, id)
	assert.Equal(t, JobAudio, job.Kind)
	require.NotNil(t, job.Outcome)
	assert.True(t, job.Outcome.Succeeded)
	assert.Equal(t, "/tmp/converted_audio.mp3", job.Outcome.OutputPath)
}

func TestStartAudioExtraction_Failure(t *testing.T) {
	s := newTestService(&stubExtractor{insp: goodInspection()}, &stubResolver{},
		newStubOrchestrator(domain.DownloadOutcome{}),
		&stubAudio{err: &domain.ConversionFailure{Stage: "transcode", Err: errors.New("codec error")}})

	id, err := s.StartAudioExtraction("https://example.com/v")
	require.NoError(t, err)

	job := waitForJob(t, s, id)
	assert.NotEmpty(t, job.Error)

	tracker, _ := s.Registry().Get(id)
	assert.Equal(t, progress.StatusFailed, tracker.Snapshot().Status)
}
