package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/progress"
)

// Resolver produces a best-guess real stream URL for a page.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) domain.ResolutionResult
}

// Orchestrator runs the engine escalation for one download.
type Orchestrator interface {
	Run(ctx context.Context, req DownloadRequest) domain.DownloadOutcome
}

// AudioExtractor runs the MP3 extraction pipeline.
type AudioExtractor interface {
	Extract(ctx context.Context, url string, tracker *progress.Tracker) (string, error)
}

// FormatListing is the classification response for a format inquiry.
type FormatListing struct {
	Buckets         domain.FormatBuckets `json:"video"`
	Thumbnail       string               `json:"thumbnail,omitempty"`
	Title           string               `json:"title"`
	Duration        float64              `json:"duration"`
	ForceDownload   bool                 `json:"force_download"`
	DurationWarning bool                 `json:"duration_warning"`
}

// JobKind distinguishes download jobs from audio extraction jobs.
type JobKind string

const (
	JobDownload JobKind = "download"
	JobAudio    JobKind = "mp3"
)

// JobStatus is the externally visible state of one download job.
type JobStatus struct {
	ID      string                  `json:"id"`
	URL     string                  `json:"url"`
	Kind    JobKind                 `json:"kind"`
	Done    bool                    `json:"done"`
	Warning string                  `json:"warning,omitempty"`
	Error   string                  `json:"error,omitempty"`
	Outcome *domain.DownloadOutcome `json:"outcome,omitempty"`
}

// DownloadService coordinates resolution, classification, filtering, and
// engine escalation for download requests. One download runs at a time;
// concurrent requests get ErrDownloadBusy instead of racing.
type DownloadService struct {
	extractor domain.Extractor
	resolver  Resolver
	orch      Orchestrator
	audio     AudioExtractor
	registry  *progress.Registry
	cfg       *domain.Config
	logger    *zap.Logger

	mu     sync.Mutex
	active bool
	jobs   map[string]*JobStatus
}

// NewDownloadService wires the service from its collaborators.
func NewDownloadService(
	extractor domain.Extractor,
	resolver Resolver,
	orch Orchestrator,
	audio AudioExtractor,
	registry *progress.Registry,
	cfg *domain.Config,
	logger *zap.Logger,
) *DownloadService {
	return &DownloadService{
		extractor: extractor,
		resolver:  resolver,
		orch:      orch,
		audio:     audio,
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(map[string]*JobStatus),
	}
}

// Registry exposes the progress registry for the streaming handlers.
func (s *DownloadService) Registry() *progress.Registry {
	return s.registry
}

// Job returns the status of a known job.
func (s *DownloadService) Job(id string) (*JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Busy reports whether a download is currently in flight.
func (s *DownloadService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ListFormats probes a URL and classifies its available formats. The content
// filter is applied before results are returned: trailer-like titles are
// rejected outright.
func (s *DownloadService) ListFormats(ctx context.Context, url string) (*FormatListing, error) {
	insp, err := s.extractor.Probe(ctx, url, s.extractOptions(url))
	if err != nil {
		return nil, &domain.ExtractionError{URL: url, Err: err}
	}

	decision := CheckContent(insp.Title, insp.Duration)
	if !decision.Allowed {
		return nil, &domain.FilterRejection{Reason: decision.Reason}
	}
	if decision.ShortDuration {
		s.logger.Warn("Short duration detected, content may be a trailer",
			zap.String("url", url),
			zap.Float64("duration", insp.Duration))
	}

	buckets, force := ClassifyFormats(insp.Candidates)
	if force {
		s.logger.Info("No usable formats found, force download mode activated",
			zap.String("url", url))
	}

	return &FormatListing{
		Buckets:         buckets,
		Thumbnail:       insp.Thumbnail,
		Title:           insp.Title,
		Duration:        insp.Duration,
		ForceDownload:   force,
		DurationWarning: decision.ShortDuration,
	}, nil
}

// StartDownload begins an asynchronous download and returns its job id.
func (s *DownloadService) StartDownload(url, formatID string, force bool) (string, error) {
	id, err := s.begin(url, JobDownload)
	if err != nil {
		return "", err
	}

	go s.runDownload(id, url, formatID, force)
	return id, nil
}

// StartAudioExtraction begins an asynchronous MP3 extraction job.
func (s *DownloadService) StartAudioExtraction(url string) (string, error) {
	id, err := s.begin(url, JobAudio)
	if err != nil {
		return "", err
	}

	go s.runAudio(id, url)
	return id, nil
}

func (s *DownloadService) begin(url string, kind JobKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return "", domain.ErrDownloadBusy
	}
	s.active = true

	id := uuid.New().String()
	s.jobs[id] = &JobStatus{ID: id, URL: url, Kind: kind}
	return id, nil
}

func (s *DownloadService) runDownload(id, url, formatID string, force bool) {
	ctx := context.Background()
	tracker := s.registry.Create(id)
	defer s.finish()

	// Bounded smart resolution; on timeout or no result the original URL
	// is used as-is.
	res := s.resolver.Resolve(ctx, url)
	target := url
	if res.Resolved() {
		target = res.URL
	}

	insp, err := s.extractor.Probe(ctx, target, s.extractOptions(target))
	if err != nil {
		s.fail(id, tracker, &domain.ExtractionError{URL: target, Err: err},
			"unable to fetch video information")
		return
	}

	decision := CheckContent(insp.Title, insp.Duration)
	if !decision.Allowed {
		s.fail(id, tracker, &domain.FilterRejection{Reason: decision.Reason},
			"trailer content detected, try another video")
		return
	}
	if decision.ShortDuration {
		s.logger.Warn("Short duration detected, content may be a trailer",
			zap.String("url", target),
			zap.Float64("duration", insp.Duration))
		s.setWarning(id, "short duration, content may be a trailer")
	}

	_, classifierForce := ClassifyFormats(insp.Candidates)
	if classifierForce {
		// Force is implied when no structured format is usable.
		force = true
	}

	outcome := s.orch.Run(ctx, DownloadRequest{
		URL:           target,
		FormatID:      formatID,
		ForceDownload: force,
		ResolvedURL:   res.URL,
		OutputDir:     s.cfg.Download.Dir,
		Tracker:       tracker,
	})

	s.mu.Lock()
	job := s.jobs[id]
	job.Done = true
	job.Outcome = &outcome
	if !outcome.Succeeded {
		job.Error = outcome.Message
	}
	s.mu.Unlock()

	if outcome.Succeeded {
		tracker.Complete(outcome.Message)
	} else {
		tracker.Fail(outcome.Message)
	}
}

func (s *DownloadService) runAudio(id, url string) {
	ctx := context.Background()
	tracker := s.registry.Create(id)
	defer s.finish()

	path, err := s.audio.Extract(ctx, url, tracker)
	if err != nil {
		s.fail(id, tracker, err, err.Error())
		return
	}

	outcome := domain.DownloadOutcome{
		Succeeded:  true,
		Engine:     domain.EnginePrimary,
		OutputPath: path,
		Message:    "MP3 download and conversion complete",
	}
	s.mu.Lock()
	job := s.jobs[id]
	job.Done = true
	job.Outcome = &outcome
	s.mu.Unlock()

	tracker.Complete(outcome.Message)
}

func (s *DownloadService) extractOptions(url string) domain.ExtractOptions {
	return domain.ExtractOptions{
		CookieFile:     s.cfg.Download.CookieFile,
		UserAgent:      s.cfg.Download.UserAgent,
		Referer:        url,
		FormatSelector: DefaultFormatSelector,
	}
}

func (s *DownloadService) fail(id string, tracker *progress.Tracker, err error, message string) {
	s.logger.Error("Download job failed",
		zap.String("id", id),
		zap.Error(err))

	s.mu.Lock()
	job := s.jobs[id]
	job.Done = true
	job.Error = fmt.Sprintf("%s: %v", message, err)
	if domain.IsFilterRejection(err) {
		job.Error = message
	}
	s.mu.Unlock()

	tracker.Fail(message)
}

func (s *DownloadService) setWarning(id, warning string) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		job.Warning = warning
	}
	s.mu.Unlock()
}

func (s *DownloadService) finish() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
