// Package progress provides per-download progress handles. Each download
// request gets its own Tracker at start, threaded through the orchestrator
// and every engine, so concurrent requests never share mutable state.
package progress

import "sync"

// Status is the lifecycle state of one download.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusConverting  Status = "converting"
	StatusComplete    Status = "complete"
	StatusFailed      Status = "failed"
)

// PercentUnknown marks progress that the active engine cannot quantify.
// Only the primary engine reports granular percentages.
const PercentUnknown = -1

// Event is one observable progress snapshot.
type Event struct {
	Status  Status  `json:"status"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// Tracker is a request-scoped progress cell. Writes are serialized under a
// mutex; snapshot reads return a copy. All methods are nil-safe so engines
// invoked without a tracker (CLI probes, tests) need no guards.
type Tracker struct {
	mu sync.Mutex
	ev Event
}

// NewTracker returns a tracker in the starting state.
func NewTracker() *Tracker {
	return &Tracker{ev: Event{Status: StatusStarting, Percent: 0}}
}

// Set replaces the current status and percent.
func (t *Tracker) Set(status Status, percent float64, message string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.ev = Event{Status: status, Percent: percent, Message: message}
	t.mu.Unlock()
}

// Downloading records an in-flight percentage from the primary engine.
func (t *Tracker) Downloading(percent float64) {
	t.Set(StatusDownloading, percent, "")
}

// Converting marks the transcode stage of the audio pipeline.
func (t *Tracker) Converting() {
	t.Set(StatusConverting, PercentUnknown, "")
}

// Complete marks terminal success.
func (t *Tracker) Complete(message string) {
	t.Set(StatusComplete, 100, message)
}

// Fail marks terminal failure.
func (t *Tracker) Fail(message string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.ev = Event{Status: StatusFailed, Percent: t.ev.Percent, Message: message}
	t.mu.Unlock()
}

// Snapshot returns a copy of the latest event.
func (t *Tracker) Snapshot() Event {
	if t == nil {
		return Event{Status: StatusStarting}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ev
}

// Terminal reports whether the tracker reached complete or failed.
func (t *Tracker) Terminal() bool {
	s := t.Snapshot().Status
	return s == StatusComplete || s == StatusFailed
}
