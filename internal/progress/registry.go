package progress

import "sync"

// Registry maps download ids to their trackers for the lifetime of the
// process. Entries are small and bounded by request volume, so completed
// trackers are kept for late-joining observers.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*Tracker)}
}

// Create registers and returns a fresh tracker for the given download id.
func (r *Registry) Create(id string) *Tracker {
	t := NewTracker()
	r.mu.Lock()
	r.trackers[id] = t
	r.mu.Unlock()
	return t
}

// Get returns the tracker for a download id, if any.
func (r *Registry) Get(id string) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackers[id]
	return t, ok
}
