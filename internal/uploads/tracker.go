package uploads

import "sync"

// Tracker holds one workflow per user, created on first use. Entries live
// for the process lifetime; the per-user footprint is a few words.
type Tracker struct {
	mu    sync.Mutex
	flows map[string]*Workflow
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{flows: make(map[string]*Workflow)}
}

// Get returns the user's workflow, creating an idle one if absent.
func (t *Tracker) Get(userID string) *Workflow {
	t.mu.Lock()
	defer t.mu.Unlock()
	wf, ok := t.flows[userID]
	if !ok {
		wf = NewWorkflow()
		t.flows[userID] = wf
	}
	return wf
}
