package uploads

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the single-flight upload workflow state for one user.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// MaxFileSize is the upload size ceiling in bytes.
const MaxFileSize = 50 << 20

const acceptedContentType = "application/pdf"

// completeResetDelay is how long a finished run stays visible as complete
// before the workflow returns to idle on its own.
const completeResetDelay = 2 * time.Second

var (
	// ErrBusy rejects a submission while a run is already in flight.
	ErrBusy = errors.New("upload already in progress")
	// ErrNeedsReset rejects a submission while a failed run awaits an
	// explicit reset.
	ErrNeedsReset = errors.New("previous upload failed, reset required")
	// ErrFileTooLarge rejects files above MaxFileSize.
	ErrFileTooLarge = fmt.Errorf("file exceeds %d MB limit", MaxFileSize>>20)
	// ErrUnsupportedType rejects non-PDF uploads.
	ErrUnsupportedType = errors.New("only PDF files are accepted")
)

// ValidateSelection checks a candidate file before any state changes. A
// rejected selection leaves the workflow untouched.
func ValidateSelection(filename string, size int64, contentType string) error {
	if strings.TrimSpace(filename) == "" {
		return errors.New("file is required")
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	if mediaType(contentType) != acceptedContentType {
		return ErrUnsupportedType
	}
	return nil
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Snapshot is a point-in-time view of the workflow, safe to serialize.
type Snapshot struct {
	State      State  `json:"state"`
	Progress   int    `json:"progress"`
	Filename   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// Workflow tracks one user's upload pipeline through its progress
// milestones. All methods are safe for concurrent use.
type Workflow struct {
	mu         sync.Mutex
	state      State
	progress   int
	filename   string
	errMsg     string
	documentID string

	resetTimer *time.Timer
	afterFunc  func(time.Duration, func()) *time.Timer
}

// NewWorkflow returns a workflow in the idle state.
func NewWorkflow() *Workflow {
	return &Workflow{state: StateIdle, afterFunc: time.AfterFunc}
}

// Begin moves idle to uploading. A run in flight or an unreset failure
// blocks new submissions.
func (w *Workflow) Begin(filename string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateUploading, StateProcessing:
		return ErrBusy
	case StateError:
		return ErrNeedsReset
	case StateComplete:
		// The auto-reset has not fired yet; fold it into this run.
		w.cancelResetLocked()
	}

	w.state = StateUploading
	w.progress = 20
	w.filename = filename
	w.errMsg = ""
	w.documentID = ""
	return nil
}

// MarkStored records that the file landed in object storage.
func (w *Workflow) MarkStored() {
	w.advance(StateUploading, 50)
}

// MarkSigned records that a readable URL for the object was issued.
func (w *Workflow) MarkSigned() {
	w.advance(StateUploading, 70)
}

// MarkAnalyzing records hand-off to the analyzer. Progress holds at the
// signed-URL milestone until the analyzer answers.
func (w *Workflow) MarkAnalyzing() {
	w.advance(StateProcessing, 70)
}

// MarkAnalyzed records the analyzer's successful answer.
func (w *Workflow) MarkAnalyzed() {
	w.advance(StateProcessing, 90)
}

func (w *Workflow) advance(state State, progress int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUploading && w.state != StateProcessing {
		return
	}
	w.state = state
	if progress > w.progress {
		w.progress = progress
	}
}

// Complete finishes the run and schedules the automatic return to idle.
func (w *Workflow) Complete(documentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUploading && w.state != StateProcessing {
		return
	}
	w.state = StateComplete
	w.progress = 100
	w.documentID = documentID
	w.errMsg = ""

	w.cancelResetLocked()
	w.resetTimer = w.afterFunc(completeResetDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.state == StateComplete {
			w.resetLocked()
		}
	})
}

// Fail records a terminal failure. The workflow stays in the error state
// until Reset is called; progress keeps its last milestone.
func (w *Workflow) Fail(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUploading && w.state != StateProcessing {
		return
	}
	w.state = StateError
	w.errMsg = msg
}

// Reset returns the workflow to idle from any state.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelResetLocked()
	w.resetLocked()
}

func (w *Workflow) resetLocked() {
	w.state = StateIdle
	w.progress = 0
	w.filename = ""
	w.errMsg = ""
	w.documentID = ""
}

func (w *Workflow) cancelResetLocked() {
	if w.resetTimer != nil {
		w.resetTimer.Stop()
		w.resetTimer = nil
	}
}

// Snapshot returns the current state for status reporting.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:      w.state,
		Progress:   w.progress,
		Filename:   w.filename,
		Error:      w.errMsg,
		DocumentID: w.documentID,
	}
}
