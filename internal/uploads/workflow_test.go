package uploads

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// stubTimer swaps the auto-reset scheduling for a captured callback so tests
// can fire it deterministically.
func stubTimer(w *Workflow) *func() {
	var fire func()
	w.afterFunc = func(_ time.Duration, f func()) *time.Timer {
		fire = f
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	return &fire
}

func TestWorkflowHappyPath(t *testing.T) {
	w := NewWorkflow()
	fire := stubTimer(w)

	if snap := w.Snapshot(); snap.State != StateIdle || snap.Progress != 0 {
		t.Fatalf("fresh workflow not idle: %+v", snap)
	}

	if err := w.Begin("report.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if snap := w.Snapshot(); snap.State != StateUploading || snap.Progress != 20 || snap.Filename != "report.pdf" {
		t.Fatalf("after Begin: %+v", snap)
	}

	w.MarkStored()
	if snap := w.Snapshot(); snap.Progress != 50 {
		t.Fatalf("after MarkStored: %+v", snap)
	}

	w.MarkSigned()
	if snap := w.Snapshot(); snap.Progress != 70 {
		t.Fatalf("after MarkSigned: %+v", snap)
	}

	w.MarkAnalyzing()
	if snap := w.Snapshot(); snap.State != StateProcessing || snap.Progress != 70 {
		t.Fatalf("after MarkAnalyzing: %+v", snap)
	}

	w.MarkAnalyzed()
	if snap := w.Snapshot(); snap.State != StateProcessing || snap.Progress != 90 {
		t.Fatalf("after MarkAnalyzed: %+v", snap)
	}

	w.Complete("doc-1")
	if snap := w.Snapshot(); snap.State != StateComplete || snap.Progress != 100 || snap.DocumentID != "doc-1" {
		t.Fatalf("after Complete: %+v", snap)
	}

	if *fire == nil {
		t.Fatalf("auto-reset was not scheduled")
	}
	(*fire)()
	if snap := w.Snapshot(); snap.State != StateIdle || snap.Progress != 0 || snap.DocumentID != "" {
		t.Fatalf("after auto-reset: %+v", snap)
	}
}

func TestProgressNeverDecreases(t *testing.T) {
	w := NewWorkflow()
	stubTimer(w)

	if err := w.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	w.MarkSigned()
	w.MarkStored() // out of order, must not regress
	if snap := w.Snapshot(); snap.Progress != 70 {
		t.Fatalf("progress regressed: %+v", snap)
	}
}

func TestProgressHoldsDuringAnalysis(t *testing.T) {
	w := NewWorkflow()
	stubTimer(w)

	if err := w.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	w.MarkStored()
	w.MarkSigned()
	w.MarkAnalyzing()

	// While the analyzer call is in flight the bar shows the signed-URL
	// milestone, not the post-analysis one.
	if snap := w.Snapshot(); snap.State != StateProcessing || snap.Progress != 70 {
		t.Fatalf("in-flight analysis: %+v", snap)
	}

	w.Fail("analyzer unavailable")
	if snap := w.Snapshot(); snap.Progress != 70 {
		t.Fatalf("failure during analysis must keep 70, got %d", snap.Progress)
	}
}

func TestBeginWhileInFlight(t *testing.T) {
	w := NewWorkflow()
	stubTimer(w)

	if err := w.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := w.Begin("b.pdf"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	w.MarkAnalyzing()
	if err := w.Begin("b.pdf"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while processing, got %v", err)
	}
}

func TestFailureRequiresExplicitReset(t *testing.T) {
	w := NewWorkflow()
	stubTimer(w)

	if err := w.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	w.MarkStored()
	w.Fail("analyzer unavailable")

	snap := w.Snapshot()
	if snap.State != StateError || snap.Error != "analyzer unavailable" {
		t.Fatalf("after Fail: %+v", snap)
	}
	if snap.Progress != 50 {
		t.Fatalf("failure must keep the last milestone, got %d", snap.Progress)
	}

	if err := w.Begin("b.pdf"); !errors.Is(err, ErrNeedsReset) {
		t.Fatalf("expected ErrNeedsReset, got %v", err)
	}

	w.Reset()
	if snap := w.Snapshot(); snap.State != StateIdle || snap.Error != "" {
		t.Fatalf("after Reset: %+v", snap)
	}
	if err := w.Begin("b.pdf"); err != nil {
		t.Fatalf("Begin after reset: %v", err)
	}
}

func TestBeginFromCompleteCancelsPendingReset(t *testing.T) {
	w := NewWorkflow()
	fire := stubTimer(w)

	if err := w.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	w.Complete("doc-1")

	if err := w.Begin("b.pdf"); err != nil {
		t.Fatalf("Begin from complete: %v", err)
	}
	if snap := w.Snapshot(); snap.State != StateUploading || snap.Filename != "b.pdf" || snap.DocumentID != "" {
		t.Fatalf("new run not started cleanly: %+v", snap)
	}

	// A stale auto-reset callback from the finished run must not clobber
	// the new one.
	(*fire)()
	if snap := w.Snapshot(); snap.State != StateUploading {
		t.Fatalf("stale reset clobbered new run: %+v", snap)
	}
}

func TestValidateSelection(t *testing.T) {
	if err := ValidateSelection("a.pdf", 1024, "application/pdf"); err != nil {
		t.Fatalf("valid selection rejected: %v", err)
	}
	if err := ValidateSelection("a.pdf", 1024, "Application/PDF; charset=binary"); err != nil {
		t.Fatalf("content type parameters must be ignored: %v", err)
	}
	if err := ValidateSelection("a.pdf", MaxFileSize, "application/pdf"); err != nil {
		t.Fatalf("file exactly at the limit must pass: %v", err)
	}
	if err := ValidateSelection("a.pdf", MaxFileSize+1, "application/pdf"); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if err := ValidateSelection("a.png", 1024, "image/png"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if err := ValidateSelection("  ", 1024, "application/pdf"); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected missing-file error, got %v", err)
	}
}

func TestTrackerIsPerUser(t *testing.T) {
	tr := NewTracker()
	a := tr.Get("user-a")
	b := tr.Get("user-b")
	if a == b {
		t.Fatalf("tracker handed the same workflow to two users")
	}
	if tr.Get("user-a") != a {
		t.Fatalf("tracker must return the same workflow for a user")
	}

	if err := a.Begin("a.pdf"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := b.Begin("b.pdf"); err != nil {
		t.Fatalf("one user's run must not block another: %v", err)
	}
}
