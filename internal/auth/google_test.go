package auth

import (
	"testing"
	"time"
)

func TestStateStoreConsumeIsOneShot(t *testing.T) {
	s := newStateStore()
	s.put("abc", time.Now().Add(time.Minute))

	if !s.consume("abc") {
		t.Fatalf("fresh state must be consumable")
	}
	if s.consume("abc") {
		t.Fatalf("state must not be consumable twice")
	}
	if s.consume("never-put") {
		t.Fatalf("unknown state must not be consumable")
	}
}

func TestStateStoreExpiry(t *testing.T) {
	s := newStateStore()
	s.put("old", time.Now().Add(-time.Second))

	if s.consume("old") {
		t.Fatalf("expired state must be rejected")
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("https://app.example/auth?next=%2Fdashboard", "tok123")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	want := "https://app.example/auth?next=%2Fdashboard&token=tok123"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if _, err := appendToken("", "tok"); err == nil {
		t.Fatalf("empty redirect must error")
	}
}
