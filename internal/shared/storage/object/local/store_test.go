package local

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080", "test-secret")

	payload := []byte("%PDF-1.4 test payload")
	key, size, _, err := store.Save(context.Background(), "user-1", "report.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("expected .pdf key, got %q", key)
	}

	f, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestSignedURLVerifies(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080", "test-secret")

	signed, err := store.SignedURL(context.Background(), "abc/123.pdf", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}

	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	exp, err := strconv.ParseInt(parsed.Query().Get("exp"), 10, 64)
	if err != nil {
		t.Fatalf("parse exp: %v", err)
	}
	sig := parsed.Query().Get("sig")

	if !store.Verify("abc/123.pdf", exp, sig) {
		t.Fatalf("expected signature to verify")
	}
	if store.Verify("abc/other.pdf", exp, sig) {
		t.Fatalf("signature must be bound to the storage key")
	}
}

func TestSignedURLExpires(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080", "test-secret")
	store.now = func() time.Time { return time.Unix(1000, 0) }

	signed, err := store.SignedURL(context.Background(), "abc/123.pdf", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	parsed, _ := url.Parse(signed)
	exp, _ := strconv.ParseInt(parsed.Query().Get("exp"), 10, 64)
	sig := parsed.Query().Get("sig")

	store.now = func() time.Time { return time.Unix(1000+120, 0) }
	if store.Verify("abc/123.pdf", exp, sig) {
		t.Fatalf("expected expired signature to fail")
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080", "test-secret")
	if _, err := store.Open(context.Background(), "../outside"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}
