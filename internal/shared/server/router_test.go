package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/config"
)

func newTestRouterConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:                 "8080",
		Env:                  "dev",
		LocalStoreDir:        t.TempDir(),
		ObjectStoreType:      "local",
		AnalyzerBaseURL:      "http://127.0.0.1:9",
		AnalyzerPollInterval: time.Minute,
		SignedURLTTL:         time.Hour,
		PublicBaseURL:        "http://localhost:8080",
	}
}

func TestMetricsEndpointNeedsNoIdentity(t *testing.T) {
	r, _, err := NewRouter(newTestRouterConfig(t))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	// A scrape carries neither a bearer token nor a guest header.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from bare scrape, got %d: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); !strings.Contains(body, "medai_http_requests_total") &&
		!strings.Contains(body, "medai_http_in_flight_requests") {
		t.Fatalf("expected exposition output, got: %.200s", body)
	}
}

func TestMetricsEndpointIsNotRateLimited(t *testing.T) {
	r, _, err := NewRouter(newTestRouterConfig(t))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	// Well past the DEFAULT burst; scrapes must never see a 429.
	for i := 0; i < 25; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("scrape %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestAPIRoutesStillRequireIdentity(t *testing.T) {
	r, _, err := NewRouter(newTestRouterConfig(t))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", w.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":9090": ":9090",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Errorf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
