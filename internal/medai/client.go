package medai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/keshav-protos/medai-clinical-view/internal/documents"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/telemetry"
)

// Client talks to the external document analyzer. One POST per document, no
// retries; a circuit breaker sheds load while the analyzer is failing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[documents.Analysis]
}

// NewClient constructs an analyzer client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("analyzer base URL is required")
	}

	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ANALYZER_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}

	settings := gobreaker.Settings{
		Name:        "analyzer",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// 4xx means the request was bad, not the analyzer.
			if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode < 500 {
				return true
			}
			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.Warn("analyzer breaker state change", map[string]any{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[documents.Analysis](settings),
	}, nil
}

// HealthCheck probes GET /health. Any transport failure or non-2xx answer
// reports the analyzer as unavailable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

type processRequest struct {
	DocumentURL string `json:"document_url"`
}

// ProcessDocument submits a signed document URL for analysis and returns the
// structured result. The call is synchronous and is never retried here.
func (c *Client) ProcessDocument(ctx context.Context, documentURL string) (documents.Analysis, error) {
	if strings.TrimSpace(documentURL) == "" {
		return documents.Analysis{}, fmt.Errorf("document URL is required")
	}

	res, err := c.breaker.Execute(func() (documents.Analysis, error) {
		return c.processOnce(ctx, documentURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return documents.Analysis{}, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return documents.Analysis{}, err
	}
	return res, nil
}

func (c *Client) processOnce(ctx context.Context, documentURL string) (documents.Analysis, error) {
	payload, err := json.Marshal(processRequest{DocumentURL: documentURL})
	if err != nil {
		return documents.Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-document", bytes.NewReader(payload))
	if err != nil {
		return documents.Analysis{}, fmt.Errorf("build process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return documents.Analysis{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return documents.Analysis{}, fmt.Errorf("read analyzer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return documents.Analysis{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(body),
		}
	}

	var res documents.Analysis
	if err := json.Unmarshal(body, &res); err != nil {
		return documents.Analysis{}, fmt.Errorf("decode analyzer response: %w", err)
	}
	if res.ClinicalCodes == nil {
		res.ClinicalCodes = []documents.ClinicalCode{}
	}
	if res.SuggestedTasks == nil {
		res.SuggestedTasks = []documents.SuggestedTask{}
	}

	telemetry.Info("document analyzed", map[string]any{
		"duration_ms":   time.Since(start).Milliseconds(),
		"document_type": string(res.DocumentType),
	})
	return res, nil
}

// extractMessage pulls a human-readable message out of an analyzer error body.
// Bodies are not guaranteed to be JSON.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	return ""
}
