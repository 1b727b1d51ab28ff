package health

import (
	"context"
	"sync"
	"time"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/metrics"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/telemetry"
)

// Status is the last observed analyzer availability.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Pinger probes the analyzer's health endpoint.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// checkTimeout bounds a single health probe.
const checkTimeout = 10 * time.Second

// Snapshot is a point-in-time view of analyzer availability.
type Snapshot struct {
	Status      Status     `json:"status"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Monitor polls the analyzer on a fixed interval and caches the result so
// status reads never touch the analyzer themselves.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	metrics  *metrics.Metrics
	service  string

	mu          sync.RWMutex
	status      Status
	lastChecked time.Time
	lastError   string
}

// NewMonitor constructs a monitor that starts in the unknown state.
func NewMonitor(pinger Pinger, interval time.Duration, m *metrics.Metrics, service string) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		metrics:  m,
		service:  service,
		status:   StatusUnknown,
	}
}

// Run polls until ctx is cancelled. The first probe happens immediately so
// the status page is useful right after startup.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check performs one probe and records the outcome.
func (m *Monitor) Check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := m.pinger.HealthCheck(probeCtx)
	now := time.Now().UTC()

	m.mu.Lock()
	prev := m.status
	m.lastChecked = now
	if err != nil {
		m.status = StatusUnhealthy
		m.lastError = err.Error()
	} else {
		m.status = StatusHealthy
		m.lastError = ""
	}
	next := m.status
	m.mu.Unlock()

	m.metrics.SetAnalyzerHealthy(err == nil)
	if prev != next {
		fields := map[string]any{"from": string(prev), "to": string(next)}
		if err != nil {
			fields["error"] = err.Error()
			telemetry.Warn("analyzer health changed", fields)
		} else {
			telemetry.Info("analyzer health changed", fields)
		}
	}
}

// Snapshot returns the cached availability.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Status: m.status, Error: m.lastError}
	if !m.lastChecked.IsZero() {
		t := m.lastChecked
		snap.LastChecked = &t
	}
	return snap
}
