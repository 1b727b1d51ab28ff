package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry and instruments for the API.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsProcessedTotal *prometheus.CounterVec
	processingDuration      prometheus.Histogram
	analyzerHealthy         prometheus.Gauge
}

// New builds a Metrics instance with its own registry.
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medai",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medai",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsProcessedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medai",
			Subsystem: "documents",
			Name:      "processed_total",
			Help:      "Total upload-and-process runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processingDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medai",
			Subsystem: "documents",
			Name:      "processing_duration_seconds",
			Help:      "Analyzer-reported processing duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	analyzerHealthy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medai",
			Subsystem: "analyzer",
			Name:      "healthy",
			Help:      "1 when the last analyzer health poll succeeded, 0 otherwise.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsProcessedTotal,
		processingDuration,
		analyzerHealthy,
	)

	return &Metrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		documentsProcessedTotal: documentsProcessedTotal,
		processingDuration:      processingDuration,
		analyzerHealthy:         analyzerHealthy,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records per-request counters and latency.
func (m *Metrics) Middleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		m.requestTotal.WithLabelValues(
			service,
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(service, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordDocumentProcessed counts a finished workflow run and, when the
// analyzer reported a duration, observes it.
func (m *Metrics) RecordDocumentProcessed(service, outcome string, processingSeconds float64) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.documentsProcessedTotal.WithLabelValues(service, outcome).Inc()
	if processingSeconds > 0 {
		m.processingDuration.Observe(processingSeconds)
	}
}

// SetAnalyzerHealthy reflects the health monitor's latest poll result.
func (m *Metrics) SetAnalyzerHealthy(healthy bool) {
	if m == nil {
		return
	}
	if healthy {
		m.analyzerHealthy.Set(1)
		return
	}
	m.analyzerHealthy.Set(0)
}
