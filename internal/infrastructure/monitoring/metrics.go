package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Canvas metrics
	CanvasesActive  prometheus.Gauge
	Dispatches      *prometheus.CounterVec
	DragSessions    *prometheus.CounterVec
	SessionDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveCanvases    int64   `json:"active_canvases"`
	ActiveConnections int64   `json:"active_connections"`
	Dispatched        int64   `json:"dispatched"`
	Ignored           int64   `json:"ignored"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector with its own registry, so several
// servers can coexist in one process
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canvas_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Canvas metrics
		CanvasesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "canvas_active",
				Help: "Number of live canvases",
			},
		),
		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_dispatch_total",
				Help: "Messages dispatched to canvases by outcome",
			},
			[]string{"type", "outcome", "reason"},
		),
		DragSessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_drag_sessions_total",
				Help: "Drag sessions started",
			},
			[]string{"source"},
		),
		SessionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canvas_drag_session_duration_seconds",
				Help:    "Drag session duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "canvas_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	return m
}

// Registry returns the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition for this collector
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDispatch counts one message handled by a canvas
func (m *Metrics) RecordDispatch(msgType, outcome, reason string) {
	m.Dispatches.WithLabelValues(msgType, outcome, reason).Inc()

	m.mu.Lock()
	m.snapshot.Dispatched++
	if outcome != "applied" {
		m.snapshot.Ignored++
	}
	m.mu.Unlock()
}

// RecordDragStart counts a started drag session
func (m *Metrics) RecordDragStart(source string) {
	m.DragSessions.WithLabelValues(source).Inc()
}

// RecordDragEnd observes how long a drag session lasted
func (m *Metrics) RecordDragEnd(source string, duration time.Duration) {
	m.SessionDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetCanvasesActive sets the number of live canvases
func (m *Metrics) SetCanvasesActive(count int) {
	m.CanvasesActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveCanvases = int64(count)
	m.mu.Unlock()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
