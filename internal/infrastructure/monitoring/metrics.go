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
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Launcher metrics
	Launches          *prometheus.CounterVec
	ProcessesActive   prometheus.Gauge
	HealthChecks      *prometheus.CounterVec
	ProbeDuration     prometheus.Histogram
	OperationDuration *prometheus.HistogramVec
	WindowStateWrites *prometheus.CounterVec
	EventsPublished   prometheus.Counter

	// Catalog metrics
	CatalogApps prometheus.Gauge

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
	TotalLaunches     int64   `json:"total_launches"`
	FailedLaunches    int64   `json:"failed_launches"`
	ActiveProcesses   int64   `json:"active_processes"`
	ActiveConnections int64   `json:"active_connections"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector on its own registry
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
				Name: "launcher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Launcher metrics
		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_launches_total",
				Help: "Total number of launch attempts by outcome and error code",
			},
			[]string{"outcome", "code"},
		),
		ProcessesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_processes_active",
				Help: "Number of active supervised processes",
			},
		),
		HealthChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_health_checks_total",
				Help: "Total number of health probes by outcome",
			},
			[]string{"outcome"},
		),
		ProbeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "launcher_probe_duration_seconds",
				Help:    "Reachability probe duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_operation_duration_seconds",
				Help:    "Launcher operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "outcome"},
		),
		WindowStateWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_window_state_writes_total",
				Help: "Total number of window state writes by outcome",
			},
			[]string{"outcome"},
		),
		EventsPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_events_published_total",
				Help: "Total number of launch results published",
			},
		),

		// Catalog metrics
		CatalogApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_catalog_apps",
				Help: "Number of applications in the catalog",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "launcher_uptime_seconds",
			Help: "Launcher uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordLaunch records a launch outcome. code is empty on success.
func (m *Metrics) RecordLaunch(success bool, code string) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	if code == "" {
		code = "none"
	}
	m.Launches.WithLabelValues(outcome, code).Inc()

	m.mu.Lock()
	m.snapshot.TotalLaunches++
	if !success {
		m.snapshot.FailedLaunches++
	}
	m.mu.Unlock()
}

// SetProcessesActive sets the number of active processes
func (m *Metrics) SetProcessesActive(count int) {
	m.ProcessesActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveProcesses = int64(count)
	m.mu.Unlock()
}

// RecordHealthCheck records a health probe outcome
func (m *Metrics) RecordHealthCheck(healthy bool) {
	if healthy {
		m.HealthChecks.WithLabelValues("healthy").Inc()
		return
	}
	m.HealthChecks.WithLabelValues("unhealthy").Inc()
}

// ObserveProbe records a probe duration
func (m *Metrics) ObserveProbe(duration time.Duration) {
	m.ProbeDuration.Observe(duration.Seconds())
}

// RecordWindowStateWrite records a window state persistence attempt
func (m *Metrics) RecordWindowStateWrite(err error) {
	if err != nil {
		m.WindowStateWrites.WithLabelValues("error").Inc()
		return
	}
	m.WindowStateWrites.WithLabelValues("ok").Inc()
}

// IncEventsPublished increments the published events counter
func (m *Metrics) IncEventsPublished() {
	m.EventsPublished.Inc()
}

// SetCatalogApps sets the number of catalog applications
func (m *Metrics) SetCatalogApps(count int) {
	m.CatalogApps.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
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

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AverageLatencyMs = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
