package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// BreakerReporter exposes circuit breaker states keyed by probe target
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// MetricsAggregator combines service, launcher and catalog figures into
// one JSON document for dashboards that do not scrape Prometheus.
type MetricsAggregator struct {
	metrics  *monitoring.Metrics
	launcher *launcher.Service
	catalog  *catalog.Catalog
	breakers BreakerReporter
}

// NewMetricsAggregator creates a metrics aggregator. breakers may be nil.
func NewMetricsAggregator(metrics *monitoring.Metrics, svc *launcher.Service, apps *catalog.Catalog, breakers BreakerReporter) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:  metrics,
		launcher: svc,
		catalog:  apps,
		breakers: breakers,
	}
}

// MetricsSnapshot represents a snapshot of all launcher metrics
type MetricsSnapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Service   monitoring.MetricsSnapshot `json:"service"`
	Launcher  launcher.Stats             `json:"launcher"`
	Catalog   types.CatalogStats         `json:"catalog"`
	Breakers  map[string]string          `json:"breakers"`
	Summary   MetricsSummary             `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	LaunchFailureRate float64 `json:"launch_failure_rate"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns the combined snapshot
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, ma.Snapshot())
}

// Snapshot collects the current figures
func (ma *MetricsAggregator) Snapshot() MetricsSnapshot {
	service := ma.metrics.Snapshot()

	breakers := map[string]string{}
	if ma.breakers != nil {
		breakers = ma.breakers.BreakerStates()
	}

	return MetricsSnapshot{
		Timestamp: time.Now(),
		Service:   service,
		Launcher:  ma.launcher.Stats(),
		Catalog:   ma.catalog.Stats(),
		Breakers:  breakers,
		Summary:   summarize(service),
	}
}

func summarize(s monitoring.MetricsSnapshot) MetricsSummary {
	summary := MetricsSummary{
		TotalRequests:     s.TotalRequests,
		AverageLatencyMs:  s.AverageLatencyMs,
		ActiveConnections: s.ActiveConnections,
		UptimeSeconds:     s.UptimeSeconds,
	}
	if s.TotalRequests > 0 {
		summary.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	if s.TotalLaunches > 0 {
		summary.LaunchFailureRate = float64(s.FailedLaunches) / float64(s.TotalLaunches)
	}
	return summary
}
