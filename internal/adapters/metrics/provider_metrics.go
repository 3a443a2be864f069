package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetricsCollector handles content provider request metrics.
// It implements content.RequestObserver.
type ProviderMetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewProviderMetricsCollector creates a new provider metrics collector
func NewProviderMetricsCollector() *ProviderMetricsCollector {
	return &ProviderMetricsCollector{
		// Total provider requests by operation and outcome
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_requests_total",
				Help:      "Total number of content provider requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		// Provider request duration histogram
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provider_request_duration_seconds",
				Help:      "Content provider request duration distribution",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"operation"},
		),
	}
}

// Register registers all provider metrics with the Prometheus registry
func (c *ProviderMetricsCollector) Register() error {
	return register(c.requestsTotal, c.requestDuration)
}

// ObserveProviderRequest records a provider request completion
func (c *ProviderMetricsCollector) ObserveProviderRequest(operation, outcome string, duration time.Duration) {
	c.requestsTotal.WithLabelValues(operation, outcome).Inc()
	c.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
