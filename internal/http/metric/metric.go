package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP request collectors shared by every server in the process.
type Metrics struct {
	InflightRequests prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

var defaultMetrics = &Metrics{
	InflightRequests: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "autoparts",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Number of HTTP requests currently being served.",
	}),
	RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoparts",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"}),
	RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autoparts",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"}),
}

// New returns the process-wide HTTP metrics. The collectors are registered
// once with the default registry, so several servers can share them.
func New() *Metrics {
	return defaultMetrics
}
