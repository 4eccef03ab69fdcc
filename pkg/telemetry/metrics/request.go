package metrics

import (
	"time"

	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks dispatched requests.
//
// Metrics:
//   - phi3_server_requests_total: request count by route, method, status
//   - phi3_server_request_duration_seconds: dispatch duration by route
//   - phi3_server_request_size_bytes: request and response sizes
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sizeBytes       *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of requests dispatched",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Time to build a response in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"route"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_size_bytes",
				Help:      "Size of requests read and response bodies written in bytes",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 8), // 16B to 256KB
			},
			[]string{"route", "direction"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.sizeBytes,
	)

	return rm
}

// RecordRequest records a single request.
func (rm *RequestMetrics) RecordRequest(route, method, status string, duration time.Duration, reqBytes, respBytes int) {
	rm.requestsTotal.WithLabelValues(route, method, status).Inc()
	rm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
	rm.sizeBytes.WithLabelValues(route, "request").Observe(float64(reqBytes))
	rm.sizeBytes.WithLabelValues(route, "response").Observe(float64(respBytes))
}
