package metrics

import (
	"time"

	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks completion engine calls.
type EngineMetrics struct {
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	tokensTotal        *prometheus.CounterVec
}

// NewEngineMetrics creates and registers engine metrics.
func NewEngineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "engine",
				Name:      "completions_total",
				Help:      "Total number of completions by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
		completionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "engine",
				Name:      "completion_duration_seconds",
				Help:      "Duration of completions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"engine"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "engine",
				Name:      "tokens_total",
				Help:      "Total number of generated tokens (estimated where not reported)",
			},
			[]string{"engine"},
		),
	}

	registry.MustRegister(em.completionsTotal, em.completionDuration, em.tokensTotal)

	return em
}

// RecordCompletion records a finished completion.
func (em *EngineMetrics) RecordCompletion(engine, outcome string, duration time.Duration, tokens int) {
	em.completionsTotal.WithLabelValues(engine, outcome).Inc()
	em.completionDuration.WithLabelValues(engine).Observe(duration.Seconds())
	if tokens > 0 {
		em.tokensTotal.WithLabelValues(engine).Add(float64(tokens))
	}
}
