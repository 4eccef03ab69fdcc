package metrics

import (
	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the audit recorder and retention.
type AuditMetrics struct {
	writes *prometheus.CounterVec
	pruned prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "audit",
				Name:      "records_total",
				Help:      "Total number of audit records by outcome",
			},
			[]string{"outcome"},
		),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "audit",
			Name:      "records_pruned_total",
			Help:      "Total number of audit records removed by retention",
		}),
	}

	registry.MustRegister(am.writes, am.pruned)

	return am
}

// RecordWrite records an audit write outcome.
func (am *AuditMetrics) RecordWrite(outcome string) {
	am.writes.WithLabelValues(outcome).Inc()
}

// RecordPruned adds n to the pruned counter.
func (am *AuditMetrics) RecordPruned(n int64) {
	if n > 0 {
		am.pruned.Add(float64(n))
	}
}
