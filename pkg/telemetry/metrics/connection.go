package metrics

import (
	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ConnectionMetrics tracks the accept loop and per-connection goroutines.
type ConnectionMetrics struct {
	accepted     prometheus.Counter
	open         prometheus.Gauge
	acceptErrors prometheus.Counter
	errors       *prometheus.CounterVec
}

// NewConnectionMetrics creates and registers connection metrics.
func NewConnectionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConnectionMetrics {
	cm := &ConnectionMetrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted connections",
		}),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_open",
			Help:      "Number of connections currently being handled",
		}),
		acceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "accept_errors_total",
			Help:      "Total number of failed accepts",
		}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "connection_errors_total",
				Help:      "Total number of connection failures by stage",
			},
			[]string{"stage"},
		),
	}

	registry.MustRegister(cm.accepted, cm.open, cm.acceptErrors, cm.errors)

	return cm
}

// Opened records an accepted connection.
func (cm *ConnectionMetrics) Opened() {
	cm.accepted.Inc()
	cm.open.Inc()
}

// Closed records a closed connection.
func (cm *ConnectionMetrics) Closed() {
	cm.open.Dec()
}

// AcceptError records a failed accept.
func (cm *ConnectionMetrics) AcceptError() {
	cm.acceptErrors.Inc()
}

// Error records a per-connection failure.
func (cm *ConnectionMetrics) Error(stage string) {
	cm.errors.WithLabelValues(stage).Inc()
}
