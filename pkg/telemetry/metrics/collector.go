package metrics

import (
	"strconv"
	"time"

	"workspaces-inventory/phi3/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the service's Prometheus registry and every metric in it.
// Recording is always on; config.MetricsConfig.Enabled only decides whether
// the registry is exposed over HTTP.
//
// All methods are safe for concurrent use and safe to call on a nil
// *Collector, which records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics    *RequestMetrics
	engineMetrics     *EngineMetrics
	connectionMetrics *ConnectionMetrics
	auditMetrics      *AuditMetrics
}

// NewCollector creates a collector and registers its metrics, plus the Go
// runtime and process collectors, with registry. If registry is nil a new one
// is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
	)

	return &Collector{
		config:            cfg,
		registry:          registry,
		requestMetrics:    NewRequestMetrics(cfg, registry),
		engineMetrics:     NewEngineMetrics(cfg, registry),
		connectionMetrics: NewConnectionMetrics(cfg, registry),
		auditMetrics:      NewAuditMetrics(cfg, registry),
	}
}

// RecordRequest records a dispatched request.
//
// Parameters:
//   - route: matched route ("health", "completion", "not_found")
//   - method: request method as read from the wire
//   - status: HTTP status code sent
//   - duration: time from dispatch start to response built
//   - reqBytes, respBytes: raw request and framed body sizes
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration, reqBytes, respBytes int) {
	if c == nil {
		return
	}
	c.requestMetrics.RecordRequest(route, normalizeMethod(method), strconv.Itoa(status), duration, reqBytes, respBytes)
}

// RecordCompletion records one engine call. outcome is "success" or "error".
func (c *Collector) RecordCompletion(engine, outcome string, duration time.Duration, tokens int) {
	if c == nil {
		return
	}
	c.engineMetrics.RecordCompletion(engine, outcome, duration, tokens)
}

// ConnectionOpened increments the open connection gauge and accepted counter.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionMetrics.Opened()
}

// ConnectionClosed decrements the open connection gauge.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionMetrics.Closed()
}

// RecordAcceptError counts a failed accept.
func (c *Collector) RecordAcceptError() {
	if c == nil {
		return
	}
	c.connectionMetrics.AcceptError()
}

// RecordConnectionError counts a per-connection failure by stage ("read",
// "write", "panic").
func (c *Collector) RecordConnectionError(stage string) {
	if c == nil {
		return
	}
	c.connectionMetrics.Error(stage)
}

// RecordAuditWrite records the outcome of persisting an audit record
// ("stored", "dropped", "failed").
func (c *Collector) RecordAuditWrite(outcome string) {
	if c == nil {
		return
	}
	c.auditMetrics.RecordWrite(outcome)
}

// RecordAuditPruned records records removed by retention.
func (c *Collector) RecordAuditPruned(n int64) {
	if c == nil {
		return
	}
	c.auditMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// normalizeMethod keeps label cardinality bounded when clients send garbage.
func normalizeMethod(m string) string {
	switch m {
	case "GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH":
		return m
	case "":
		return "none"
	default:
		return "other"
	}
}
