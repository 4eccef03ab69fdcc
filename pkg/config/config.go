package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration structure for the phi3 service.
// Every section has working defaults, so a zero Config passed through
// ApplyDefaults is a valid configuration.
type Config struct {
	// Server contains the TCP listener and per-connection settings.
	Server ServerConfig `yaml:"server"`

	// Engine selects and configures the completion backend.
	Engine EngineConfig `yaml:"engine"`

	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing settings.
	Tracing TracingConfig `yaml:"tracing"`

	// Audit contains request audit trail settings.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains configuration for the connection acceptor.
type ServerConfig struct {
	// Host is the interface to bind. Default: "0.0.0.0" (all interfaces)
	Host string `yaml:"host"`

	// Port is the TCP port to bind. 0 lets the operating system choose.
	// Default: 11434
	Port int `yaml:"port"`

	// ReadBufferSize is the size of the single read performed per connection.
	// Bytes beyond it are never read.
	// Default: 4096
	ReadBufferSize int `yaml:"read_buffer_size"`

	// ReadTimeout bounds the single read per connection. Zero blocks forever.
	// Default: 0
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds the response write. Zero blocks forever.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout, when > 0, makes a signal-triggered stop wait up to this
	// long for in-flight connections. Zero stops without waiting.
	// Default: 0
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// StrictRoutes requires the request path (query stripped) to equal the route
	// path instead of merely starting with it.
	// Default: false
	StrictRoutes bool `yaml:"strict_routes"`
}

// Address returns the host:port string to listen on.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// EngineConfig contains configuration for the completion engine.
type EngineConfig struct {
	// Backend selects the engine implementation.
	// Options: "placeholder", "llamacpp"
	// Default: "placeholder"
	Backend string `yaml:"backend"`

	// Serialize runs at most one completion at a time. Use it for backends
	// holding shared state that is not safe for concurrent use.
	// Default: false
	Serialize bool `yaml:"serialize"`

	// Timeout bounds a single completion. Zero means no bound.
	// Default: 0
	Timeout time.Duration `yaml:"timeout"`

	// LlamaCpp configures the llama.cpp subprocess backend.
	LlamaCpp LlamaCppConfig `yaml:"llamacpp"`
}

// LlamaCppConfig configures the llama.cpp backend.
type LlamaCppConfig struct {
	// Binary is the path to the llama.cpp CLI.
	// Default: "/usr/local/bin/main"
	Binary string `yaml:"binary"`

	// ModelPath is the GGUF model file.
	// Default: "/models/Phi-3-mini-128k-instruct-Q4_K_M.gguf"
	ModelPath string `yaml:"model_path"`

	// Threads is the number of inference threads.
	// Default: 4
	Threads int `yaml:"threads"`

	// ContextSize is the model context window.
	// Default: 8192
	ContextSize int `yaml:"context_size"`

	// MaxTokens is the number of tokens to generate.
	// Default: 512
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature.
	// Default: 0.1
	Temperature float64 `yaml:"temperature"`

	// SystemPrompt, when set, is placed before the user prompt.
	// Default: ""
	SystemPrompt string `yaml:"system_prompt"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled serves the metrics endpoint on ListenAddress. Metrics are
	// collected regardless; this only controls exposure.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the metrics HTTP listener. It is separate
	// from the service port, which answers only the service routes.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "phi3"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "server"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets, in seconds, for request and
	// completion durations.
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds span export calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "phi3"
	ServiceName string `yaml:"service_name"`
}

// AuditConfig contains configuration for the request audit trail.
type AuditConfig struct {
	// Enabled turns on audit recording.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// AsyncBuffer is the capacity of the recorder queue.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds enqueueing and storing a single record.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention configures pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite storage configuration.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int `yaml:"max_idle_conns"`

	// DisableWAL turns off write-ahead logging.
	// Default: false
	DisableWAL bool `yaml:"disable_wal"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains audit retention configuration.
type RetentionConfig struct {
	// Days is how long records are kept. 0 keeps records forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords caps the number of stored records. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a standard 5-field cron expression. Empty disables
	// scheduled pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}
