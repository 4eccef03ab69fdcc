package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 11434
	DefaultReadBufferSize = 4096

	// Engine defaults
	DefaultEngineBackend       = "placeholder"
	DefaultLlamaCppBinary      = "/usr/local/bin/main"
	DefaultLlamaCppModelPath   = "/models/Phi-3-mini-128k-instruct-Q4_K_M.gguf"
	DefaultLlamaCppThreads     = 4
	DefaultLlamaCppContextSize = 8192
	DefaultLlamaCppMaxTokens   = 512
	DefaultLlamaCppTemperature = 0.1

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Metrics defaults
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "phi3"
	DefaultMetricsSubsystem     = "server"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "phi3"

	// Audit defaults
	DefaultAuditBackend          = "memory"
	DefaultAuditAsyncBuffer      = 1000
	DefaultAuditWriteTimeout     = 5 * time.Second
	DefaultAuditSQLitePath       = "data/audit.db"
	DefaultAuditSQLiteMaxOpen    = 4
	DefaultAuditSQLiteMaxIdle    = 2
	DefaultAuditSQLiteBusy       = 5 * time.Second
	DefaultAuditRetentionDays    = 30
	DefaultAuditRetentionPruning = "0 3 * * *"
)

// DefaultDurationBuckets are histogram buckets covering health checks through
// slow completions.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent. Port 0 in a file is indistinguishable from an absent port
// and is defaulted; the command line can still force port 0.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadBufferSize == 0 {
		cfg.Server.ReadBufferSize = DefaultReadBufferSize
	}

	// Engine defaults
	if cfg.Engine.Backend == "" {
		cfg.Engine.Backend = DefaultEngineBackend
	}
	applyLlamaCppDefaults(&cfg.Engine.LlamaCpp)

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 && cfg.Tracing.Sampler == "ratio" {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpen
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdle
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusy
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = DefaultAuditRetentionPruning
	}
}

func applyLlamaCppDefaults(cfg *LlamaCppConfig) {
	if cfg.Binary == "" {
		cfg.Binary = DefaultLlamaCppBinary
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultLlamaCppModelPath
	}
	if cfg.Threads == 0 {
		cfg.Threads = DefaultLlamaCppThreads
	}
	if cfg.ContextSize == 0 {
		cfg.ContextSize = DefaultLlamaCppContextSize
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultLlamaCppMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultLlamaCppTemperature
	}
}
