package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "PHI3_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PHI3_SECTION_FIELD (e.g., PHI3_SERVER_PORT).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults, so the service runs
// without any configuration file at all.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_HOST", &cfg.Server.Host)
	envInt("SERVER_PORT", &cfg.Server.Port)
	envInt("SERVER_READ_BUFFER_SIZE", &cfg.Server.ReadBufferSize)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envBool("SERVER_STRICT_ROUTES", &cfg.Server.StrictRoutes)

	// Engine overrides
	envString("ENGINE_BACKEND", &cfg.Engine.Backend)
	envBool("ENGINE_SERIALIZE", &cfg.Engine.Serialize)
	envDuration("ENGINE_TIMEOUT", &cfg.Engine.Timeout)
	envString("ENGINE_LLAMACPP_BINARY", &cfg.Engine.LlamaCpp.Binary)
	envString("ENGINE_MODEL_PATH", &cfg.Engine.LlamaCpp.ModelPath)
	envString("ENGINE_LLAMACPP_MODEL_PATH", &cfg.Engine.LlamaCpp.ModelPath)
	envInt("ENGINE_LLAMACPP_THREADS", &cfg.Engine.LlamaCpp.Threads)
	envInt("ENGINE_LLAMACPP_CONTEXT_SIZE", &cfg.Engine.LlamaCpp.ContextSize)
	envInt("ENGINE_LLAMACPP_MAX_TOKENS", &cfg.Engine.LlamaCpp.MaxTokens)
	envFloat("ENGINE_LLAMACPP_TEMPERATURE", &cfg.Engine.LlamaCpp.Temperature)
	envString("ENGINE_LLAMACPP_SYSTEM_PROMPT", &cfg.Engine.LlamaCpp.SystemPrompt)

	// Logging overrides
	envString("LOGGING_LEVEL", &cfg.Logging.Level)
	envString("LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("LOGGING_ADD_SOURCE", &cfg.Logging.AddSource)

	// Metrics overrides
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	envString("METRICS_LISTEN_ADDRESS", &cfg.Metrics.ListenAddress)
	envString("METRICS_PATH", &cfg.Metrics.Path)

	// Tracing overrides
	envBool("TRACING_ENABLED", &cfg.Tracing.Enabled)
	envString("TRACING_SAMPLER", &cfg.Tracing.Sampler)
	envFloat("TRACING_SAMPLE_RATIO", &cfg.Tracing.SampleRatio)
	envString("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	envBool("TRACING_INSECURE", &cfg.Tracing.Insecure)
	envString("TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)

	// Audit overrides
	envBool("AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("AUDIT_BACKEND", &cfg.Audit.Backend)
	envString("AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	envInt("AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)
	envString("AUDIT_RETENTION_PRUNE_SCHEDULE", &cfg.Audit.Retention.PruneSchedule)
	if val := os.Getenv(EnvPrefix + "AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
