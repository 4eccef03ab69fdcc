package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"workspaces-inventory/phi3/pkg/config"
	"workspaces-inventory/phi3/pkg/telemetry/logging"
	"workspaces-inventory/phi3/pkg/telemetry/metrics"
	"workspaces-inventory/phi3/pkg/telemetry/tracing"
)

// Telemetry holds the process-wide logger, metrics collector and tracer.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
}

// New builds all three components from cfg and installs the logger as the
// slog default.
func New(cfg *config.Config, version string) (*Telemetry, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return &Telemetry{
		Logger:  logger,
		Metrics: metrics.NewCollector(&cfg.Metrics, nil),
		Tracer:  tracer,
	}, nil
}

// Shutdown flushes the tracer.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.Tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	return errors.Join(errs...)
}
