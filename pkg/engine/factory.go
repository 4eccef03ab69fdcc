package engine

import (
	"fmt"
	"log/slog"

	"workspaces-inventory/phi3/pkg/config"
)

// New builds the engine selected by cfg.Backend and applies the Serialize and
// Timeout settings.
//
// Supported backends:
//   - "placeholder" (or empty): the stub engine
//   - "llamacpp": the llama.cpp subprocess engine
func New(cfg config.EngineConfig, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		e   Engine
		err error
	)

	switch cfg.Backend {
	case "", "placeholder":
		e = NewPlaceholder()
	case "llamacpp":
		e, err = NewLlamaCpp(cfg.LlamaCpp, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported engine backend: %q", cfg.Backend)
	}

	if cfg.Serialize {
		e = NewSerialized(e)
	}
	e = NewTimeout(e, cfg.Timeout)

	logger.Debug("engine created",
		"backend", e.Name(),
		"serialize", cfg.Serialize,
		"timeout", cfg.Timeout,
	)

	return e, nil
}
