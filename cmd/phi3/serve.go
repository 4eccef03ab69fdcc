package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/audit/retention"
	"workspaces-inventory/phi3/pkg/audit/storage"
	"workspaces-inventory/phi3/pkg/cli"
	"workspaces-inventory/phi3/pkg/config"
	"workspaces-inventory/phi3/pkg/engine"
	"workspaces-inventory/phi3/pkg/router"
	"workspaces-inventory/phi3/pkg/server"
	"workspaces-inventory/phi3/pkg/telemetry"
	"workspaces-inventory/phi3/pkg/telemetry/metrics"
)

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cfgFile); err != nil {
		return err
	}
	cfg := config.MustGetConfig()
	if len(args) == 1 {
		cfg.Server.Port = cli.ParsePort(args[0])
	}

	if rootFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	svc, err := newService(cmd.Context(), cfg, config.ConfigPath())
	if err != nil {
		return err
	}
	defer svc.close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context(), svc.logger)
	defer stop()

	return svc.run(ctx)
}

// service holds every long-lived component of a running server.
type service struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger

	telemetry  *telemetry.Telemetry
	engine     *engine.Swappable
	store      audit.Storage
	recorder   *audit.Recorder
	pruner     *retention.Pruner
	metricsSrv *metrics.Server
	server     *server.Server
}

// newService builds all components and binds the service port. Anything built
// before a failure is released.
func newService(ctx context.Context, cfg *config.Config, configPath string) (svc *service, err error) {
	tel, err := telemetry.New(cfg, Version)
	if err != nil {
		return nil, cli.NewCommandError("serve", err)
	}

	svc = &service{
		cfg:        cfg,
		configPath: configPath,
		logger:     tel.Logger,
		telemetry:  tel,
	}
	defer func() {
		if err != nil {
			svc.close()
			svc = nil
		}
	}()

	eng, err := engine.New(cfg.Engine, tel.Logger)
	if err != nil {
		return svc, cli.NewCommandError("serve", err)
	}
	svc.engine = engine.NewSwappable(eng)

	if cfg.Audit.Enabled {
		svc.store, err = storage.New(&cfg.Audit)
		if err != nil {
			return svc, cli.NewCommandError("serve", err)
		}
		svc.recorder = audit.NewRecorder(svc.store, &cfg.Audit, tel.Metrics)
		svc.pruner = retention.NewPruner(svc.store, &cfg.Audit.Retention, tel.Metrics)
	}

	if cfg.Metrics.Enabled {
		svc.metricsSrv, err = tel.Metrics.Listen(cfg.Metrics.ListenAddress, cfg.Metrics.Path, tel.Logger)
		if err != nil {
			return svc, cli.NewCommandError("serve", err)
		}
	}

	dispatcher := router.New(svc.engine, router.Deps{
		Recorder:     svc.recorder,
		Metrics:      tel.Metrics,
		Tracer:       tel.Tracer,
		Logger:       tel.Logger,
		StrictRoutes: cfg.Server.StrictRoutes,
	})

	svc.server = server.New(&cfg.Server, dispatcher,
		server.WithLogger(tel.Logger),
		server.WithMetrics(tel.Metrics),
		server.WithTracer(tel.Tracer),
	)
	if err = svc.server.Listen(ctx); err != nil {
		return svc, err
	}

	svc.logger.Info("phi3 started",
		"version", Version,
		"address", svc.server.Addr().String(),
		"engine", svc.engine.Name(),
		"audit", cfg.Audit.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)
	return svc, nil
}

// addr returns the bound service address.
func (s *service) addr() net.Addr {
	return s.server.Addr()
}

// run serves until ctx is cancelled. It returns nil after cancellation and an
// error only if a component fails to start.
func (s *service) run(ctx context.Context) error {
	if s.metricsSrv != nil {
		go func() {
			if err := s.metricsSrv.Serve(ctx); err != nil {
				s.logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	if s.pruner != nil {
		if err := s.pruner.Start(ctx); err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("audit retention: %w", err))
		}
		if next := s.pruner.NextPruning(); next != nil {
			s.logger.Info("audit retention scheduled", "next_run", next.Format(time.RFC3339))
		}
	}

	if s.configPath != "" {
		w, err := config.NewWatcher(s.configPath, config.DefaultWatchDebounce, s.applyConfig, s.logger.With("component", "config"))
		if err != nil {
			s.logger.Warn("configuration hot reload disabled", "error", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					s.logger.Warn("configuration watcher stopped", "error", err)
				}
			}()
		}
	}

	if err := s.server.Serve(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	if d := s.cfg.Server.ShutdownTimeout; d > 0 {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), d)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("stopped with connections in flight", "error", err)
		}
	}
	return nil
}

// applyConfig hot-swaps the engine from a reloaded configuration. Other
// sections take effect on restart.
func (s *service) applyConfig(cfg *config.Config) {
	if cfg.Engine == s.cfg.Engine {
		s.logger.Info("configuration reloaded, engine unchanged; other changes apply on restart")
		if err := engine.Check(s.engine); err != nil {
			s.logger.Warn("current engine is not usable", "engine", s.engine.Name(), "error", err)
		}
		return
	}

	eng, err := engine.New(cfg.Engine, s.logger)
	if err != nil {
		s.logger.Error("reloaded engine configuration rejected, keeping current engine", "error", err)
		return
	}
	old := s.engine.Swap(eng)
	s.cfg.Engine = cfg.Engine
	s.logger.Info("engine replaced from reloaded configuration",
		"previous", old.Name(),
		"current", eng.Name(),
	)
}

// close releases components in reverse order of construction.
func (s *service) close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Tracing.Timeout)
	defer cancel()

	if s.server != nil {
		// Serve may not have run; closing the listener is enough here.
		_ = s.server.Shutdown(expired())
	}
	if s.pruner != nil {
		s.pruner.Stop()
	}
	if s.recorder != nil {
		_ = s.recorder.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close audit storage", "error", err)
		}
	}
	if err := s.telemetry.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.logger.Error("telemetry shutdown failed", "error", err)
	}
}

// expired returns an already cancelled context.
func expired() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
