package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"workspaces-inventory/phi3/pkg/config"
	"workspaces-inventory/phi3/pkg/telemetry/logging"
	"workspaces-inventory/phi3/pkg/telemetry/metrics"
	"workspaces-inventory/phi3/pkg/telemetry/tracing"
	"workspaces-inventory/phi3/pkg/wire"
)

// Accept backoff bounds for temporary accept errors.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Dispatcher builds the response for one request. *router.Dispatcher
// implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *wire.Request) *wire.Response
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// Server accepts TCP connections and answers exactly one request on each.
//
// Every accepted connection is handled on its own goroutine with no cap. The
// handler reads once, dispatches, writes one framed response and closes the
// connection, also when the dispatcher panics.
type Server struct {
	config     *config.ServerConfig
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Collector
	tracer     *tracing.Tracer

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	conns    sync.WaitGroup
}

// New creates a server. It does not bind until Listen.
func New(cfg *config.ServerConfig, d Dispatcher, opts ...Option) *Server {
	s := &Server{
		config:     cfg,
		dispatcher: d,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Listen binds the listening socket with SO_REUSEADDR and SO_REUSEPORT set.
// Failures are returned as *SetupError.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("server is already listening on %s", s.listener.Addr())
	}

	addr := s.config.Address()
	lc := net.ListenConfig{Control: controlReuse}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		stage := StageListen
		var soe *sockoptError
		if errors.As(err, &soe) {
			stage = StageSockopt
		}
		return &SetupError{Stage: stage, Address: addr, Err: err}
	}

	s.listener = ln
	s.closing = false
	s.logger.Info("listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until ctx is done or Shutdown is called, then
// returns nil. Accept errors are logged and the loop continues. In-flight
// connections are not waited for; use Shutdown for that.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { s.closeListener() })
	defer stop()

	// Handlers outlive a cancelled Serve context; only Shutdown waits for them.
	connCtx := context.WithoutCancel(ctx)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				return nil
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			s.metrics.RecordAcceptError()
			s.logger.Warn("accept failed",
				"error", err,
				"retry_in", backoff,
			)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.track() {
			conn.Close()
			return nil
		}
		go s.handle(connCtx, conn)
	}
}

// Shutdown closes the listener and waits for in-flight connections until ctx is
// done. It returns ctx.Err() if connections were still open.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeListener()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown timed out with connections in flight")
		return ctx.Err()
	}
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil || s.closing {
		return
	}
	s.closing = true
	if err := s.listener.Close(); err != nil {
		s.logger.Warn("failed to close listener", "error", err)
	}
}

// track registers a connection with Shutdown. It fails once the listener is
// closing so that no Add races the Wait.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns.Add(1)
	return true
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	connID := uuid.New().String()
	ctx = logging.WithConnID(ctx, connID)

	ctx, span := s.tracer.Start(ctx, tracing.SpanConnection, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	tracing.SetConnectionAttributes(span, connID, conn.RemoteAddr().String())

	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordConnectionError("panic")
			tracing.SetError(span, fmt.Errorf("panic: %v", r))
			s.logger.ErrorContext(ctx, "panic in connection handler",
				"error", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	if s.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}
	req, err := wire.ReadRequest(conn, s.config.ReadBufferSize)
	if err != nil {
		s.metrics.RecordConnectionError("read")
		s.logger.DebugContext(ctx, "read failed", "error", err)
	}

	resp := s.dispatcher.Dispatch(ctx, req)

	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	if _, err := resp.WriteTo(conn); err != nil {
		s.metrics.RecordConnectionError("write")
		tracing.SetError(span, err)
		s.logger.DebugContext(ctx, "write failed", "error", err)
	}
}
