package router

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/engine"
	"workspaces-inventory/phi3/pkg/jsonfield"
	"workspaces-inventory/phi3/pkg/telemetry/logging"
	"workspaces-inventory/phi3/pkg/telemetry/metrics"
	"workspaces-inventory/phi3/pkg/telemetry/tracing"
	"workspaces-inventory/phi3/pkg/wire"
)

// PromptField is the JSON field read from completion bodies.
const PromptField = "prompt"

var (
	healthBody       = []byte(`{"status":"healthy"}`)
	inferenceFailure = []byte(`{"error":"inference failed"}`)
)

// Deps are the optional collaborators of a Dispatcher. Any of them may be nil.
type Deps struct {
	Recorder *audit.Recorder
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
	Logger   *slog.Logger

	// StrictRoutes requires exact path equality instead of a prefix match.
	StrictRoutes bool
}

// Dispatcher turns a parsed request into exactly one response.
// It is safe for concurrent use.
type Dispatcher struct {
	engine   engine.Engine
	recorder *audit.Recorder
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	logger   *slog.Logger
	strict   bool
}

// New creates a dispatcher that sends completions to eng.
func New(eng engine.Engine, deps Deps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine:   eng,
		recorder: deps.Recorder,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		logger:   logger.With("component", "router"),
		strict:   deps.StrictRoutes,
	}
}

// Dispatch routes req and returns its response. It never returns nil and never
// produces a 400: unmatched requests get a 404 and a missing prompt is sent to
// the engine as an empty string.
func (d *Dispatcher) Dispatch(ctx context.Context, req *wire.Request) *wire.Response {
	start := time.Now()

	ctx, span := d.tracer.Start(ctx, tracing.SpanDispatch, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	tracing.SetRequestAttributes(span, req.Method, req.Path, len(req.Raw))

	name := Match(req, d.strict)
	ctx = logging.WithRoute(ctx, name)
	if id := tracing.TraceID(ctx); id != "" {
		ctx = logging.WithTraceID(ctx, id)
		ctx = logging.WithSpanID(ctx, tracing.SpanID(ctx))
	}

	record := &audit.Record{
		ConnID: logging.GetConnID(ctx),
		Time:   start,
		Method: req.Method,
		Path:   req.Path,
		Route:  name,
	}

	var resp *wire.Response
	switch name {
	case audit.RouteHealth:
		resp = wire.JSON(http.StatusOK, healthBody)
	case audit.RouteCompletion:
		resp = d.complete(ctx, req, record)
	default:
		resp = wire.NotFound()
	}

	duration := time.Since(start)
	tracing.SetResponseAttributes(span, name, resp.Status, len(resp.Body))
	d.metrics.RecordRequest(name, req.Method, resp.Status, duration, len(req.Raw), len(resp.Body))

	record.Status = resp.Status
	record.ResponseBytes = len(resp.Body)
	record.Duration = duration
	if err := d.recorder.Record(ctx, record); err != nil {
		d.logger.WarnContext(ctx, "audit record dropped", "error", err)
	}

	d.logger.InfoContext(ctx, "request dispatched",
		"method", req.Method,
		"status", resp.Status,
		"duration_ms", duration.Milliseconds(),
	)

	return resp
}

func (d *Dispatcher) complete(ctx context.Context, req *wire.Request, record *audit.Record) *wire.Response {
	prompt := jsonfield.ExtractBytes(req.Body, PromptField)
	eng := engine.Resolve(d.engine)
	name := eng.Name()

	record.Engine = name
	record.PromptBytes = len(prompt)
	record.PromptHash = audit.HashPrompt(prompt)

	ctx, span := d.tracer.Start(ctx, tracing.SpanCompletion)
	defer span.End()

	start := time.Now()
	result, err := eng.Complete(ctx, prompt)
	duration := time.Since(start)

	tracing.SetCompletionAttributes(span, name, len(prompt), result.Tokens)
	if err != nil {
		tracing.SetError(span, err)
		d.metrics.RecordCompletion(name, "error", duration, 0)
		record.Error = err.Error()
		d.logger.ErrorContext(ctx, "completion failed",
			"engine", name,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return wire.JSON(http.StatusInternalServerError, inferenceFailure)
	}
	tracing.SetStatus(span, nil)
	d.metrics.RecordCompletion(name, "success", duration, result.Tokens)

	body, err := encodeCompletion(result.Text)
	if err != nil {
		tracing.SetError(span, err)
		record.Error = err.Error()
		d.logger.ErrorContext(ctx, "failed to encode completion", "error", err)
		return wire.JSON(http.StatusInternalServerError, inferenceFailure)
	}
	return wire.JSON(http.StatusOK, body)
}

// encodeCompletion renders {"response":text}. HTML characters are left as is
// and the encoder's trailing newline is dropped.
func encodeCompletion(text string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(struct {
		Response string `json:"response"`
	}{Response: text}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
