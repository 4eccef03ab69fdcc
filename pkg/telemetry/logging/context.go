package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// ConnIDKey is the context key for connection ids.
	ConnIDKey contextKey = "conn_id"

	// RouteKey is the context key for the matched route.
	RouteKey contextKey = "route"

	// TraceIDKey is the context key for trace ids.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span ids.
	SpanIDKey contextKey = "span_id"
)

// WithConnID adds a connection id to the context.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ConnIDKey, id)
}

// GetConnID retrieves the connection id from the context.
func GetConnID(ctx context.Context) string {
	id, _ := ctx.Value(ConnIDKey).(string)
	return id
}

// WithRoute adds the matched route name to the context.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

// GetRoute retrieves the route name from the context.
func GetRoute(ctx context.Context) string {
	route, _ := ctx.Value(RouteKey).(string)
	return route
}

// WithTraceID adds a trace id to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithSpanID adds a span id to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span id from the context.
func GetSpanID(ctx context.Context) string {
	spanID, _ := ctx.Value(SpanIDKey).(string)
	return spanID
}

// contextAttrs extracts the known fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if v := GetConnID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(ConnIDKey), v))
	}
	if v := GetRoute(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RouteKey), v))
	}
	if v := GetTraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(TraceIDKey), v))
	}
	if v := GetSpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(SpanIDKey), v))
	}

	return attrs
}
