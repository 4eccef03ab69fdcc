package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanConnection = "phi3.connection"
	SpanDispatch   = "phi3.dispatch"
	SpanCompletion = "phi3.completion"
)

// Attribute keys. Standard keys follow the OpenTelemetry semantic
// conventions; service-specific ones use the "phi3." prefix.
const (
	AttrConnID        = "phi3.conn_id"
	AttrRoute         = "phi3.route"
	AttrEngine        = "phi3.engine"
	AttrPromptBytes   = "phi3.prompt.bytes"
	AttrTokens        = "phi3.tokens"
	AttrRequestBytes  = "phi3.request.bytes"
	AttrResponseBytes = "phi3.response.bytes"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPStatus = "http.response.status_code"
	AttrURLPath    = "url.path"
	AttrPeerAddr   = "network.peer.address"
)

// SetConnectionAttributes sets attributes describing an accepted connection.
func SetConnectionAttributes(span trace.Span, connID, peer string) {
	span.SetAttributes(
		attribute.String(AttrConnID, connID),
		attribute.String(AttrPeerAddr, peer),
	)
}

// SetRequestAttributes sets attributes describing a parsed request.
func SetRequestAttributes(span trace.Span, method, path string, size int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrURLPath, path),
		attribute.Int(AttrRequestBytes, size),
	)
}

// SetResponseAttributes sets the route and outcome of a dispatch.
func SetResponseAttributes(span trace.Span, route string, status, bodySize int) {
	span.SetAttributes(
		attribute.String(AttrRoute, route),
		attribute.Int(AttrHTTPStatus, status),
		attribute.Int(AttrResponseBytes, bodySize),
	)
}

// SetCompletionAttributes sets attributes describing an engine call. The
// prompt itself is never recorded.
func SetCompletionAttributes(span trace.Span, engine string, promptBytes, tokens int) {
	span.SetAttributes(
		attribute.String(AttrEngine, engine),
		attribute.Int(AttrPromptBytes, promptBytes),
		attribute.Int(AttrTokens, tokens),
	)
}
