// Package tracing provides OpenTelemetry tracing for the phi3 service.
//
// Every accepted connection opens a root span, phi3.connection. Dispatching
// the request opens phi3.dispatch beneath it, and a completion request adds
// phi3.completion around the engine call:
//
//	phi3.connection  (phi3.conn_id, network.peer.address)
//	└── phi3.dispatch  (http.request.method, url.path, phi3.route, http.response.status_code)
//	    └── phi3.completion  (phi3.engine, phi3.prompt.bytes, phi3.tokens)
//
// The wire protocol does not parse headers, so no trace context is
// propagated from clients.
//
// Spans are exported over OTLP gRPC when tracing.enabled is set. Otherwise the
// tracer is a noop and costs close to nothing. Sampling is parent based with a
// configurable root strategy: always, never, or ratio.
package tracing
