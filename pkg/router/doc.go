// Package router maps a parsed request to its response.
//
// The dispatch table is fixed:
//
//	GET  /health*     -> 200 {"status":"healthy"}
//	POST /completion* -> 200 {"response":"<engine text>"}
//	anything else     -> 404, empty body
//
// Paths match by prefix unless strict routing is enabled. The completion route
// reads the "prompt" field with jsonfield and hands it to the engine; an engine
// error becomes 500 {"error":"inference failed"}.
//
// Each dispatch is traced, counted, logged and, when a recorder is configured,
// written to the audit trail.
package router
