// Package logging builds the service's log/slog logger.
//
// New returns a JSON or text logger whose handler copies connection and trace
// identifiers from the context onto each record, so handlers only need to use
// the *Context logging methods:
//
//	ctx = logging.WithConnID(ctx, connID)
//	logger.InfoContext(ctx, "request handled", "status", 200)
//	// {"level":"INFO","msg":"request handled","status":200,"conn_id":"..."}
package logging
