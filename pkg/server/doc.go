// Package server owns the listening socket and the accept loop.
//
// Each connection carries one request: the handler performs a single bounded
// read, hands the parsed request to a Dispatcher, writes the framed response
// and closes the connection. There is no keep-alive, no pool and no limit on
// concurrent connections. Read and write deadlines apply only when configured.
//
//	srv := server.New(&cfg.Server, dispatcher,
//	    server.WithLogger(logger),
//	    server.WithMetrics(collector),
//	    server.WithTracer(tracer),
//	)
//	if err := srv.Listen(ctx); err != nil {
//	    return err // *server.SetupError
//	}
//	return srv.Serve(ctx)
//
// Serve returns once ctx is cancelled without waiting for in-flight
// connections. Shutdown is the supervised alternative: it stops accepting and
// waits for handlers until its own context expires.
package server
