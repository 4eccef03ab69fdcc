// Package metrics provides Prometheus metrics for the phi3 service.
//
// A Collector owns a dedicated registry with request, engine, connection and
// audit metrics plus the Go runtime and process collectors:
//
//	phi3_server_requests_total{route="health",method="GET",status="200"}
//	phi3_server_request_duration_seconds{route="completion"}
//	phi3_server_connections_open
//	phi3_server_accept_errors_total
//	phi3_engine_completions_total{engine="placeholder",outcome="success"}
//	phi3_audit_records_total{outcome="stored"}
//
// Metrics are always recorded. They are only exposed when metrics.enabled is
// set, on metrics.listen_address, because the service port must answer 404 to
// anything but its own routes:
//
//	srv, err := collector.Listen(cfg.ListenAddress, cfg.Path, logger)
//	if err != nil {
//	    return err
//	}
//	go srv.Serve(ctx)
package metrics
