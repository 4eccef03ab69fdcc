// Package telemetry bundles the service's logging, metrics and tracing.
//
//	tel, err := telemetry.New(cfg, version.Version)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.Logger.Info("listening", "address", addr)
//	tel.Metrics.RecordRequest("health", "GET", 200, d, 40, 20)
//	ctx, span := tel.Tracer.Start(ctx, tracing.SpanConnection)
//
// The subpackages can also be used on their own.
package telemetry
