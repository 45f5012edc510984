// Package telemetry provides OpenTelemetry instrumentation for docref.
//
// Traces and metrics are exported over OTLP (gRPC or HTTP/protobuf) when a
// collector is configured. Independently, a Prometheus reader backs the
// /metrics endpoint so compression and embedding counters are scrapeable
// without a collector.
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	svc := compression.NewService(cfg, embedder,
//	    compression.WithTracer(tel.Tracer("docref.compression")),
//	    compression.WithMeter(tel.Meter("docref.compression")))
//
// Provider failures do not abort startup. The instance reports itself as
// degraded through Health and hands out the global no-op providers.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
