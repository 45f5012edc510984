// Package logging provides structured logging for docref.
//
// The package wraps Zap with:
//   - A Trace level (-2, below Debug) for per-unit pipeline detail
//   - Dual output (stdout + OpenTelemetry log bridge)
//   - Context field injection (trace_id, span_id, request.id, reference.name)
//   - Secret redaction at the encoder, by field name and by value pattern
//   - Level-aware sampling (errors are never sampled)
//
// Usage:
//
//	logger, err := logging.NewLogger(logging.FromSettings("info", "json"), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req-1")
//	ctx = logging.WithReference(ctx, "handbook")
//	logger.Info(ctx, "reference expanded", zap.Int("chunks", 12))
//
// Library packages accept a plain *zap.Logger; pass Logger.Underlying() to them.
//
// Tests use TestLogger, which records every entry for assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "compressed", zap.String("outcome", "compressed"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "compressed")
//	tl.AssertField(t, "compressed", "outcome", "compressed")
package logging
