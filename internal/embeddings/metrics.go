package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/docref/internal/embeddings"

// Metrics records per-call embedding instruments.
type Metrics struct {
	meter       metric.Meter
	logger      *zap.Logger
	duration    metric.Float64Histogram
	inputLength metric.Int64Histogram
	errors      metric.Int64Counter
}

// NewMetrics creates embedding instruments on meter. Instruments that fail
// to register are logged and skipped.
func NewMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	m := &Metrics{meter: meter, logger: logger}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"docref.embedding.duration_seconds",
		metric.WithDescription("Duration of single embedding calls, labeled by provider and result"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.inputLength, err = m.meter.Int64Histogram(
		"docref.embedding.input_bytes",
		metric.WithDescription("Size of texts sent for embedding"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(16, 64, 256, 1024, 4096, 16384, 65536),
	)
	if err != nil {
		m.logger.Warn("failed to create input length histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"docref.embedding.errors_total",
		metric.WithDescription("Failed embedding calls by provider and reason"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}
}

// RecordCall records one embedding call. reason is empty on success.
func (m *Metrics) RecordCall(ctx context.Context, provider string, inputBytes int, d time.Duration, reason string) {
	result := "ok"
	if reason != "" {
		result = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("result", result),
	)

	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), attrs)
	}
	if m.inputLength != nil {
		m.inputLength.Record(ctx, int64(inputBytes), metric.WithAttributes(attribute.String("provider", provider)))
	}
	if reason != "" && m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("reason", reason),
		))
	}
}
