package compression

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	operations    metric.Int64Counter
	duration      metric.Float64Histogram
	ratio         metric.Float64Histogram
	units         metric.Int64Histogram
	embedFailures metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)

	m.operations, err = meter.Int64Counter(
		"docref.compression.operations_total",
		metric.WithDescription("Compression calls by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"docref.compression.duration_seconds",
		metric.WithDescription("Time spent in Compress, embedding included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	m.ratio, err = meter.Float64Histogram(
		"docref.compression.ratio",
		metric.WithDescription("Achieved output/input length ratio of successful compressions"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratio histogram: %w", err)
	}

	m.units, err = meter.Int64Histogram(
		"docref.compression.units",
		metric.WithDescription("Units produced by chunking"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create units histogram: %w", err)
	}

	m.embedFailures, err = meter.Int64Counter(
		"docref.compression.embed_failures_total",
		metric.WithDescription("Units dropped because their embedding failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embed failures counter: %w", err)
	}

	return &m, nil
}

func (m *metrics) record(ctx context.Context, res *Result, granularity int, elapsed time.Duration) {
	outcome := metric.WithAttributes(attribute.String("outcome", string(res.Outcome)))
	m.operations.Add(ctx, 1, outcome)
	m.duration.Record(ctx, elapsed.Seconds(), outcome)

	if res.Units > 0 {
		m.units.Record(ctx, int64(res.Units),
			metric.WithAttributes(attribute.Int("granularity", granularity)))
	}
	if res.Trace.Has(TagEmbeddings) && res.Units > res.Embedded {
		m.embedFailures.Add(ctx, int64(res.Units-res.Embedded))
	}
	if res.Outcome.Compressed() {
		m.ratio.Record(ctx, res.Ratio)
	}
}
