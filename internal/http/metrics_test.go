package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fyrsmithlabs/docref/internal/reference"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetrics_MetricsMiddleware(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := NewHTTPMetrics(zap.NewNop(), mp.Meter(httpInstrumentationName))

	e := echo.New()
	e.Use(m.MetricsMiddleware())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/v1/compress", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad")
	})

	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/compress", nil),
	} {
		e.ServeHTTP(httptest.NewRecorder(), r)
	}

	metrics := collect(t, reader)

	requests, ok := metrics["docref.http.requests_total"]
	require.True(t, ok, "requests counter missing")
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[status.AsInt64()] += dp.Value
	}
	assert.Equal(t, map[int64]int64{200: 2, 400: 1}, byStatus)

	dur, ok := metrics["docref.http.request_duration_seconds"]
	require.True(t, ok, "duration histogram missing")
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	_, ok = metrics["docref.http.response_size_bytes"]
	assert.True(t, ok, "response size histogram missing")

	active, ok := metrics["docref.http.active_requests"]
	require.True(t, ok)
	gauge, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var inflight int64
	for _, dp := range gauge.DataPoints {
		inflight += dp.Value
	}
	assert.Zero(t, inflight)
}

func TestServer_RecordsRouteTemplate(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))

	server, err := NewServer(nil, &reference.Expander{Resolver: testDocs()}, zap.NewNop(), nil,
		WithMeter(mp.Meter(httpInstrumentationName)))
	require.NoError(t, err)

	server.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	sum := collect(t, reader)["docref.http.requests_total"].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	endpoint, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("endpoint"))
	assert.Equal(t, "/health", endpoint.AsString())
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unmatched", normalizePath(""))
	assert.Equal(t, "/api/v1/expand", normalizePath("/api/v1/expand"))
}
