package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fyrsmithlabs/docref/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestNew_DefaultsServePrometheus(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(context.Background()) }()

	assert.False(t, tel.IsEnabled())
	assert.False(t, tel.Health().Degraded)

	counter, err := tel.Meter("test").Int64Counter("docref_test_requests")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "docref_test_requests")
}

func TestNew_PrometheusDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Metrics.Prometheus = false

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.Nil(t, tel.LoggerProvider())
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Degraded)
	assert.NotPanics(t, func() { tel.SetLoggerProvider(nil) })
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "disabled ignores endpoint", mutate: func(c *Config) { c.Endpoint = "" }},
		{
			name:    "zero shutdown",
			mutate:  func(c *Config) { c.Shutdown.Timeout = 0 },
			wantErr: "shutdown.timeout",
		},
		{
			name:    "remote insecure",
			mutate:  func(c *Config) { c.Enabled = true; c.Endpoint = "collector.example.com:4317" },
			wantErr: "insecure connections",
		},
		{
			name:   "remote tls",
			mutate: func(c *Config) { c.Enabled = true; c.Endpoint = "collector.example.com:4317"; c.Insecure = false },
		},
		{
			name:   "ipv6 loopback",
			mutate: func(c *Config) { c.Enabled = true; c.Endpoint = "[::1]:4317" },
		},
		{
			name:    "bad protocol",
			mutate:  func(c *Config) { c.Enabled = true; c.Protocol = "udp" },
			wantErr: "protocol",
		},
		{
			name:    "bad rate",
			mutate:  func(c *Config) { c.Enabled = true; c.Sampling.Rate = 1.5 },
			wantErr: "sampling.rate",
		},
		{
			name:    "zero export interval",
			mutate:  func(c *Config) { c.Enabled = true; c.Metrics.ExportInterval = 0 },
			wantErr: "export_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromSettings(t *testing.T) {
	s := config.Default().Telemetry
	s.Enabled = true
	s.Protocol = "http/protobuf"
	s.Endpoint = "http://localhost:4318"
	s.Prometheus = false

	cfg := FromSettings(s)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http/protobuf", cfg.Protocol)
	assert.Equal(t, "http://localhost:4318", cfg.Endpoint)
	assert.False(t, cfg.Metrics.Prometheus)
	assert.Equal(t, 15*time.Second, cfg.Metrics.ExportInterval.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "otel:4318", stripScheme("https://otel:4318"))
	assert.Equal(t, "otel:4318", stripScheme("http://otel:4318"))
	assert.Equal(t, "otel:4318", stripScheme("otel:4318"))
}

func TestTestTelemetry(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	_, span := tt.Tracer("test").Start(ctx, "compression.compress")
	span.SetAttributes(attribute.Int("units", 4))
	span.End()

	tt.AssertSpanExists(t, "compression.compress")
	tt.AssertSpanAttribute(t, "compression.compress", "units", int64(4))

	counter, err := tt.Meter("test").Int64Counter("outcomes")
	require.NoError(t, err)
	counter.Add(ctx, 2, metricAttr("compressed"))
	counter.Add(ctx, 1, metricAttr("too_short"))

	assert.Equal(t, int64(3), tt.CounterValue(t, "outcomes"))
	assert.Equal(t, int64(2), tt.CounterValue(t, "outcomes", attribute.String("outcome", "compressed")))
	assert.Equal(t, int64(0), tt.CounterValue(t, "missing"))
}

func metricAttr(outcome string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("outcome", outcome))
}
