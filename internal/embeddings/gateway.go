package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single embedding call.
const DefaultTimeout = 30 * time.Second

// GatewayConfig holds per-call policy.
type GatewayConfig struct {
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// RateLimit is calls per second across all callers. Zero disables it.
	RateLimit float64
}

// Gateway applies timeout, rate limiting and validation around a Provider.
// It is safe for concurrent use.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
	meter    metric.Meter
	metrics  *Metrics
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) GatewayOption {
	return func(g *Gateway) {
		if m != nil {
			g.meter = m
		}
	}
}

// NewGateway wraps p.
func NewGateway(p Provider, cfg GatewayConfig, opts ...GatewayOption) (*Gateway, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: provider is required", ErrInvalidConfig)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must be >= 0", ErrInvalidConfig)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("%w: rate limit must be >= 0", ErrInvalidConfig)
	}

	g := &Gateway{
		provider: p,
		timeout:  cfg.Timeout,
		logger:   zap.NewNop(),
		meter:    otel.Meter(instrumentationName),
	}
	if g.timeout == 0 {
		g.timeout = DefaultTimeout
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(g)
	}
	g.metrics = NewMetrics(g.meter, g.logger)

	return g, nil
}

// Embed returns the embedding of text. Whitespace-only text fails with
// ErrEmptyInput without reaching the provider.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	vec, reason, err := g.embed(ctx, text)
	g.metrics.RecordCall(ctx, g.provider.Name(), len(text), time.Since(start), reason)

	if err != nil {
		g.logger.Debug("embedding failed",
			zap.String("provider", g.provider.Name()),
			zap.String("reason", reason),
			zap.Error(err))
		return nil, err
	}
	return vec, nil
}

func (g *Gateway) embed(ctx context.Context, text string) ([]float32, string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, "rate_limited", fmt.Errorf("%w: rate limiter: %v", ErrEmbeddingFailed, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vec, err := g.provider.Embed(ctx, text)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, "timeout", fmt.Errorf("%w: timed out after %s", ErrEmbeddingFailed, g.timeout)
		case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
			return nil, "canceled", fmt.Errorf("%w: %w", ErrEmbeddingFailed, context.Canceled)
		default:
			return nil, "provider", err
		}
	}
	if len(vec) == 0 {
		return nil, "empty", fmt.Errorf("%w: empty vector", ErrEmbeddingFailed)
	}
	return vec, "", nil
}

// Name returns the wrapped provider's name.
func (g *Gateway) Name() string {
	return g.provider.Name()
}

// Close releases the provider.
func (g *Gateway) Close() error {
	return g.provider.Close()
}
