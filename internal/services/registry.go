package services

import (
	"fmt"

	"github.com/fyrsmithlabs/docref/internal/compression"
	"github.com/fyrsmithlabs/docref/internal/config"
	"github.com/fyrsmithlabs/docref/internal/embeddings"
	"github.com/fyrsmithlabs/docref/internal/reference"
	"github.com/fyrsmithlabs/docref/internal/resolver"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Registry provides access to the docref services.
type Registry interface {
	// Embedder is nil when compression is disabled.
	Embedder() *embeddings.Gateway
	Resolver() resolver.Resolver
	// Compression is nil when compression is disabled.
	Compression() *compression.Service
	Expander() *reference.Expander
	Close() error
}

// Options configures the registry with service instances.
type Options struct {
	Embedder    *embeddings.Gateway
	Resolver    resolver.Resolver
	Compression *compression.Service
	EmitTrace   bool
	Logger      *zap.Logger
}

// registry is the concrete implementation of Registry.
type registry struct {
	embedder    *embeddings.Gateway
	resolver    resolver.Resolver
	compression *compression.Service
	expander    *reference.Expander
}

// NewRegistry creates a registry from existing services.
func NewRegistry(opts Options) Registry {
	exp := &reference.Expander{
		Resolver:  opts.Resolver,
		EmitTrace: opts.EmitTrace,
		Logger:    opts.Logger,
	}
	// Keep the interface nil rather than holding a nil *Service.
	if opts.Compression != nil {
		exp.Compressor = opts.Compression
	}

	return &registry{
		embedder:    opts.Embedder,
		resolver:    opts.Resolver,
		compression: opts.Compression,
		expander:    exp,
	}
}

func (r *registry) Embedder() *embeddings.Gateway     { return r.embedder }
func (r *registry) Resolver() resolver.Resolver       { return r.resolver }
func (r *registry) Compression() *compression.Service { return r.compression }
func (r *registry) Expander() *reference.Expander     { return r.expander }

// Close releases the embedding provider.
func (r *registry) Close() error {
	if r.embedder == nil {
		return nil
	}
	return r.embedder.Close()
}

// Build creates every service described by cfg. meter may be nil to use
// the global meter provider.
func Build(cfg *config.Config, logger *zap.Logger, meter metric.Meter) (Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := resolver.NewHTTPResolver(resolver.FromSettings(cfg.Resolver),
		resolver.WithLogger(logger.Named("resolver")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	opts := Options{
		Resolver:  res,
		EmitTrace: cfg.Compression.EmitTrace,
		Logger:    logger.Named("reference"),
	}
	if !cfg.Compression.Enabled {
		logger.Info("compression disabled, references are expanded whole")
		return NewRegistry(opts), nil
	}

	gwOpts := []embeddings.GatewayOption{}
	if meter != nil {
		gwOpts = append(gwOpts, embeddings.WithMeter(meter))
	}
	gw, err := embeddings.NewFromConfig(cfg.Embedding, logger.Named("embeddings"), gwOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding gateway: %w", err)
	}

	svcOpts := []compression.Option{compression.WithLogger(logger.Named("compression"))}
	if meter != nil {
		svcOpts = append(svcOpts, compression.WithMeter(meter))
	}
	svc, err := compression.NewService(compression.ConfigFrom(cfg), gw, svcOpts...)
	if err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("failed to create compression service: %w", err)
	}

	logger.Info("services initialized",
		zap.String("embedding_provider", gw.Name()),
		zap.String("resolver", cfg.Resolver.BaseURL),
		zap.Int("min_content_length", cfg.Compression.MinContentLength))

	opts.Embedder = gw
	opts.Compression = svc
	return NewRegistry(opts), nil
}
