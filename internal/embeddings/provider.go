package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/docref/internal/config"
	"go.uber.org/zap"
)

// Provider generates an embedding for a single text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the backend and model, e.g. "ollama/nomic-embed-text".
	Name() string
	// Close releases connections or model resources.
	Close() error
}

// ProviderConfig holds configuration for creating a Provider.
type ProviderConfig struct {
	// Provider is "ollama", "tei" or "fastembed".
	Provider string
	Model    string
	// BaseURL is used by the HTTP providers.
	BaseURL string
	APIKey  string
	// CacheDir is used by FastEmbed.
	CacheDir string
}

// Validate checks the configuration for errors.
func (c ProviderConfig) Validate() error {
	switch c.Provider {
	case "ollama", "tei":
		if c.BaseURL == "" {
			return fmt.Errorf("%w: base URL required for %s", ErrInvalidConfig, c.Provider)
		}
		if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
			return fmt.Errorf("%w: base URL must be http or https: %q", ErrInvalidConfig, c.BaseURL)
		}
	case "fastembed":
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	return nil
}

// NewProvider creates a Provider from configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.Provider == "" {
		cfg.Provider = "ollama"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "tei":
		return NewTEIProvider(cfg.BaseURL, cfg.Model, cfg.APIKey), nil
	case "fastembed":
		p, err := NewFastEmbedProvider(FastEmbedConfig{
			Model:    cfg.Model,
			CacheDir: cfg.CacheDir,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	}
}

// NewFromConfig builds the configured provider wrapped in a Gateway.
func NewFromConfig(cfg config.EmbeddingConfig, logger *zap.Logger, opts ...GatewayOption) (*Gateway, error) {
	p, err := NewProvider(ProviderConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey.Value(),
		CacheDir: cfg.CacheDir,
	})
	if err != nil {
		return nil, err
	}

	opts = append([]GatewayOption{WithLogger(logger)}, opts...)
	return NewGateway(p, GatewayConfig{
		Timeout:   cfg.Timeout.Duration(),
		RateLimit: cfg.RateLimit,
	}, opts...)
}

// newHTTPClient returns the client an HTTP provider owns until Close.
// Per-call deadlines come from the Gateway's context.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
