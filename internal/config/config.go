// Package config provides configuration loading for docref.
//
// Configuration is resolved in three layers: compiled-in defaults, an optional
// YAML file, and DOCREF_* environment variables. The resulting Config is a
// plain value; components receive the section they need at construction time
// and never read configuration again.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete docref configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Embedding   EmbeddingConfig   `koanf:"embedding"`
	Resolver    ResolverConfig    `koanf:"resolver"`
	Compression CompressionConfig `koanf:"compression"`
	Logging     LoggingConfig     `koanf:"logging"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "tei" or "fastembed".
	Provider string   `koanf:"provider"`
	BaseURL  string   `koanf:"base_url"`
	Model    string   `koanf:"model"`
	APIKey   Secret   `koanf:"api_key"`
	Timeout  Duration `koanf:"timeout"` // per call
	// Concurrency bounds in-flight embedding calls per compression.
	Concurrency int `koanf:"concurrency"`
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	CacheDir  string  `koanf:"cache_dir"` // fastembed only
}

// ResolverConfig configures remote document retrieval.
type ResolverConfig struct {
	BaseURL      string   `koanf:"base_url"`
	APIKey       Secret   `koanf:"api_key"`
	Timeout      Duration `koanf:"timeout"`
	Retries      int      `koanf:"retries"`
	HTMLFallback bool     `koanf:"html_fallback"`
	MaxBytes     int64    `koanf:"max_bytes"`
}

// CompressionConfig configures the compression engine.
type CompressionConfig struct {
	Enabled          bool `koanf:"enabled"`
	MinContentLength int  `koanf:"min_content_length"`
	EmitTrace        bool `koanf:"emit_trace"`
}

// LoggingConfig holds the subset of logging settings exposed to operators.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Endpoint       string `koanf:"endpoint"`
	Protocol       string `koanf:"protocol"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
	Insecure       bool   `koanf:"insecure"`
	Prometheus     bool   `koanf:"prometheus"`
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9191,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434",
			Model:       "nomic-embed-text",
			Timeout:     Duration(30 * time.Second),
			Concurrency: 4,
		},
		Resolver: ResolverConfig{
			BaseURL:      "http://localhost:8000",
			Timeout:      Duration(15 * time.Second),
			Retries:      2,
			HTMLFallback: true,
			MaxBytes:     1 << 20,
		},
		Compression: CompressionConfig{
			Enabled:          true,
			MinContentLength: 50,
			EmitTrace:        true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			Endpoint:       "localhost:4317",
			Protocol:       "grpc",
			ServiceName:    "docref",
			ServiceVersion: "0.1.0",
			Insecure:       true,
			Prometheus:     true,
		},
	}
}

var validProviders = map[string]bool{
	"ollama":    true,
	"tei":       true,
	"fastembed": true,
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown or call timeouts are not positive
//   - The embedding provider is unknown or concurrency is below 1
//   - Retries or size limits are negative
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("unknown embedding provider %q (expected ollama, tei or fastembed)", c.Embedding.Provider)
	}
	if c.Embedding.Provider != "fastembed" && c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url required for provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Timeout.Duration() <= 0 {
		return errors.New("embedding timeout must be positive")
	}
	if c.Embedding.Concurrency < 1 {
		return fmt.Errorf("embedding concurrency must be >= 1, got %d", c.Embedding.Concurrency)
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("embedding rate_limit must be >= 0, got %v", c.Embedding.RateLimit)
	}

	if c.Resolver.Timeout.Duration() <= 0 {
		return errors.New("resolver timeout must be positive")
	}
	if c.Resolver.Retries < 0 {
		return fmt.Errorf("resolver retries must be >= 0, got %d", c.Resolver.Retries)
	}
	if c.Resolver.MaxBytes <= 0 {
		return errors.New("resolver max_bytes must be positive")
	}

	if c.Compression.MinContentLength < 0 {
		return fmt.Errorf("compression min_content_length must be >= 0, got %d", c.Compression.MinContentLength)
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}
