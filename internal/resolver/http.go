package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fyrsmithlabs/docref/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/go-shiori/go-readability"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	jsonPath = "/api/documents/{name}"
	htmlPath = "/documents/{name}"

	defaultBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
	defaultMaxBytes = 1 << 20
)

// Config configures an HTTPResolver.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	Retries      int
	HTMLFallback bool
	MaxBytes     int64
}

// FromSettings maps the loaded resolver section onto a Config.
func FromSettings(s config.ResolverConfig) Config {
	return Config{
		BaseURL:      s.BaseURL,
		APIKey:       s.APIKey.Value(),
		Timeout:      s.Timeout.Duration(),
		Retries:      s.Retries,
		HTMLFallback: s.HTMLFallback,
		MaxBytes:     s.MaxBytes,
	}
}

// HTTPResolver resolves documents from a remote document service.
type HTTPResolver struct {
	client  *resty.Client
	config  Config
	backoff time.Duration
	logger  *zap.Logger
}

// Option configures an HTTPResolver.
type Option func(*HTTPResolver)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(r *HTTPResolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBackoff sets the first retry delay.
func WithBackoff(d time.Duration) Option {
	return func(r *HTTPResolver) {
		if d > 0 {
			r.backoff = d
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPResolver) {
		if c != nil {
			r.client = resty.NewWithClient(c).
				SetBaseURL(r.client.BaseURL).
				SetTimeout(r.config.Timeout)
			r.applyHeaders()
		}
	}
}

// NewHTTPResolver creates a resolver for cfg.BaseURL.
func NewHTTPResolver(cfg Config, opts ...Option) (*HTTPResolver, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("resolver base URL must be an absolute http(s) URL, got %q", cfg.BaseURL)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("resolver retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}

	r := &HTTPResolver{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout),
		config:  cfg,
		backoff: defaultBackoff,
		logger:  zap.NewNop(),
	}
	r.applyHeaders()
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *HTTPResolver) applyHeaders() {
	r.client.SetHeader("User-Agent", "docref-resolver/1.0")
	if r.config.APIKey != "" {
		r.client.SetAuthToken(r.config.APIKey)
	}
}

// Resolve fetches name as JSON, then as HTML when the fallback is enabled.
func (r *HTTPResolver) Resolve(ctx context.Context, name string) (*Document, error) {
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}

	doc, err := r.fetchJSON(ctx, name)
	if err == nil {
		return doc, nil
	}
	if !r.config.HTMLFallback || ctx.Err() != nil {
		return nil, err
	}

	r.logger.Debug("json lookup failed, trying html",
		zap.String("reference.name", name), zap.Error(err))

	doc, htmlErr := r.fetchHTML(ctx, name)
	if htmlErr == nil {
		return doc, nil
	}
	if errors.Is(err, ErrNotFound) && errors.Is(htmlErr, ErrNotFound) {
		return nil, ErrNotFound
	}
	return nil, errors.Join(err, htmlErr)
}

func (r *HTTPResolver) fetchJSON(ctx context.Context, name string) (*Document, error) {
	body, err := r.get(ctx, jsonPath, name, "application/json")
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %q: %w", name, err)
	}
	if doc.Filename == "" {
		doc.Filename = name
	}
	return &doc, nil
}

func (r *HTTPResolver) fetchHTML(ctx context.Context, name string) (*Document, error) {
	body, err := r.get(ctx, htmlPath, name, "text/html")
	if err != nil {
		return nil, err
	}

	pageURL, _ := url.Parse(r.client.BaseURL + "/documents/" + url.PathEscape(name))
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting %q: %w", name, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w: page for %q has no readable text", ErrNotFound, name)
	}
	return &Document{
		Filename: name,
		Context:  strings.TrimSpace(article.Title),
		Content:  text,
	}, nil
}

// get performs a GET with retries and returns at most MaxBytes of body.
func (r *HTTPResolver) get(ctx context.Context, path, name, accept string) ([]byte, error) {
	backoff := retry.WithMaxRetries(uint64(r.config.Retries), // #nosec G115 -- validated >= 0
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(r.backoff)))

	var body []byte
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := r.client.R().
			SetContext(ctx).
			SetHeader("Accept", accept).
			SetPathParam("name", name).
			SetDoNotParseResponse(true).
			Get(path)
		if err != nil {
			r.logger.Debug("document request failed",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		raw := resp.RawBody()
		defer raw.Close()

		switch code := resp.StatusCode(); {
		case code == http.StatusNotFound:
			return ErrNotFound
		case code == http.StatusTooManyRequests || code >= 500:
			r.logger.Debug("document service error",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Int("status", code))
			return retry.RetryableError(fmt.Errorf("%w: status %d", ErrUnavailable, code))
		case code >= 400:
			return fmt.Errorf("%w: status %d", ErrUnavailable, code)
		}

		data, err := io.ReadAll(io.LimitReader(raw, r.config.MaxBytes+1))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: reading body: %v", ErrUnavailable, err))
		}
		if int64(len(data)) > r.config.MaxBytes {
			return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.config.MaxBytes)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
