// Package http provides the docref HTTP API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/docref/internal/compression"
	"github.com/fyrsmithlabs/docref/internal/logging"
	"github.com/fyrsmithlabs/docref/internal/reference"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Compressor runs one compression.
type Compressor interface {
	Compress(ctx context.Context, req compression.Request) *compression.Result
}

// Server provides HTTP endpoints for docref.
type Server struct {
	echo       *echo.Echo
	compressor Compressor
	expander   *reference.Expander
	metrics    http.Handler
	meter      metric.Meter
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// EmitTrace is the default for include_trace when a request omits it.
	EmitTrace bool

	// BodyLimit caps request bodies, in echo's size notation.
	BodyLimit string
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMeter overrides the global meter for HTTP metrics.
func WithMeter(m metric.Meter) Option {
	return func(s *Server) {
		if m != nil {
			s.meter = m
		}
	}
}

// NewServer creates a new HTTP server. compressor may be nil when compression
// is disabled, in which case /api/v1/compress answers 503.
func NewServer(compressor Compressor, expander *reference.Expander, logger *zap.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if expander == nil || expander.Resolver == nil {
		return nil, fmt.Errorf("expander with a resolver is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "localhost",
			Port:      9090,
			EmitTrace: true,
		}
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "2M"
	}

	s := &Server{
		compressor: compressor,
		expander:   expander,
		logger:     logger,
		config:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			fields := append(logging.ContextFields(c.Request().Context()),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
			)
			logger.Info("http request", fields...)

			return err
		}
	})
	e.Use(NewHTTPMetrics(logger, s.meter).MetricsMiddleware())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s.echo = e
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	v1 := s.echo.Group("/api/v1")
	v1.POST("/compress", s.handleCompress)
	v1.POST("/expand", s.handleExpand)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCompress compresses the posted content.
func (s *Server) handleCompress(c echo.Context) error {
	if s.compressor == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "compression is disabled")
	}

	var req CompressRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid compress request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content field is required")
	}
	if req.AuxWeight < 0 || req.AuxWeight > 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "aux_weight must be between 0 and 1")
	}

	res := s.compressor.Compress(c.Request().Context(), compression.Request{
		Content:     req.Content,
		Granularity: req.Granularity,
		Level:       req.CompressionLevel,
		AuxText:     req.AuxText,
		AuxWeight:   req.AuxWeight,
	})

	resp := CompressResponse{
		Content:  res.Text(s.includeTrace(req.IncludeTrace)),
		Trace:    res.Trace.String(),
		Outcome:  string(res.Outcome),
		Units:    res.Units,
		Embedded: res.Embedded,
		Selected: res.Selected,
		Ratio:    res.Ratio,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// handleExpand replaces every reference in the posted text.
func (s *Server) handleExpand(c echo.Context) error {
	var req ExpandRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid expand request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	exp := *s.expander
	exp.EmitTrace = s.includeTrace(req.IncludeTrace)
	if exp.Logger == nil {
		exp.Logger = s.logger
	}

	text, expansions := exp.Expand(c.Request().Context(), req.Text)

	refs := make([]ReferenceResult, 0, len(expansions))
	for _, x := range expansions {
		r := ReferenceResult{
			Name:     x.Reference.Name,
			Resolved: x.Resolved,
			Outcome:  string(x.Outcome),
			Trace:    x.Trace,
		}
		if x.Err != nil {
			r.Error = x.Err.Error()
		}
		refs = append(refs, r)
	}

	return c.JSON(http.StatusOK, ExpandResponse{
		Text:       text,
		References: refs,
		Counts:     CountExpansions(expansions),
	})
}

func (s *Server) includeTrace(v *bool) bool {
	if v == nil {
		return s.config.EmitTrace
	}
	return *v
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
