package compression

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fyrsmithlabs/docref/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/fyrsmithlabs/docref/internal/compression"

// Service runs the chunk, embed, score and select pipeline.
type Service struct {
	config   Config
	embedder Embedder
	logger   *zap.Logger
	tracer   trace.Tracer
	meter    metric.Meter
	metrics  *metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMeter overrides the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m != nil {
			s.meter = m
		}
	}
}

// NewService creates a compression service.
func NewService(cfg Config, embedder Embedder, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}

	s := &Service{
		config:   cfg,
		embedder: embedder,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	m, err := newMetrics(s.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	s.metrics = m

	return s, nil
}

// Compress reduces req.Content to its most representative units. It never
// fails; see Result.Outcome for what happened.
func (s *Service) Compress(ctx context.Context, req Request) *Result {
	ctx, span := s.tracer.Start(ctx, "compression.compress",
		trace.WithAttributes(
			attribute.Int("granularity", req.Granularity),
			attribute.Int("level", req.Level),
			attribute.Int("content_length", len(req.Content)),
			attribute.Float64("aux_weight", req.AuxWeight),
		),
	)
	defer span.End()

	start := time.Now()
	res := s.compress(ctx, req)
	elapsed := time.Since(start)

	s.metrics.record(ctx, res, req.Granularity, elapsed)

	span.SetAttributes(
		attribute.String("outcome", string(res.Outcome)),
		attribute.String("trace", res.Trace.String()),
		attribute.Int("units", res.Units),
		attribute.Int("embedded", res.Embedded),
		attribute.Int("selected", res.Selected),
		attribute.Float64("ratio", res.Ratio),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, string(res.Outcome))
	}

	s.logger.Debug("compression finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Stringer("trace", res.Trace),
		zap.Int("units", res.Units),
		zap.Int("embedded", res.Embedded),
		zap.Int("selected", res.Selected),
		zap.Duration("elapsed", elapsed),
	)

	return res
}

func (s *Service) compress(ctx context.Context, req Request) *Result {
	res := &Result{Content: req.Content, Original: req.Content}
	tr := &res.Trace

	if req.Granularity <= 0 && req.Level <= 0 {
		tr.mark(TagNoCompression)
		res.Outcome = OutcomeNotRequested
		return res
	}

	length := utf8.RuneCountInString(req.Content)
	if length < s.config.MinContentLength {
		tr.count(TagTooShort, length)
		res.Outcome = OutcomeTooShort
		return res
	}

	units := Chunk(req.Content, req.Granularity)
	res.Units = len(units)
	tr.count(TagChunks, len(units))

	if req.Level <= 0 {
		tr.mark(TagNoCompressionLevel)
		res.Outcome = OutcomeNoLevel
		return res
	}
	if len(units) <= 1 {
		tr.mark(TagSingleChunk)
		res.Outcome = OutcomeSingleUnit
		return res
	}

	units, vectors := s.embedUnits(ctx, units)
	res.Embedded = len(vectors)
	tr.count(TagEmbeddings, len(vectors))
	if failed := res.Units - len(vectors); failed > 0 {
		tr.count(TagEmbedFailed, failed)
	}

	switch {
	case len(vectors) == 0:
		tr.mark(TagNoEmbeddings)
		res.Outcome = OutcomeNoEmbeddings
		res.Err = ctx.Err()
		return res
	case len(vectors) < 2:
		tr.count(TagInsufficientEmbeddings, len(vectors))
		res.Outcome = OutcomeInsufficientEmbeddings
		return res
	}

	aux, weight := s.embedAux(ctx, req, tr)

	selected, err := s.rank(units, vectors, aux, weight, KeepRatio(req.Level))
	if err != nil {
		s.logger.Warn("scoring failed, keeping original units", zap.Error(err))
		tr.mark(TagScoringFailed)
		res.Err = err
		selected = units
	}

	compressed := Reassemble(selected, req.Granularity)
	res.Ratio = float64(utf8.RuneCountInString(compressed)) / float64(length)
	res.Selected = len(selected)

	if err == nil && len(selected) < len(units) {
		tr.count(TagCompressedChunks, len(selected))
		tr.ratio(res.Ratio)
		tr.mark(TagSuccess)
		res.Content = compressed
		res.Outcome = OutcomeCompressed
		return res
	}

	tr.ratio(res.Ratio)
	tr.mark(TagIneffective)
	res.Ratio = 1
	res.Selected = res.Units
	res.Outcome = OutcomeIneffective
	if err != nil {
		res.Outcome = OutcomeScoringFailed
	}
	return res
}

// embedUnits embeds every unit with bounded concurrency and returns the
// units whose embedding succeeded alongside their vectors, in unit order.
func (s *Service) embedUnits(ctx context.Context, units []string) ([]string, [][]float32) {
	vectors := make([][]float32, len(units))

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for i, unit := range units {
		g.Go(func() error {
			v, err := s.embedder.Embed(ctx, unit)
			if err != nil {
				s.logger.Debug("unit embedding failed", zap.Int("index", i), zap.Error(err))
				return nil
			}
			vectors[i] = v
			return nil
		})
	}
	_ = g.Wait()

	keptUnits := make([]string, 0, len(units))
	keptVectors := make([][]float32, 0, len(units))
	for i, v := range vectors {
		if len(v) == 0 {
			continue
		}
		keptUnits = append(keptUnits, units[i])
		keptVectors = append(keptVectors, v)
	}
	return keptUnits, keptVectors
}

// embedAux embeds the auxiliary text when it is weighted in. On failure the
// weight drops to zero.
func (s *Service) embedAux(ctx context.Context, req Request, tr *Trace) ([]float32, float64) {
	if strings.TrimSpace(req.AuxText) == "" || req.AuxWeight <= 0 {
		return nil, 0
	}

	v, err := s.embedder.Embed(ctx, req.AuxText)
	if err != nil || len(v) == 0 {
		s.logger.Debug("aux embedding failed", zap.Error(err))
		tr.mark(TagAuxEmbeddingFailed)
		return nil, 0
	}
	return v, req.AuxWeight
}

// rank scores units and selects the survivors. Panics from malformed input
// are returned as errors.
func (s *Service) rank(units []string, vectors [][]float32, aux []float32, weight, ratio float64) (selected []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			selected, err = nil, fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	sanitized := make([][]float64, len(vectors))
	for i, v := range vectors {
		sanitized[i] = Sanitize(v)
	}

	centroid, err := Centroid(sanitized)
	if err != nil {
		return nil, fmt.Errorf("centroid: %w", err)
	}

	scored, err := Score(vectors, centroid, aux, weight)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	if ce := s.logger.Check(logging.TraceLevel, "unit scores"); ce != nil {
		ce.Write(zap.Any("scores", scored))
	}

	return Select(units, scored, ratio)
}
