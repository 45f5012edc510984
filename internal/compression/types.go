package compression

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/docref/internal/config"
)

// ErrInvalidConfig is returned by NewService for unusable configuration.
var ErrInvalidConfig = errors.New("invalid compression config")

// Embedder turns one unit of text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds compression settings. It is copied into the Service and never
// changes afterwards.
type Config struct {
	// MinContentLength is the shortest content, in runes, that is chunked.
	MinContentLength int

	// Concurrency bounds in-flight Embed calls per Compress.
	Concurrency int
}

// DefaultConfig returns the compiled-in compression settings.
func DefaultConfig() Config {
	return Config{
		MinContentLength: 50,
		Concurrency:      4,
	}
}

// ConfigFrom builds a Config from the loaded application configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MinContentLength: cfg.Compression.MinContentLength,
		Concurrency:      cfg.Embedding.Concurrency,
	}
}

// Validate checks c for errors.
func (c Config) Validate() error {
	if c.MinContentLength < 0 {
		return fmt.Errorf("%w: min content length must be >= 0, got %d", ErrInvalidConfig, c.MinContentLength)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	return nil
}

// Request describes one compression.
type Request struct {
	Content string

	// Granularity selects the chunking strategy, 0 through 10.
	Granularity int

	// Level selects the keep-ratio, 1 (keep most) through 10 (keep least).
	// Zero or below disables compression.
	Level int

	// AuxText is embedded and blended into scoring when AuxWeight > 0.
	AuxText   string
	AuxWeight float64
}

// Outcome says how a compression ended.
type Outcome string

const (
	OutcomeNotRequested           Outcome = "not_requested"
	OutcomeTooShort               Outcome = "too_short"
	OutcomeNoLevel                Outcome = "no_level"
	OutcomeSingleUnit             Outcome = "single_unit"
	OutcomeNoEmbeddings           Outcome = "no_embeddings"
	OutcomeInsufficientEmbeddings Outcome = "insufficient_embeddings"
	OutcomeCompressed             Outcome = "compressed"
	OutcomeIneffective            Outcome = "ineffective"
	OutcomeScoringFailed          Outcome = "scoring_failed"
)

// Compressed reports whether the content was actually reduced.
func (o Outcome) Compressed() bool {
	return o == OutcomeCompressed
}

// Failed reports whether a dependency or computation failed, as opposed to
// compression being skipped on purpose.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeNoEmbeddings, OutcomeInsufficientEmbeddings, OutcomeScoringFailed:
		return true
	default:
		return false
	}
}

// Result is the outcome of Compress. Content is always usable text: either
// the compressed content or the original.
type Result struct {
	Content  string
	Original string
	Trace    Trace
	Outcome  Outcome

	// Err is set when Outcome.Failed() and a cause is known.
	Err error

	Units    int     // units produced by chunking
	Embedded int     // units with a usable embedding
	Selected int     // units kept
	Ratio    float64 // len(Content)/len(Original) in runes, when computed
}

// Text renders the result, prefixed with the trace when withTrace is set.
func (r *Result) Text(withTrace bool) string {
	if !withTrace || len(r.Trace) == 0 {
		return r.Content
	}
	return r.Trace.String() + " " + r.Content
}
