package reference

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/docref/internal/compression"
	"github.com/fyrsmithlabs/docref/internal/logging"
	"github.com/fyrsmithlabs/docref/internal/resolver"
	"go.uber.org/zap"
)

// Compressor is the part of compression.Service the expander needs.
type Compressor interface {
	Compress(ctx context.Context, req compression.Request) *compression.Result
}

// Expansion reports what happened to one reference.
type Expansion struct {
	Reference Reference
	Resolved  bool

	// Outcome and Trace are set when compression ran.
	Outcome compression.Outcome
	Trace   string

	// Err is the resolution error for unresolved references.
	Err error
}

// Expander replaces reference tokens with document content.
type Expander struct {
	Resolver resolver.Resolver

	// Compressor may be nil, in which case documents are spliced whole.
	Compressor Compressor

	// EmitTrace prefixes compressed content with its trace.
	EmitTrace bool

	Logger *zap.Logger
}

// Expand resolves every reference in text and returns the expanded text
// with one Expansion per distinct token. Text without references is
// returned unchanged.
func (e *Expander) Expand(ctx context.Context, text string) (string, []Expansion) {
	refs := Parse(text)
	if len(refs) == 0 {
		return text, nil
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	expansions := make([]Expansion, 0, len(refs))
	pairs := make([]string, 0, 2*len(refs))
	for _, ref := range refs {
		refCtx := logging.WithReference(ctx, ref.Name)
		exp, replacement := e.expandOne(refCtx, ref)
		if exp.Err != nil {
			logger.Warn("reference not resolved",
				append(logging.ContextFields(refCtx), zap.Error(exp.Err))...)
		} else {
			logger.Debug("reference expanded",
				append(logging.ContextFields(refCtx),
					zap.String("outcome", string(exp.Outcome)),
					zap.Int("replacement_length", len(replacement)))...)
		}
		expansions = append(expansions, exp)
		pairs = append(pairs, ref.Raw, replacement)
	}

	// One pass, so document content is never rescanned for tokens.
	return strings.NewReplacer(pairs...).Replace(text), expansions
}

func (e *Expander) expandOne(ctx context.Context, ref Reference) (Expansion, string) {
	exp := Expansion{Reference: ref}

	doc, err := e.Resolver.Resolve(ctx, ref.Name)
	if err != nil {
		exp.Err = err
		return exp, Unresolved(ref.Name)
	}
	exp.Resolved = true

	content := doc.Content
	if ref.WantsCompression() && e.Compressor != nil {
		res := e.Compressor.Compress(ctx, compression.Request{
			Content:     doc.Content,
			Granularity: ref.Granularity,
			Level:       ref.Level,
			AuxText:     doc.Context,
			AuxWeight:   ref.AuxWeight,
		})
		exp.Outcome = res.Outcome
		exp.Trace = res.Trace.String()
		content = res.Text(e.EmitTrace)
	}

	return exp, Format(*doc, content)
}
