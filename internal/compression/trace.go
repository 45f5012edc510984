package compression

import (
	"fmt"
	"strings"
)

// Trace tags.
const (
	TagNoCompression          = "NO_COMPRESSION"
	TagTooShort               = "TOO_SHORT"
	TagChunks                 = "CHUNKS"
	TagNoCompressionLevel     = "NO_COMPRESSION_LEVEL"
	TagSingleChunk            = "SINGLE_CHUNK"
	TagEmbeddings             = "EMBEDDINGS"
	TagEmbedFailed            = "EMBED_FAILED"
	TagNoEmbeddings           = "NO_EMBEDDINGS"
	TagInsufficientEmbeddings = "INSUFFICIENT_EMBEDDINGS"
	TagAuxEmbeddingFailed     = "AUX_EMBEDDING_FAILED"
	TagScoringFailed          = "SCORING_FAILED"
	TagCompressedChunks       = "COMPRESSED_CHUNKS"
	TagRatio                  = "RATIO"
	TagSuccess                = "SUCCESS"
	TagIneffective            = "INEFFECTIVE"
)

// Trace records each pipeline decision as a bracketed tag.
type Trace []string

func (t *Trace) mark(tag string) {
	*t = append(*t, "["+tag+"]")
}

func (t *Trace) count(tag string, n int) {
	*t = append(*t, fmt.Sprintf("[%s:%d]", tag, n))
}

func (t *Trace) ratio(r float64) {
	*t = append(*t, fmt.Sprintf("[%s:%.2f]", TagRatio, r))
}

// Has reports whether tag was recorded, with or without a value.
func (t Trace) Has(tag string) bool {
	for _, m := range t {
		if m == "["+tag+"]" || strings.HasPrefix(m, "["+tag+":") {
			return true
		}
	}
	return false
}

// String joins the tags with single spaces.
func (t Trace) String() string {
	return strings.Join(t, " ")
}
