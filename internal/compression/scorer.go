package compression

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNoVectors is returned when a centroid is requested over nothing.
	ErrNoVectors = errors.New("no vectors")

	// ErrDimensionMismatch is returned when vectors of different lengths
	// are combined.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// ScoredUnit is the importance of one unit, identified by its index in the
// unit sequence.
type ScoredUnit struct {
	Index  int
	Score  float64
	DocSim float64
	AuxSim float64
}

// Sanitize widens v to float64, replacing NaN with 0, +Inf with 1 and -Inf
// with -1.
func Sanitize(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		f := float64(x)
		switch {
		case math.IsNaN(f):
			f = 0
		case math.IsInf(f, 1):
			f = 1
		case math.IsInf(f, -1):
			f = -1
		}
		out[i] = f
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b. Empty,
// mismatched or zero-norm vectors have similarity 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

// Centroid returns the component-wise mean of vectors.
func Centroid(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += x
		}
	}

	n := float64(len(vectors))
	for j := range sum {
		sum[j] /= n
	}
	return sum, nil
}

// Score rates every embedding by its similarity to centroid, blended with
// its similarity to aux when aux is non-empty and auxWeight is positive:
//
//	score = docSim*(1-auxWeight) + auxSim*auxWeight
//
// auxWeight is clamped to [0, 1]. The result is sorted by score descending;
// equal scores keep index order.
func Score(embeddings [][]float32, centroid []float64, aux []float32, auxWeight float64) ([]ScoredUnit, error) {
	weight := math.Max(0, math.Min(1, auxWeight))
	if math.IsNaN(auxWeight) {
		weight = 0
	}

	var auxVec []float64
	if len(aux) > 0 && weight > 0 {
		if len(aux) != len(centroid) {
			return nil, fmt.Errorf("%w: aux vector has %d dimensions, want %d", ErrDimensionMismatch, len(aux), len(centroid))
		}
		auxVec = Sanitize(aux)
	}

	scored := make([]ScoredUnit, len(embeddings))
	for i, e := range embeddings {
		if len(e) != len(centroid) {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(e), len(centroid))
		}
		v := Sanitize(e)

		su := ScoredUnit{Index: i, DocSim: CosineSimilarity(v, centroid)}
		su.Score = su.DocSim
		if auxVec != nil {
			su.AuxSim = CosineSimilarity(v, auxVec)
			su.Score = su.DocSim*(1-weight) + su.AuxSim*weight
		}
		scored[i] = su
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored, nil
}
