package compression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	nan := float32(math.NaN())
	posInf := float32(math.Inf(1))
	negInf := float32(math.Inf(-1))

	got := Sanitize([]float32{0.5, nan, posInf, negInf, -2})
	assert.Equal(t, []float64{0.5, 0, 1, -1, -2}, got)
	assert.Empty(t, Sanitize(nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "scaled", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
		{name: "both zero", a: []float64{0, 0}, b: []float64{0, 0}, want: 0},
		{name: "mismatched", a: []float64{1, 0}, b: []float64{1, 0, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCentroid(t *testing.T) {
	c, err := Centroid([][]float64{{1, 0, 2}, {3, 2, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 1}, c)

	_, err = Centroid(nil)
	assert.ErrorIs(t, err, ErrNoVectors)

	_, err = Centroid([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestScore_SortedByDocumentSimilarity(t *testing.T) {
	embeddings := [][]float32{{0, 1}, {1, 0}, {1, 0.1}}
	centroid := []float64{1, 0}

	scored, err := Score(embeddings, centroid, nil, 0)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, 1, scored[0].Index)
	assert.Equal(t, 2, scored[1].Index)
	assert.Equal(t, 0, scored[2].Index)
	for _, su := range scored {
		assert.Equal(t, su.DocSim, su.Score)
		assert.Zero(t, su.AuxSim)
	}
}

func TestScore_TiesKeepIndexOrder(t *testing.T) {
	embeddings := [][]float32{{1, 1}, {1, 1}, {0, 1}, {1, 1}}

	scored, err := Score(embeddings, []float64{1, 1}, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 3, 2}, indices(scored))
}

func TestScore_AuxBlend(t *testing.T) {
	embeddings := [][]float32{{1, 0}, {0, 1}}
	centroid := []float64{0.5, 0.5}
	aux := []float32{1, 0}
	docSim := 1 / math.Sqrt2

	scored, err := Score(embeddings, centroid, aux, 0.5)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	byIndex := map[int]ScoredUnit{}
	for _, su := range scored {
		byIndex[su.Index] = su
	}

	assert.InDelta(t, docSim, byIndex[0].DocSim, 1e-9)
	assert.InDelta(t, 1.0, byIndex[0].AuxSim, 1e-9)
	assert.InDelta(t, 0.5*docSim+0.5*1.0, byIndex[0].Score, 1e-9)

	assert.InDelta(t, docSim, byIndex[1].DocSim, 1e-9)
	assert.InDelta(t, 0.0, byIndex[1].AuxSim, 1e-9)
	assert.InDelta(t, 0.5*docSim, byIndex[1].Score, 1e-9)

	assert.Equal(t, 0, scored[0].Index)
}

func TestScore_WeightBounds(t *testing.T) {
	embeddings := [][]float32{{1, 0}, {0, 1}}
	centroid := []float64{1, 0}
	aux := []float32{0, 1}

	scored, err := Score(embeddings, centroid, aux, 5)
	require.NoError(t, err)
	for _, su := range scored {
		assert.InDelta(t, su.AuxSim, su.Score, 1e-9, "weight above 1 behaves as 1")
	}

	for _, w := range []float64{0, -1, math.NaN()} {
		scored, err = Score(embeddings, centroid, aux, w)
		require.NoError(t, err)
		for _, su := range scored {
			assert.Equal(t, su.DocSim, su.Score)
			assert.Zero(t, su.AuxSim)
		}
	}
}

func TestScore_SanitizesInvalidComponents(t *testing.T) {
	embeddings := [][]float32{
		{float32(math.NaN()), 1},
		{float32(math.Inf(1)), float32(math.Inf(-1))},
	}

	scored, err := Score(embeddings, []float64{0, 1}, nil, 0)
	require.NoError(t, err)
	for _, su := range scored {
		assert.False(t, math.IsNaN(su.Score))
	}

	byIndex := map[int]float64{}
	for _, su := range scored {
		byIndex[su.Index] = su.Score
	}
	assert.InDelta(t, 1.0, byIndex[0], 1e-9)
	assert.InDelta(t, -1/math.Sqrt2, byIndex[1], 1e-9)
}

func TestScore_DimensionMismatch(t *testing.T) {
	_, err := Score([][]float32{{1, 0}, {1}}, []float64{1, 0}, nil, 0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Score([][]float32{{1, 0}, {0, 1}}, []float64{1, 0}, []float32{1, 0, 0}, 0.5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Score([][]float32{{1, 0}, {0, 1}}, []float64{1, 0}, []float32{1, 0, 0}, 0)
	assert.NoError(t, err, "unweighted aux is never inspected")
}

func indices(scored []ScoredUnit) []int {
	out := make([]int, len(scored))
	for i, su := range scored {
		out[i] = su.Index
	}
	return out
}
