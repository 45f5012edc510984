package compression

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidIndex is returned when a scored unit points outside the unit
// sequence.
var ErrInvalidIndex = errors.New("scored index out of range")

// DefaultKeepRatio applies to levels outside 1..10.
const DefaultKeepRatio = 0.5

var keepRatios = map[int]float64{
	1:  0.9,
	2:  0.8,
	3:  0.7,
	4:  0.6,
	5:  0.5,
	6:  0.4,
	7:  0.3,
	8:  0.2,
	9:  0.15,
	10: 0.1,
}

// KeepRatio maps a compression level to the fraction of units retained.
func KeepRatio(level int) float64 {
	if r, ok := keepRatios[level]; ok {
		return r
	}
	return DefaultKeepRatio
}

// KeepCount returns how many of n units survive ratio. For n > 1 the result
// is within [1, n-1].
func KeepCount(n int, ratio float64) int {
	if n <= 1 {
		return n
	}
	if math.IsNaN(ratio) {
		ratio = DefaultKeepRatio
	}
	k := int(math.Floor(float64(n) * ratio))
	return max(1, min(n-1, k))
}

// Select keeps the KeepCount highest scoring units in their original order.
// scored must already be sorted by score descending. With fewer than two
// units or scores the units are returned unchanged.
func Select(units []string, scored []ScoredUnit, keepRatio float64) ([]string, error) {
	if len(units) < 2 || len(scored) < 2 {
		return units, nil
	}

	n := KeepCount(len(units), keepRatio)
	if n > len(scored) {
		n = len(scored)
	}

	chosen := make([]int, 0, n)
	seen := make(map[int]bool, n)
	for _, su := range scored {
		if len(chosen) == n {
			break
		}
		if su.Index < 0 || su.Index >= len(units) {
			return nil, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, su.Index, len(units))
		}
		if seen[su.Index] {
			continue
		}
		seen[su.Index] = true
		chosen = append(chosen, su.Index)
	}
	sort.Ints(chosen)

	out := make([]string, len(chosen))
	for i, idx := range chosen {
		out[i] = units[idx]
	}
	return out, nil
}
