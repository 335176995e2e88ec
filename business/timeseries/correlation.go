package timeseries

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PearsonCorrelation returns the linear correlation of xs and ys. It is 0 when
// the series differ in length, have fewer than two points, or either has no spread.
func PearsonCorrelation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	if Variance(xs) == 0 || Variance(ys) == 0 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

// SpearmanCorrelation is the Pearson correlation of the ranks.
func SpearmanCorrelation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	return PearsonCorrelation(Ranks(xs), Ranks(ys))
}

// Ranks assigns 1-based ranks, averaging ties.
func Ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
