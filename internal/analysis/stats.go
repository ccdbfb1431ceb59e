package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"gridsight/pkg/contracts/domain"
)

// ComputeStats returns descriptive statistics for a numeric series.
// The standard deviation is the population form (divisor n). An empty
// series yields all zeros.
func ComputeStats(values []float64) domain.Stats {
	if len(values) == 0 {
		return domain.Stats{}
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return domain.Stats{
		Min:    minVal,
		Max:    maxVal,
		Mean:   stat.Mean(values, nil),
		Median: median,
		StdDev: stat.PopStdDev(values, nil),
	}
}

// PearsonCorrelation returns the Pearson r between two equal-length series,
// clamped to [-1, 1]. It returns 0 for mismatched lengths, empty input, or
// when either series has zero variance.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	if stat.PopVariance(x, nil) == 0 || stat.PopVariance(y, nil) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}
