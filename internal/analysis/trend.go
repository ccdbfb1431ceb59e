package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"gridsight/pkg/contracts/domain"
)

// DetectTrend classifies the trajectory of a numeric column.
//
// Series shorter than the trend minimum are "insufficient_data" with zeroed
// derived stats. Otherwise the series is split at its midpoint and the
// half means compared. Volatility is checked first: a second half whose
// standard deviation exceeds the configured multiple of a non-zero first
// half overrides the directional classification.
func DetectTrend(name string, index int, values []float64, th Thresholds) domain.TrendResult {
	result := domain.TrendResult{
		ColumnName:  name,
		ColumnIndex: index,
		Trend:       domain.TrendInsufficientData,
	}
	if len(values) < th.MinTrendPoints {
		return result
	}

	result.Stats = ComputeStats(values)

	mid := len(values) / 2
	firstHalf := values[:mid]
	secondHalf := values[mid:]

	result.FirstHalfMean = stat.Mean(firstHalf, nil)
	result.SecondHalfMean = stat.Mean(secondHalf, nil)
	if result.FirstHalfMean != 0 {
		result.ChangePercent = (result.SecondHalfMean - result.FirstHalfMean) /
			math.Abs(result.FirstHalfMean) * 100
	}

	firstStdDev := stat.PopStdDev(firstHalf, nil)
	secondStdDev := stat.PopStdDev(secondHalf, nil)
	if firstStdDev > 0 && secondStdDev > th.VolatilityMultiplier*firstStdDev {
		result.Trend = domain.TrendVolatile
		return result
	}

	switch {
	case result.ChangePercent > th.TrendChangePercent:
		result.Trend = domain.TrendRising
	case result.ChangePercent < -th.TrendChangePercent:
		result.Trend = domain.TrendFalling
	default:
		result.Trend = domain.TrendFlat
	}
	return result
}
