package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   struct {
			min, max, mean, median, stdDev float64
		}
	}{
		{
			name:   "even count",
			values: []float64{1, 2, 3, 4},
			want: struct{ min, max, mean, median, stdDev float64 }{
				min: 1, max: 4, mean: 2.5, median: 2.5, stdDev: 1.1180339887,
			},
		},
		{
			name:   "odd count",
			values: []float64{5, 1, 3},
			want: struct{ min, max, mean, median, stdDev float64 }{
				min: 1, max: 5, mean: 3, median: 3, stdDev: 1.632993162,
			},
		},
		{
			name:   "constant series",
			values: []float64{7, 7, 7},
			want: struct{ min, max, mean, median, stdDev float64 }{
				min: 7, max: 7, mean: 7, median: 7, stdDev: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStats(tt.values)
			assert.InDelta(t, tt.want.min, stats.Min, 1e-9)
			assert.InDelta(t, tt.want.max, stats.Max, 1e-9)
			assert.InDelta(t, tt.want.mean, stats.Mean, 1e-9)
			assert.InDelta(t, tt.want.median, stats.Median, 1e-9)
			assert.InDelta(t, tt.want.stdDev, stats.StdDev, 1e-6)
		})
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.Min)
	assert.Zero(t, stats.Max)
	assert.Zero(t, stats.Mean)
	assert.Zero(t, stats.Median)
	assert.Zero(t, stats.StdDev)
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		want float64
	}{
		{
			name: "perfect positive",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{2, 4, 6, 8},
			want: 1,
		},
		{
			name: "perfect negative",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{8, 6, 4, 2},
			want: -1,
		},
		{
			name: "zero variance returns zero",
			x:    []float64{5, 5, 5, 5},
			y:    []float64{1, 2, 3, 4},
			want: 0,
		},
		{
			name: "mismatched lengths return zero",
			x:    []float64{1, 2, 3},
			y:    []float64{1, 2},
			want: 0,
		},
		{
			name: "empty returns zero",
			x:    nil,
			y:    nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PearsonCorrelation(tt.x, tt.y), 1e-9)
		})
	}
}
