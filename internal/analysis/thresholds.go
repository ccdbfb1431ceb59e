package analysis

// Thresholds holds the tunable heuristics used across the pipeline.
// The defaults reflect observed behavior on real-world business sheets;
// callers may recalibrate individual values.
type Thresholds struct {
	TrendChangePercent   float64 // half-to-half mean change for rising/falling, in percent
	VolatilityMultiplier float64 // second-half stddev multiple that flags volatile
	CategoryMaxUnique    int     // max unique values for a category column
	DateParseRate        float64 // min parse rate for a date column
	NumberParseRate      float64 // min parse rate for a number column
	CorrelationMin       float64 // min |r| to report a correlation insight
	OutlierStdDevs       float64 // deviations from mean that flag an outlier
	HighVolatilityCV     float64 // min coefficient of variation for the volatility insight
	FlatlineCV           float64 // max coefficient of variation for the flatline insight
	MinTrendPoints       int     // min values for trend and correlation analysis
	MinKPIPoints         int     // min values for a KPI
	TypeSampleSize       int     // values sampled per column for type detection
	MaxInsights          int     // cap on returned insights
	MaxSparkline         int     // trailing values kept per KPI sparkline
}

// DefaultThresholds returns the standard tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TrendChangePercent:   5,
		VolatilityMultiplier: 2,
		CategoryMaxUnique:    20,
		DateParseRate:        0.7,
		NumberParseRate:      0.8,
		CorrelationMin:       0.7,
		OutlierStdDevs:       3,
		HighVolatilityCV:     0.2,
		FlatlineCV:           0.05,
		MinTrendPoints:       4,
		MinKPIPoints:         2,
		TypeSampleSize:       100,
		MaxInsights:          6,
		MaxSparkline:         10,
	}
}

// Limits bounds the accepted input size. Exceeding either is a terminal error.
type Limits struct {
	MaxRows    int
	MaxColumns int
}

// DefaultLimits returns the standard input ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxRows:    100_000,
		MaxColumns: 50,
	}
}
