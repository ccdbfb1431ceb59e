package analysis

import (
	"fmt"
	"math"
	"sort"

	"gridsight/pkg/contracts/domain"
)

const (
	maxOutlierInsights     = 2
	maxFlatlineInsights    = 1
	maxCorrelationInsights = 1
)

// Recommend runs the six insight rules over trend and statistics output and
// returns the merged list, ranked by descending |significance| and capped.
//
// Rules, in fixed order: biggest mover up, biggest mover down, highest
// volatility, flatline, outliers (at most 2), correlation (at most 1).
func Recommend(trends []domain.TrendResult, records []domain.Record, meta domain.SheetMeta, th Thresholds) []domain.Insight {
	valid := make([]domain.TrendResult, 0, len(trends))
	for _, t := range trends {
		if t.Trend != domain.TrendInsufficientData {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return []domain.Insight{}
	}

	r := recommender{records: records, meta: meta, thresholds: th}
	r.biggestMoverUp(valid)
	r.biggestMoverDown(valid)
	r.highVolatility(valid)
	r.flatline(valid)
	r.outliers(valid)
	r.correlation()

	sort.SliceStable(r.insights, func(i, j int) bool {
		return math.Abs(r.insights[i].Significance) > math.Abs(r.insights[j].Significance)
	})
	if len(r.insights) > th.MaxInsights {
		r.insights = r.insights[:th.MaxInsights]
	}
	return r.insights
}

type recommender struct {
	records    []domain.Record
	meta       domain.SheetMeta
	thresholds Thresholds
	insights   []domain.Insight
	idCounter  int
}

func (r *recommender) add(kind domain.InsightType, severity domain.InsightSeverity, title, description string, related []string, significance float64) {
	r.insights = append(r.insights, domain.Insight{
		ID:             fmt.Sprintf("insight-%d", r.idCounter),
		Type:           kind,
		Severity:       severity,
		Title:          truncate(title, 60),
		Description:    truncate(description, 200),
		RelatedColumns: related,
		Significance:   significance,
	})
	r.idCounter++
}

func (r *recommender) biggestMoverUp(valid []domain.TrendResult) {
	var best *domain.TrendResult
	for i, t := range valid {
		if t.Trend != domain.TrendRising {
			continue
		}
		if best == nil || t.ChangePercent > best.ChangePercent {
			best = &valid[i]
		}
	}
	if best == nil {
		return
	}
	r.add(domain.InsightBiggestMoverUp, domain.SeverityPositive,
		fmt.Sprintf("%s showing strong growth", best.ColumnName),
		fmt.Sprintf("%s increased by %.1f%% in the second half of the period (%.2f → %.2f)",
			best.ColumnName, best.ChangePercent, best.FirstHalfMean, best.SecondHalfMean),
		[]string{best.ColumnName}, best.ChangePercent)
}

func (r *recommender) biggestMoverDown(valid []domain.TrendResult) {
	var best *domain.TrendResult
	for i, t := range valid {
		if t.Trend != domain.TrendFalling {
			continue
		}
		if best == nil || math.Abs(t.ChangePercent) > math.Abs(best.ChangePercent) {
			best = &valid[i]
		}
	}
	if best == nil {
		return
	}
	r.add(domain.InsightBiggestMoverDown, domain.SeverityNegative,
		fmt.Sprintf("%s declining", best.ColumnName),
		fmt.Sprintf("%s dropped by %.1f%% in the second half of the period (%.2f → %.2f)",
			best.ColumnName, math.Abs(best.ChangePercent), best.FirstHalfMean, best.SecondHalfMean),
		[]string{best.ColumnName}, best.ChangePercent)
}

func (r *recommender) highVolatility(valid []domain.TrendResult) {
	var best *domain.TrendResult
	bestCV := 0.0
	for i, t := range valid {
		if t.Stats.Mean == 0 {
			continue
		}
		cv := t.Stats.StdDev / math.Abs(t.Stats.Mean)
		if cv <= r.thresholds.HighVolatilityCV {
			continue
		}
		if best == nil || cv > bestCV {
			best = &valid[i]
			bestCV = cv
		}
	}
	if best == nil {
		return
	}
	r.add(domain.InsightHighVolatility, domain.SeverityWarning,
		fmt.Sprintf("%s shows high variability", best.ColumnName),
		fmt.Sprintf("%s has high variability (CV: %.2f). Range: %.2f to %.2f",
			best.ColumnName, bestCV, best.Stats.Min, best.Stats.Max),
		[]string{best.ColumnName}, bestCV)
}

func (r *recommender) flatline(valid []domain.TrendResult) {
	for _, t := range valid {
		if t.Trend != domain.TrendFlat {
			continue
		}
		cv := 0.0
		if t.Stats.Mean != 0 {
			cv = t.Stats.StdDev / math.Abs(t.Stats.Mean)
		}
		if cv >= r.thresholds.FlatlineCV {
			continue
		}
		r.add(domain.InsightFlatline, domain.SeverityInfo,
			fmt.Sprintf("%s remains stable", t.ColumnName),
			fmt.Sprintf("%s has remained stable at ~%.2f with minimal variation (±%.2f)",
				t.ColumnName, t.Stats.Mean, t.Stats.StdDev),
			[]string{t.ColumnName}, cv)
		return // only one flatline reported
	}
}

func (r *recommender) outliers(valid []domain.TrendResult) {
	reported := 0
	for _, t := range valid {
		if t.Stats.StdDev == 0 {
			continue
		}
		values := r.columnValues(t.ColumnName)
		threshold := r.thresholds.OutlierStdDevs * t.Stats.StdDev
		for i, v := range values {
			deviation := math.Abs(v - t.Stats.Mean)
			if deviation <= threshold {
				continue
			}
			r.add(domain.InsightOutlier, domain.SeverityWarning,
				fmt.Sprintf("Outlier detected in %s", t.ColumnName),
				fmt.Sprintf("Row %d: %s = %.2f, which is %.1f standard deviations from the mean (%.2f)",
					i+1, t.ColumnName, v, deviation/t.Stats.StdDev, t.Stats.Mean),
				[]string{t.ColumnName}, deviation)
			reported++
			break // first outlier per column
		}
		if reported >= maxOutlierInsights {
			return
		}
	}
}

func (r *recommender) correlation() {
	indices := r.meta.NumericColumnIndices
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			col1 := r.meta.Columns[indices[i]]
			col2 := r.meta.Columns[indices[j]]

			x := r.columnValues(col1.Header)
			y := r.columnValues(col2.Header)
			n := min(len(x), len(y))
			if n < r.thresholds.MinTrendPoints {
				continue
			}

			corr := PearsonCorrelation(x[:n], y[:n])
			if math.Abs(corr) < r.thresholds.CorrelationMin {
				continue
			}

			direction := "positively"
			if corr < 0 {
				direction = "negatively"
			}
			r.add(domain.InsightCorrelation, domain.SeverityInfo,
				fmt.Sprintf("%s and %s appear correlated", col1.Header, col2.Header),
				fmt.Sprintf("%s and %s are %s correlated (r=%.2f), suggesting they may move together",
					col1.Header, col2.Header, direction, corr),
				[]string{col1.Header, col2.Header}, math.Abs(corr))
			return // first correlated pair only
		}
	}
}

func (r *recommender) columnValues(header string) []float64 {
	values := make([]float64, 0, len(r.records))
	for _, rec := range r.records {
		if v, ok := rec.NumberAt(header); ok {
			values = append(values, v)
		}
	}
	return values
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
