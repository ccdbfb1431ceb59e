package analysis

import (
	"fmt"
	"math"
	"sort"

	"gridsight/pkg/contracts/domain"
)

const (
	maxLineSeries = 3
	maxBarSeries  = 5
)

// SelectChart picks the default chart for a sheet. Branches, in order:
// date column with multiple numeric columns (line), date column with one
// numeric column (area), category column without dates (bar by category),
// and a degraded numeric-only bar fallback.
func SelectChart(meta domain.SheetMeta, trends []domain.TrendResult) domain.ChartConfig {
	numericCount := len(meta.NumericColumnIndices)

	if meta.HasDateColumn() && numericCount >= 2 {
		return domain.ChartConfig{
			ChartType:     domain.ChartLine,
			XAxisColumn:   meta.DateHeader(),
			SeriesColumns: topMoverSeries(meta, trends),
			Title:         "Trends Over Time",
		}
	}

	if meta.HasDateColumn() && numericCount == 1 {
		header := meta.Columns[meta.NumericColumnIndices[0]].Header
		return domain.ChartConfig{
			ChartType:     domain.ChartArea,
			XAxisColumn:   meta.DateHeader(),
			SeriesColumns: []string{header},
			Title:         fmt.Sprintf("%s Over Time", header),
		}
	}

	if len(meta.CategoryColumnIndices) > 0 {
		category := meta.Columns[meta.CategoryColumnIndices[0]].Header
		return domain.ChartConfig{
			ChartType:     domain.ChartBar,
			XAxisColumn:   category,
			SeriesColumns: numericHeaders(meta, maxBarSeries),
			Title:         fmt.Sprintf("Comparison by %s", category),
		}
	}

	// Numeric-only, unstructured sheet: the first numeric header stands in
	// as the axis label and the rest become series.
	series := numericHeaders(meta, maxBarSeries)
	xAxis := "Value"
	if len(series) > 0 {
		xAxis = series[0]
		series = series[1:]
	}
	return domain.ChartConfig{
		ChartType:     domain.ChartBar,
		XAxisColumn:   xAxis,
		SeriesColumns: series,
		Title:         "Metric Comparison",
	}
}

// topMoverSeries returns the top 3 trends by |changePercent|, falling back
// to the first numeric columns when fewer than 3 qualify.
func topMoverSeries(meta domain.SheetMeta, trends []domain.TrendResult) []string {
	movers := make([]domain.TrendResult, 0, len(trends))
	for _, t := range trends {
		if t.Trend != domain.TrendInsufficientData {
			movers = append(movers, t)
		}
	}
	sort.SliceStable(movers, func(i, j int) bool {
		return math.Abs(movers[i].ChangePercent) > math.Abs(movers[j].ChangePercent)
	})

	if len(movers) >= maxLineSeries {
		series := make([]string, maxLineSeries)
		for i := 0; i < maxLineSeries; i++ {
			series[i] = movers[i].ColumnName
		}
		return series
	}
	return numericHeaders(meta, maxLineSeries)
}

func numericHeaders(meta domain.SheetMeta, limit int) []string {
	headers := make([]string, 0, limit)
	for _, idx := range meta.NumericColumnIndices {
		if len(headers) == limit {
			break
		}
		headers = append(headers, meta.Columns[idx].Header)
	}
	return headers
}
