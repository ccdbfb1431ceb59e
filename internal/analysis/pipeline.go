package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	apperrors "gridsight/internal/errors"
	"gridsight/pkg/contracts/domain"
)

// Analyzer turns a raw cell grid into typed records, statistics, and ranked
// insights. It is deterministic and side-effect free apart from logging:
// identical grids always yield identical results, so a single Analyzer is
// safe for concurrent use.
type Analyzer struct {
	logger     *slog.Logger
	thresholds Thresholds
	limits     Limits
}

// NewAnalyzer creates an analyzer with the given tuning. A nil logger falls
// back to slog.Default; zero thresholds and limits fall back to defaults.
func NewAnalyzer(logger *slog.Logger, th Thresholds, limits Limits) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	return &Analyzer{
		logger:     logger,
		thresholds: th,
		limits:     limits,
	}
}

// Thresholds returns the analyzer's active tuning.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze runs the full pipeline over a raw grid: header resolution, column
// classification, value normalization, statistics, trends, KPIs, insights,
// and chart selection. Terminal errors (empty grid, zero data rows, size
// ceilings) return no partial result; per-cell parse failures become absent
// values and date columns with a high failure rate become warnings.
func (a *Analyzer) Analyze(ctx context.Context, grid domain.Grid) (*domain.AnalysisResult, error) {
	if len(grid) == 0 {
		return nil, apperrors.ErrEmptyGrid
	}
	if len(grid) > a.limits.MaxRows {
		return nil, apperrors.NewRowLimitError(len(grid), a.limits.MaxRows)
	}

	resolution := ResolveHeaders(grid)
	if len(resolution.DataRows) == 0 {
		return nil, apperrors.ErrNoDataRows
	}
	if len(resolution.Headers) > a.limits.MaxColumns {
		return nil, apperrors.NewColumnLimitError(len(resolution.Headers), a.limits.MaxColumns)
	}

	a.logger.InfoContext(ctx, "headers resolved",
		slog.Int("header_row", resolution.HeaderIndex),
		slog.Int("columns", len(resolution.Headers)),
		slog.Int("data_rows", len(resolution.DataRows)))

	columns := a.classifyColumns(resolution)
	meta := buildSheetMeta(resolution, columns)
	records, warnings := a.normalizeRecords(ctx, resolution, meta)

	meta.TotalRows = len(records)

	trends := a.detectTrends(records, meta)
	insights := domain.InsightsResult{
		KPIs:          BuildKPIs(records, meta, a.thresholds),
		Trends:        trends,
		Insights:      Recommend(trends, records, meta, a.thresholds),
		HeadlineChart: SelectChart(meta, trends),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	a.logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows", meta.TotalRows),
		slog.Int("kpis", len(insights.KPIs)),
		slog.Int("insights", len(insights.Insights)),
		slog.String("chart", string(insights.HeadlineChart.ChartType)))

	return &domain.AnalysisResult{
		SheetMeta: meta,
		Records:   records,
		Insights:  insights,
		Warnings:  warnings,
	}, nil
}

func (a *Analyzer) classifyColumns(resolution HeaderResolution) []domain.ColumnMeta {
	columns := make([]domain.ColumnMeta, len(resolution.Headers))
	for idx, header := range resolution.Headers {
		values := make([]any, len(resolution.DataRows))
		for rowIdx, row := range resolution.DataRows {
			if idx < len(row) {
				values[rowIdx] = row[idx]
			}
		}
		columns[idx] = ClassifyColumn(values, header, idx, a.thresholds)
	}
	return columns
}

func buildSheetMeta(resolution HeaderResolution, columns []domain.ColumnMeta) domain.SheetMeta {
	meta := domain.SheetMeta{
		Headers:         resolution.Headers,
		Columns:         columns,
		DateColumnIndex: -1,
		TotalColumns:    len(resolution.Headers),
	}
	for _, col := range columns {
		switch col.DetectedType {
		case domain.ColumnTypeDate:
			if meta.DateColumnIndex < 0 {
				meta.DateColumnIndex = col.Index
			}
		case domain.ColumnTypeNumber:
			meta.NumericColumnIndices = append(meta.NumericColumnIndices, col.Index)
		case domain.ColumnTypeCategory:
			meta.CategoryColumnIndices = append(meta.CategoryColumnIndices, col.Index)
		}
	}
	return meta
}

// normalizeRecords produces one Record per data row with values coerced to
// the detected column types. Unparseable cells become nil. Date columns
// whose failure rate exceeds 10% are reported as warnings, not errors.
func (a *Analyzer) normalizeRecords(ctx context.Context, resolution HeaderResolution, meta domain.SheetMeta) ([]domain.Record, []string) {
	records := make([]domain.Record, len(resolution.DataRows))
	dateFailures := make(map[int]int)

	for rowIdx, row := range resolution.DataRows {
		record := make(domain.Record, len(meta.Columns))
		for _, col := range meta.Columns {
			var cell any
			if col.Index < len(row) {
				cell = row[col.Index]
			}
			value, failed := normalizeCell(cell, col)
			record[col.Header] = value
			if failed {
				dateFailures[col.Index]++
			}
		}
		records[rowIdx] = record
	}

	var warnings []string
	for _, col := range meta.Columns {
		if col.DetectedType != domain.ColumnTypeDate {
			continue
		}
		failureRate := float64(dateFailures[col.Index]) / float64(len(records))
		if failureRate > 0.1 {
			warnings = append(warnings, fmt.Sprintf(
				"Column %q: %d%% of date values failed to parse",
				col.Header, int(math.Round(failureRate*100))))
			a.logger.WarnContext(ctx, "date column has high parse failure rate",
				slog.String("column", col.Header),
				slog.Float64("failure_rate", failureRate))
		}
	}
	return records, warnings
}

// normalizeCell coerces a single cell to its column type. The second return
// reports a date parse failure for warning accounting; it counts every
// non-date cell in a date column, including empties, matching how failure
// rate is measured against total rows.
func normalizeCell(cell any, col domain.ColumnMeta) (any, bool) {
	switch col.DetectedType {
	case domain.ColumnTypeDate:
		iso, ok := NormalizeDate(cell)
		if !ok {
			return nil, true
		}
		return iso, false
	case domain.ColumnTypeNumber:
		num, ok := NormalizeNumber(cell)
		if !ok {
			return nil, false
		}
		// Percentage columns store fractions; the percent sign was stripped
		// during numeric normalization.
		if col.IsPercentage && strings.Contains(cellString(cell), "%") {
			num = num / 100
		}
		return num, false
	default:
		if isEmptyCell(cell) {
			return nil, false
		}
		if s, ok := cell.(string); ok {
			return strings.TrimSpace(s), false
		}
		return cell, false
	}
}

func (a *Analyzer) detectTrends(records []domain.Record, meta domain.SheetMeta) []domain.TrendResult {
	trends := make([]domain.TrendResult, 0, len(meta.NumericColumnIndices))
	for _, idx := range meta.NumericColumnIndices {
		col := meta.Columns[idx]
		values := make([]float64, 0, len(records))
		for _, rec := range records {
			if v, ok := rec.NumberAt(col.Header); ok {
				values = append(values, v)
			}
		}
		trends = append(trends, DetectTrend(col.Header, col.Index, values, a.thresholds))
	}
	return trends
}
