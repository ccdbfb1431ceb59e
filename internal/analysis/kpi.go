package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gridsight/pkg/contracts/domain"
)

// BuildKPIs derives current-vs-previous deltas and sparklines for every
// numeric column with enough values. Rows are ordered by the detected date
// column ascending when one exists, otherwise input order is preserved.
// Columns with fewer than the KPI minimum are omitted entirely.
func BuildKPIs(records []domain.Record, meta domain.SheetMeta, th Thresholds) []domain.KPI {
	ordered := orderByDate(records, meta)

	kpis := make([]domain.KPI, 0, len(meta.NumericColumnIndices))
	for _, idx := range meta.NumericColumnIndices {
		col := meta.Columns[idx]

		values := make([]float64, 0, len(ordered))
		for _, rec := range ordered {
			if v, ok := rec.NumberAt(col.Header); ok {
				values = append(values, v)
			}
		}
		if len(values) < th.MinKPIPoints {
			continue
		}

		current := values[len(values)-1]
		previous := values[len(values)-2]

		changePercent := 0.0
		if previous != 0 {
			changePercent = (current - previous) / math.Abs(previous) * 100
		}

		direction := "flat"
		if math.Abs(changePercent) >= 1 {
			if current > previous {
				direction = "up"
			} else {
				direction = "down"
			}
		}

		sparkline := values
		if len(sparkline) > th.MaxSparkline {
			sparkline = sparkline[len(sparkline)-th.MaxSparkline:]
		}

		kpis = append(kpis, domain.KPI{
			ColumnName:         col.Header,
			ColumnIndex:        col.Index,
			CurrentValue:       current,
			PreviousValue:      previous,
			ChangePercent:      changePercent,
			ChangeDirection:    direction,
			Sparkline:          sparkline,
			FormattedCurrent:   formatValue(current, col.IsPercentage),
			FormattedChange:    formatChange(changePercent),
			IsPercentageColumn: col.IsPercentage,
		})
	}
	return kpis
}

// orderByDate sorts records ascending by the detected date column.
// Records with missing or unparseable dates sort first.
func orderByDate(records []domain.Record, meta domain.SheetMeta) []domain.Record {
	if !meta.HasDateColumn() {
		return records
	}
	header := meta.DateHeader()

	ordered := make([]domain.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return recordTime(ordered[i], header).Before(recordTime(ordered[j], header))
	})
	return ordered
}

func recordTime(rec domain.Record, header string) time.Time {
	s, ok := rec.StringAt(header)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatValue renders a KPI value for display. Percentage columns hold
// fractional values and are shown multiplied back out with a percent sign.
func formatValue(v float64, isPercentage bool) string {
	if isPercentage {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return groupThousands(v)
	}
	return fmt.Sprintf("%.2f", v)
}

// formatChange renders a signed one-decimal percent change.
func formatChange(changePercent float64) string {
	if changePercent > 0 {
		return fmt.Sprintf("+%.1f%%", changePercent)
	}
	return fmt.Sprintf("%.1f%%", changePercent)
}

// groupThousands formats an integral float with comma separators.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
