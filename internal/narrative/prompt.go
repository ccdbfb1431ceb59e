package narrative

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gridsight/pkg/contracts/domain"
)

const (
	maxFirstRows       = 50
	maxLastRows        = 20
	maxCategoryColumns = 2
	maxNumericColumns  = 10

	// Rough size estimate per cell when deciding whether the full dataset
	// fits the token budget.
	tokensPerCell = 5
)

const systemPrompt = `You are a data analyst reviewing a spreadsheet upload for an internal business team. You receive:
1. Column metadata (names, types, sample values)
2. Pre-computed statistics (KPIs, trends, correlations)
3. A sample of the actual data

Your job:
- Write a 3-5 sentence executive summary of what the data shows (max 1000 characters)
- Identify 2-3 cross-column patterns the rule-based engine might miss (max 300 characters each)
- Suggest 2-3 specific, actionable next steps the team should consider (max 300 characters each)
- Flag any data quality concerns such as missing values, suspicious outliers, or inconsistent formatting (max 200 characters each)

Rules:
- Be specific: reference actual column names and numbers
- Write in plain business English, not technical jargon
- Be concise, the team is busy
- CRITICAL: Respect character limits strictly (concerns: 200 chars max, patterns/actions: 300 chars max)
- If the data is too limited to draw conclusions, say so honestly
- Never invent data points that are not in the provided sample
- Respond in valid JSON matching the required schema`

// BuildSystemPrompt returns the fixed analyst role prompt.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt renders sheet metadata, pre-computed insights, and a
// token-budget-limited data sample into a single user prompt.
func BuildUserPrompt(meta domain.SheetMeta, insights domain.InsightsResult, records []domain.Record, tokenBudget int) string {
	sample := prepareSample(records, meta, insights, tokenBudget)

	// Split into first/last sections only when the two cannot overlap;
	// anything shorter goes into a single section.
	first := sample
	var last []domain.Record
	if len(sample) >= maxFirstRows+maxLastRows {
		first = sample[:maxFirstRows]
		last = sample[len(sample)-maxLastRows:]
	}

	dateColumn := "None"
	if meta.HasDateColumn() {
		dateColumn = meta.DateHeader()
	}

	var numericNames []string
	for _, idx := range meta.NumericColumnIndices {
		numericNames = append(numericNames, meta.Columns[idx].Header)
	}
	numericColumns := strings.Join(numericNames, ", ")
	if numericColumns == "" {
		numericColumns = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Sheet Overview\n")
	fmt.Fprintf(&b, "- %d rows, %d columns\n", meta.TotalRows, meta.TotalColumns)
	fmt.Fprintf(&b, "- Columns: %s\n", strings.Join(meta.Headers, ", "))
	fmt.Fprintf(&b, "- Date column: %s\n", dateColumn)
	fmt.Fprintf(&b, "- Numeric columns: %s\n", numericColumns)

	b.WriteString("\n## Pre-Computed KPIs\n")
	if len(insights.KPIs) == 0 {
		b.WriteString("No KPIs available\n")
	}
	for _, k := range insights.KPIs {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", k.ColumnName, k.FormattedCurrent, k.FormattedChange)
	}

	b.WriteString("\n## Detected Trends\n")
	if len(insights.Trends) == 0 {
		b.WriteString("No trends detected\n")
	}
	for _, t := range insights.Trends {
		fmt.Fprintf(&b, "- %s: %s (%.1f%% change)\n", t.ColumnName, t.Trend, t.ChangePercent)
	}

	b.WriteString("\n## Rule-Based Insights\n")
	if len(insights.Insights) == 0 {
		b.WriteString("No insights generated\n")
	}
	for _, in := range insights.Insights {
		fmt.Fprintf(&b, "- [%s] %s\n", in.Type, in.Description)
	}

	fmt.Fprintf(&b, "\n## Data Sample (first %d rows)\n%s\n", len(first), compactJSON(first))
	if len(last) > 0 {
		fmt.Fprintf(&b, "\n## Data Sample (last %d rows)\n%s\n", len(last), compactJSON(last))
	}

	b.WriteString(`
Respond with valid JSON matching this schema:
{
  "executiveSummary": "string (3-5 sentences)",
  "crossColumnPatterns": ["string", "string"],
  "actionItems": ["string", "string"],
  "dataQualityConcerns": ["string"] or []
}`)

	return b.String()
}

// prepareSample returns the records to include in the prompt. Small datasets
// pass through untouched; larger ones are pruned to the date column, up to 2
// category columns, the 10 numeric columns with the largest |changePercent|,
// and the first 50 plus last 20 rows.
func prepareSample(records []domain.Record, meta domain.SheetMeta, insights domain.InsightsResult, tokenBudget int) []domain.Record {
	estimatedTokens := len(records) * meta.TotalColumns * tokensPerCell
	if estimatedTokens < tokenBudget {
		return records
	}

	keep := make(map[string]struct{})
	if meta.HasDateColumn() {
		keep[meta.DateHeader()] = struct{}{}
	}
	for i, idx := range meta.CategoryColumnIndices {
		if i == maxCategoryColumns {
			break
		}
		keep[meta.Columns[idx].Header] = struct{}{}
	}

	kpis := make([]domain.KPI, len(insights.KPIs))
	copy(kpis, insights.KPIs)
	sort.SliceStable(kpis, func(i, j int) bool {
		return math.Abs(kpis[i].ChangePercent) > math.Abs(kpis[j].ChangePercent)
	})
	for i, k := range kpis {
		if i == maxNumericColumns {
			break
		}
		keep[k.ColumnName] = struct{}{}
	}

	filtered := make([]domain.Record, len(records))
	for i, record := range records {
		slim := make(domain.Record, len(keep))
		for header := range keep {
			if v, ok := record[header]; ok {
				slim[header] = v
			}
		}
		filtered[i] = slim
	}

	if len(filtered) <= maxFirstRows+maxLastRows {
		return filtered
	}
	truncated := make([]domain.Record, 0, maxFirstRows+maxLastRows)
	truncated = append(truncated, filtered[:maxFirstRows]...)
	truncated = append(truncated, filtered[len(filtered)-maxLastRows:]...)
	return truncated
}

func compactJSON(records []domain.Record) string {
	data, err := json.Marshal(records)
	if err != nil {
		return "[]"
	}
	return string(data)
}
