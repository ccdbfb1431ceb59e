package domain

// Trend classifies the trajectory of a numeric column.
type Trend string

const (
	TrendRising           Trend = "rising"
	TrendFalling          Trend = "falling"
	TrendFlat             Trend = "flat"
	TrendVolatile         Trend = "volatile"
	TrendInsufficientData Trend = "insufficient_data"
)

// Stats holds descriptive statistics for a numeric series.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// TrendResult is the trend classification for one numeric column.
type TrendResult struct {
	ColumnName     string  `json:"column_name"`
	ColumnIndex    int     `json:"column_index"`
	Trend          Trend   `json:"trend"`
	FirstHalfMean  float64 `json:"first_half_mean"`
	SecondHalfMean float64 `json:"second_half_mean"`
	ChangePercent  float64 `json:"change_percent"`
	Stats          Stats   `json:"stats"`
}

// KPI summarizes the current-vs-previous movement of one numeric column.
type KPI struct {
	ColumnName         string    `json:"column_name"`
	ColumnIndex        int       `json:"column_index"`
	CurrentValue       float64   `json:"current_value"`
	PreviousValue      float64   `json:"previous_value"`
	ChangePercent      float64   `json:"change_percent"`
	ChangeDirection    string    `json:"change_direction"` // "up", "down", "flat"
	Sparkline          []float64 `json:"sparkline"`        // last <=10 ordered values
	FormattedCurrent   string    `json:"formatted_current"`
	FormattedChange    string    `json:"formatted_change"`
	IsPercentageColumn bool      `json:"is_percentage_column"`
}

// InsightType identifies which recommendation rule produced an insight.
type InsightType string

const (
	InsightBiggestMoverUp   InsightType = "biggest_mover_up"
	InsightBiggestMoverDown InsightType = "biggest_mover_down"
	InsightHighVolatility   InsightType = "high_volatility"
	InsightFlatline         InsightType = "flatline"
	InsightOutlier          InsightType = "outlier"
	InsightCorrelation      InsightType = "correlation"
)

// InsightSeverity grades an insight for display.
type InsightSeverity string

const (
	SeverityPositive InsightSeverity = "positive"
	SeverityNegative InsightSeverity = "negative"
	SeverityWarning  InsightSeverity = "warning"
	SeverityInfo     InsightSeverity = "info"
)

// Insight is a single ranked, human-readable finding.
// Significance is a rule-specific magnitude used only to rank insights.
type Insight struct {
	ID             string          `json:"id"`
	Type           InsightType     `json:"type"`
	Severity       InsightSeverity `json:"severity"`
	Title          string          `json:"title"`       // <=60 chars
	Description    string          `json:"description"` // <=200 chars
	RelatedColumns []string        `json:"related_columns"`
	Significance   float64         `json:"significance"`
}

// ChartType is a supported headline chart kind.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartArea ChartType = "area"
	ChartBar  ChartType = "bar"
)

// ChartConfig is the default chart recommendation for a sheet.
type ChartConfig struct {
	ChartType     ChartType `json:"chart_type"`
	XAxisColumn   string    `json:"x_axis_column"`
	SeriesColumns []string  `json:"series_columns"` // <=5
	Title         string    `json:"title"`
}

// InsightsResult bundles everything derived from the normalized data.
type InsightsResult struct {
	KPIs          []KPI         `json:"kpis"`
	Trends        []TrendResult `json:"trends"`
	Insights      []Insight     `json:"insights"` // <=6, sorted by |significance| desc
	HeadlineChart ChartConfig   `json:"headline_chart"`
	GeneratedAt   string        `json:"generated_at"`
}

// AnalysisResult is the complete output of one pipeline invocation.
type AnalysisResult struct {
	SheetMeta SheetMeta      `json:"sheet_meta"`
	Records   []Record       `json:"records"`
	Insights  InsightsResult `json:"insights"`
	Warnings  []string       `json:"warnings"`
}
