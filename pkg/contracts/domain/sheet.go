package domain

// Grid is the raw, untyped cell grid produced by a file decoder.
// Cells are strings, float64 numbers, time.Time dates, or nil for absent.
type Grid [][]any

// ColumnType classifies the detected shape of a column.
type ColumnType string

const (
	ColumnTypeDate     ColumnType = "date"
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeCategory ColumnType = "category"
	ColumnTypeText     ColumnType = "text"
)

// ColumnMeta describes a single resolved column.
type ColumnMeta struct {
	Index        int        `json:"index"`
	Header       string     `json:"header"`
	DetectedType ColumnType `json:"detected_type"`
	SampleValues []string   `json:"sample_values"` // up to 5 raw values for display
	NullCount    int        `json:"null_count"`
	UniqueCount  int        `json:"unique_count"`
	IsPercentage bool       `json:"is_percentage"`
}

// SheetMeta describes the resolved structure of a whole sheet.
// DateColumnIndex is -1 when no date column was detected.
type SheetMeta struct {
	Headers               []string     `json:"headers"`
	Columns               []ColumnMeta `json:"columns"`
	DateColumnIndex       int          `json:"date_column_index"`
	NumericColumnIndices  []int        `json:"numeric_column_indices"`
	CategoryColumnIndices []int        `json:"category_column_indices"`
	TotalRows             int          `json:"total_rows"`
	TotalColumns          int          `json:"total_columns"`
}

// HasDateColumn reports whether a date column was detected.
func (m SheetMeta) HasDateColumn() bool {
	return m.DateColumnIndex >= 0
}

// DateHeader returns the header of the detected date column, or "" if none.
func (m SheetMeta) DateHeader() string {
	if !m.HasDateColumn() {
		return ""
	}
	return m.Columns[m.DateColumnIndex].Header
}

// Record is one normalized data row keyed by header. Values are ISO-8601
// date strings, float64 numbers, trimmed strings, or nil for absent cells.
type Record map[string]any

// NumberAt returns the numeric value for a header, if present.
func (r Record) NumberAt(header string) (float64, bool) {
	v, ok := r[header].(float64)
	return v, ok
}

// StringAt returns the string value for a header, if present.
func (r Record) StringAt(header string) (string, bool) {
	v, ok := r[header].(string)
	return v, ok
}
