package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gridsight/pkg/contracts/domain"
)

const (
	maxHeaderSearchRows = 10
	maxInferSearchRows  = 5
	maxHeaderLength     = 50
)

var (
	dateLikeHeader = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec|\d{1,2}[/-]\d{1,2}|q[1-4])`)
	numericLooking = regexp.MustCompile(`^[\d,.$£€-]+$`)
	numericOrParen = regexp.MustCompile(`^[\d,.$£€()-]+$`)
)

// HeaderResolution is the outcome of locating or synthesizing the header row.
// HeaderIndex is -1 when no explicit header row exists in the grid.
type HeaderResolution struct {
	HeaderIndex int
	Headers     []string
	DataRows    [][]any
}

// headerStrategy inspects the grid and either claims it (ok=true) or passes.
type headerStrategy func(grid domain.Grid) (HeaderResolution, bool)

// ResolveHeaders locates the header row and the first data row in a messy
// grid. Strategies are tried in priority order: an explicit label row, a
// column-per-period date header row, a label-plus-values layout behind title
// rows, and finally synthesized generic column names.
func ResolveHeaders(grid domain.Grid) HeaderResolution {
	strategies := []headerStrategy{
		findLabelHeaderRow,
		findDateHeaderRow,
		inferHeadersFromData,
	}
	for _, strategy := range strategies {
		if res, ok := strategy(grid); ok {
			return res
		}
	}
	return synthesizeHeaders(grid)
}

// findLabelHeaderRow scans the first rows for one dominated by plain string
// cells: >50% non-empty and >30% of the row's width plain strings.
func findLabelHeaderRow(grid domain.Grid) (HeaderResolution, bool) {
	limit := min(maxHeaderSearchRows, len(grid))
	for i := 0; i < limit; i++ {
		row := grid[i]
		if len(row) == 0 {
			continue
		}
		nonEmpty := 0
		plainStrings := 0
		for _, cell := range row {
			if isEmptyCell(cell) {
				continue
			}
			nonEmpty++
			if _, isString := cell.(string); isString {
				plainStrings++
			}
		}
		if float64(nonEmpty) > float64(len(row))*0.5 && float64(plainStrings) > float64(len(row))*0.3 {
			return HeaderResolution{
				HeaderIndex: i,
				Headers:     cleanHeaders(rawHeaderStrings(row)),
				DataRows:    grid[i+1:],
			}, true
		}
	}
	return HeaderResolution{}, false
}

// findDateHeaderRow handles financial-report layouts where columns represent
// periods: a row with at least 3 date-like cells covering >20% of its width
// becomes the header, with dates formatted as "Mon YYYY".
func findDateHeaderRow(grid domain.Grid) (HeaderResolution, bool) {
	limit := min(maxHeaderSearchRows, len(grid))
	for i := 0; i < limit; i++ {
		row := grid[i]
		dateCount := 0
		for _, cell := range row {
			if isDateHeaderCell(cell) {
				dateCount++
			}
		}
		if dateCount < 3 || float64(dateCount) <= float64(len(row))*0.2 {
			continue
		}

		headers := make([]string, len(row))
		for idx, cell := range row {
			switch {
			case isDateHeaderCell(cell):
				headers[idx] = formatDateHeader(cell)
			case !isEmptyCell(cell):
				headers[idx] = rawHeaderString(cell)
			default:
				headers[idx] = generateColumnName(idx)
			}
		}

		// Data begins at the first subsequent row that carries a number.
		dataStart := i + 1
		for j := i + 1; j < len(grid); j++ {
			if rowHasNumericCell(grid[j], numericLooking) {
				dataStart = j
				break
			}
		}

		return HeaderResolution{
			HeaderIndex: i,
			Headers:     cleanHeaders(headers),
			DataRows:    grid[dataStart:],
		}, true
	}
	return HeaderResolution{}, false
}

// inferHeadersFromData handles label-plus-values sheets preceded by title
// rows: the first sufficiently filled row whose first cell is non-numeric
// text and whose remaining cells are mostly numeric marks the start of data.
// Headers are synthesized since no header row exists.
func inferHeadersFromData(grid domain.Grid) (HeaderResolution, bool) {
	if len(grid) < 2 {
		return HeaderResolution{}, false
	}

	dataStart := 0
	limit := min(maxInferSearchRows, len(grid))
	for i := 0; i < limit; i++ {
		row := grid[i]
		nonEmpty := 0
		for _, cell := range row {
			if !isEmptyCell(cell) {
				nonEmpty++
			}
		}
		if float64(nonEmpty) <= float64(len(row))*0.3 {
			continue
		}

		first, isString := firstCellText(row)
		if !isString || first == "" {
			continue
		}
		if _, numeric := NormalizeNumber(first); numeric {
			continue
		}

		numericCells := 0
		for _, cell := range row[1:] {
			if isNumericCell(cell, numericOrParen) {
				numericCells++
			}
		}
		if float64(numericCells) > float64(len(row))*0.3 {
			dataStart = i
			break
		}
	}

	// Only claim the grid when title rows were actually skipped.
	if dataStart == 0 {
		return HeaderResolution{}, false
	}

	firstDataRow := grid[dataStart]
	headers := make([]string, len(firstDataRow))
	for idx := range firstDataRow {
		if idx == 0 {
			headers[idx] = "Label"
		} else {
			headers[idx] = generateColumnName(idx)
		}
	}

	return HeaderResolution{
		HeaderIndex: -1,
		Headers:     cleanHeaders(headers),
		DataRows:    grid[dataStart:],
	}, true
}

// synthesizeHeaders is the final fallback: generic names sized to row 0,
// with all rows treated as data.
func synthesizeHeaders(grid domain.Grid) HeaderResolution {
	width := 0
	if len(grid) > 0 {
		width = len(grid[0])
	}
	headers := make([]string, width)
	for idx := range headers {
		headers[idx] = generateColumnName(idx)
	}
	return HeaderResolution{
		HeaderIndex: -1,
		Headers:     cleanHeaders(headers),
		DataRows:    grid,
	}
}

func firstCellText(row []any) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	s, ok := row[0].(string)
	return strings.TrimSpace(s), ok
}

func isDateHeaderCell(cell any) bool {
	switch v := cell.(type) {
	case time.Time:
		return !v.IsZero()
	case string:
		return dateLikeHeader.MatchString(strings.TrimSpace(v))
	default:
		return false
	}
}

func formatDateHeader(cell any) string {
	if t, ok := cell.(time.Time); ok {
		return t.Format("Jan 2006")
	}
	return rawHeaderString(cell)
}

func rowHasNumericCell(row []any, pattern *regexp.Regexp) bool {
	for _, cell := range row {
		if isNumericCell(cell, pattern) {
			return true
		}
	}
	return false
}

func isNumericCell(cell any, pattern *regexp.Regexp) bool {
	switch v := cell.(type) {
	case float64, int, int64:
		return true
	case string:
		s := strings.TrimSpace(v)
		return s != "" && pattern.MatchString(s)
	default:
		return false
	}
}

func rawHeaderStrings(row []any) []string {
	headers := make([]string, len(row))
	for idx, cell := range row {
		headers[idx] = rawHeaderString(cell)
	}
	return headers
}

// rawHeaderString renders a header cell, formatting decoded dates as
// year-month-day instead of their verbose default representation.
func rawHeaderString(cell any) string {
	if t, ok := cell.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return cellString(cell)
}

// generateColumnName produces generic cyclic column names:
// Column_A..Column_Z, Column_A1, Column_B1, and so on.
func generateColumnName(idx int) string {
	letter := rune('A' + idx%26)
	if idx >= 26 {
		return fmt.Sprintf("Column_%c%d", letter, idx/26)
	}
	return fmt.Sprintf("Column_%c", letter)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanHeaders collapses whitespace, truncates overly long names, fills in
// empty names, and deduplicates collisions with a numeric suffix.
func cleanHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	cleaned := make([]string, 0, len(raw))

	for _, header := range raw {
		header = strings.TrimSpace(whitespaceRun.ReplaceAllString(header, " "))
		if r := []rune(header); len(r) > maxHeaderLength {
			header = string(r[:maxHeaderLength-3]) + "..."
		}
		if header == "" {
			header = generateColumnName(len(cleaned))
		}
		if count, dup := seen[header]; dup {
			seen[header] = count + 1
			cleaned = append(cleaned, fmt.Sprintf("%s_%d", header, count+1))
		} else {
			seen[header] = 1
			cleaned = append(cleaned, header)
		}
	}
	return cleaned
}
