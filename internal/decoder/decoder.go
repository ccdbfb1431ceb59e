// Package decoder turns uploaded spreadsheet files into raw cell grids.
//
// Two formats are supported: xlsx workbooks via excelize and plain CSV.
// Decoding is deliberately dumb: it preserves each cell the way a user saw
// it (formatted text, numbers, dates) and leaves all interpretation to the
// analysis pipeline. Fully blank rows are dropped at this boundary.
package decoder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gridsight/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for file extensions outside the
// .xlsx/.csv allow-list.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Decode reads a spreadsheet from r and returns its first sheet as a grid.
// The format is chosen by the filename extension.
func Decode(r io.Reader, filename string) (domain.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return decodeWorkbook(data)
	case ".csv":
		return decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DecodeFile is a convenience wrapper over Decode for on-disk files.
func DecodeFile(path string) (domain.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

func decodeWorkbook(data []byte) (domain.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	grid := make(domain.Grid, 0, len(raw))
	for i, rawRow := range raw {
		cells := make([]any, len(rawRow))
		blank := true
		for j, rawVal := range rawRow {
			cell := typedCell(f, sheet, i, j, rawVal, cellAt(formatted, i, j))
			cells[j] = cell
			if cell != nil {
				blank = false
			}
		}
		if !blank {
			grid = append(grid, cells)
		}
	}
	return grid, nil
}

// typedCell picks the most faithful representation of a single cell. Date
// styled numeric cells become time.Time, unformatted numbers become floats,
// and everything else keeps its display text so currency symbols, grouping,
// and percent signs survive into classification.
func typedCell(f *excelize.File, sheet string, row, col int, raw, formatted string) any {
	if strings.TrimSpace(raw) == "" && strings.TrimSpace(formatted) == "" {
		return nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Shared string or boolean cell.
		if formatted != "" {
			return formatted
		}
		return raw
	}

	if isDateStyled(f, sheet, row, col) {
		if t, convErr := excelize.ExcelDateToTime(num, false); convErr == nil {
			return t.UTC()
		}
	}
	if formatted == "" || formatted == raw {
		return num
	}
	return formatted
}

// Builtin numFmt IDs that render a serial number as a date or time.
var dateNumFmtIDs = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	45: {}, 46: {}, 47: {},
	50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

func isDateStyled(f *excelize.File, sheet string, row, col int) bool {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if _, ok := dateNumFmtIDs[style.NumFmt]; ok {
		return true
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return false
}

// isDateFormatCode reports whether a custom number format code renders
// dates. Quoted literals and color specifiers are stripped first so codes
// like `"yield" 0.00` do not false-positive.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote := false
	inBracket := false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case !inQuote && !inBracket:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydhYDH")
}

func cellAt(rows [][]string, i, j int) string {
	if i < len(rows) && j < len(rows[i]) {
		return rows[i][j]
	}
	return ""
}

func decodeCSV(data []byte) (domain.Grid, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	grid := make(domain.Grid, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, len(row))
		blank := true
		for j, field := range row {
			if strings.TrimSpace(field) == "" {
				cells[j] = nil
				continue
			}
			cells[j] = field
			blank = false
		}
		if !blank {
			grid = append(grid, cells)
		}
	}
	return grid, nil
}
