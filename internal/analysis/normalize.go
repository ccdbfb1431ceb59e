package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from this epoch. Using Dec 30 1899
// absorbs the historical leap-year bug in legacy spreadsheet formats.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	serialMin = 1
	serialMax = 73000
	// Serial conversions landing outside this year range are rejected as
	// ordinary numbers that merely look like day counts.
	serialMinYear = 1950
	serialMaxYear = 2100

	msPerDay = 86_400_000
)

var (
	dmySlashPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	dMonYPattern    = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{2,4})$`)
	isoPattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	pureNumber      = regexp.MustCompile(`^\d+(\.\d+)?$`)

	parenNumber   = regexp.MustCompile(`^\((\d+(?:,\d{3})*(?:\.\d+)?)\)$`)
	numberSymbols = strings.NewReplacer("£", "", "$", "", "€", "", "¥", "", ",", "", "%", "")
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate converts a raw cell into an ISO-8601 date string.
// It accepts decoded time.Time values, day/month/year and day-Mon-year
// strings (day before month for ambiguous inputs, 2-digit years as 20xx),
// strict year-month-day strings, and bare spreadsheet serial numbers.
// The second return is false when the cell is not a recognizable date.
func NormalizeDate(cell any) (string, bool) {
	switch v := cell.(type) {
	case nil:
		return "", false
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.UTC().Format(time.RFC3339), true
	case float64:
		return serialToISO(v)
	case int:
		return serialToISO(float64(v))
	case int64:
		return serialToISO(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		if strings.ContainsAny(s, "/-") {
			return parseSeparatedDate(s)
		}
		// The serial path is gated off whenever separators are present so
		// genuine date strings are never misread as day counts.
		if pureNumber.MatchString(s) {
			serial, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return "", false
			}
			return serialToISO(serial)
		}
		return "", false
	default:
		return "", false
	}
}

func parseSeparatedDate(s string) (string, bool) {
	if m := dmySlashPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := expandYear(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return d.Format(time.RFC3339), true
		}
		return "", false
	}

	if m := dMonYPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthAbbrevs[strings.ToLower(m[2])]
		if !ok {
			return "", false
		}
		year := expandYear(m[3])
		if day >= 1 && day <= 31 {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			return d.Format(time.RFC3339), true
		}
		return "", false
	}

	if isoPattern.MatchString(s) {
		if d, err := time.Parse(time.RFC3339, s); err == nil {
			return d.UTC().Format(time.RFC3339), true
		}
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return d.Format(time.RFC3339), true
		}
	}

	return "", false
}

func expandYear(s string) int {
	year, _ := strconv.Atoi(s)
	if len(s) == 2 {
		year += 2000
	}
	return year
}

func serialToISO(serial float64) (string, bool) {
	if math.IsNaN(serial) || serial <= serialMin || serial >= serialMax {
		return "", false
	}
	d := serialEpoch.Add(time.Duration(serial*msPerDay) * time.Millisecond)
	if d.Year() < serialMinYear || d.Year() > serialMaxYear {
		return "", false
	}
	return d.Format(time.RFC3339), true
}

// NormalizeNumber converts a raw cell into a float64 rounded to 4 decimal
// places. Strings may carry currency symbols, thousands separators, percent
// signs, or accounting-style parentheses for negatives. The second return is
// false when the cell is not a recognizable number.
func NormalizeNumber(cell any) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return round4(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if m := parenNumber.FindStringSubmatch(s); m != nil {
			s = "-" + m[1]
		}
		s = strings.TrimSpace(numberSymbols.Replace(s))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return round4(parsed), true
	default:
		return 0, false
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// isEmptyCell reports whether a cell carries no value at all.
func isEmptyCell(cell any) bool {
	if cell == nil {
		return true
	}
	if s, ok := cell.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// cellString renders a cell the way it arrived, for samples and uniqueness.
func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return strings.TrimSpace(strFallback(v))
	}
}

func strFallback(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
}
