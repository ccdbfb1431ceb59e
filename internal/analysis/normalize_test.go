package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want string
		ok   bool
	}{
		{
			name: "decoded date passes through",
			cell: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			want: "2024-03-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "zero time rejected",
			cell: time.Time{},
			ok:   false,
		},
		{
			name: "day month year slashes",
			cell: "15/01/2025",
			want: "2025-01-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "day month year two digit year",
			cell: "15/01/25",
			want: "2025-01-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "ambiguous date prefers day before month",
			cell: "03/04/2024",
			want: "2024-04-03T00:00:00Z",
			ok:   true,
		},
		{
			name: "day abbreviated month year",
			cell: "15-Jan-25",
			want: "2025-01-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "strict iso",
			cell: "2024-06-30",
			want: "2024-06-30T00:00:00Z",
			ok:   true,
		},
		{
			name: "serial number string",
			cell: "45000",
			want: "2023-03-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "serial number float",
			cell: float64(45000),
			want: "2023-03-15T00:00:00Z",
			ok:   true,
		},
		{
			name: "serial at lower bound rejected",
			cell: "1",
			ok:   false,
		},
		{
			name: "serial outside year range rejected",
			cell: "10",
			ok:   false,
		},
		{
			name: "serial above upper bound rejected",
			cell: "80000",
			ok:   false,
		},
		{
			name: "separators gate off the serial path",
			cell: "45000-01",
			ok:   false,
		},
		{
			name: "invalid month rejected",
			cell: "15/13/2025",
			ok:   false,
		},
		{
			name: "plain text rejected",
			cell: "hello",
			ok:   false,
		},
		{
			name: "empty string rejected",
			cell: "",
			ok:   false,
		},
		{
			name: "nil rejected",
			cell: nil,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want float64
		ok   bool
	}{
		{
			name: "float passes through",
			cell: 1234.5,
			want: 1234.5,
			ok:   true,
		},
		{
			name: "rounds to four decimals",
			cell: 0.123456,
			want: 0.1235,
			ok:   true,
		},
		{
			name: "parenthesized negative",
			cell: "(1,234.50)",
			want: -1234.5,
			ok:   true,
		},
		{
			name: "percent sign stripped not converted",
			cell: "12.5%",
			want: 12.5,
			ok:   true,
		},
		{
			name: "currency and thousands separators",
			cell: "£1,000,000",
			want: 1000000,
			ok:   true,
		},
		{
			name: "euro symbol",
			cell: "€99.99",
			want: 99.99,
			ok:   true,
		},
		{
			name: "plain negative",
			cell: "-42",
			want: -42,
			ok:   true,
		},
		{
			name: "text rejected",
			cell: "n/a",
			ok:   false,
		},
		{
			name: "empty string rejected",
			cell: "",
			ok:   false,
		},
		{
			name: "nil rejected",
			cell: nil,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeNumber(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNormalizeNumberRejectsNonFinite(t *testing.T) {
	_, ok := NormalizeNumber(math.NaN())
	assert.False(t, ok)

	_, ok = NormalizeNumber(math.Inf(1))
	assert.False(t, ok)
}
