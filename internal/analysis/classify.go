package analysis

import (
	"strings"

	"gridsight/pkg/contracts/domain"
)

const maxSampleValues = 5

// ClassifyColumn detects the type of a column from its raw values.
//
// Rules, in order: date when the sampled date-parse rate meets the date
// threshold, number when the sampled number-parse rate meets the number
// threshold (flagging percentage formatting), category when the unique-value
// count is small, text otherwise. Date and number checks run first so that
// currency- or percentage-formatted columns are never miscategorized by
// unique count alone.
func ClassifyColumn(values []any, header string, index int, th Thresholds) domain.ColumnMeta {
	nonEmpty := make([]any, 0, len(values))
	for _, v := range values {
		if !isEmptyCell(v) {
			nonEmpty = append(nonEmpty, v)
		}
	}
	nullCount := len(values) - len(nonEmpty)

	unique := make(map[string]struct{}, len(nonEmpty))
	for _, v := range nonEmpty {
		unique[cellString(v)] = struct{}{}
	}

	meta := domain.ColumnMeta{
		Index:        index,
		Header:       header,
		DetectedType: domain.ColumnTypeText,
		SampleValues: sampleStrings(nonEmpty),
		NullCount:    nullCount,
		UniqueCount:  len(unique),
	}

	if len(nonEmpty) == 0 {
		meta.SampleValues = []string{}
		meta.UniqueCount = 0
		return meta
	}

	sampleSize := min(th.TypeSampleSize, len(nonEmpty))
	sample := nonEmpty[:sampleSize]

	dateHits := 0
	for _, v := range sample {
		if _, ok := NormalizeDate(v); ok {
			dateHits++
		}
	}
	if float64(dateHits)/float64(sampleSize) >= th.DateParseRate {
		meta.DetectedType = domain.ColumnTypeDate
		return meta
	}

	numberHits := 0
	hasPercent := false
	for _, v := range sample {
		if _, ok := NormalizeNumber(v); ok {
			numberHits++
		}
		if strings.Contains(cellString(v), "%") {
			hasPercent = true
		}
	}
	if float64(numberHits)/float64(sampleSize) >= th.NumberParseRate {
		meta.DetectedType = domain.ColumnTypeNumber
		meta.IsPercentage = hasPercent
		return meta
	}

	if len(unique) <= th.CategoryMaxUnique {
		meta.DetectedType = domain.ColumnTypeCategory
	}
	return meta
}

func sampleStrings(values []any) []string {
	samples := make([]string, 0, maxSampleValues)
	for _, v := range values {
		if len(samples) == maxSampleValues {
			break
		}
		samples = append(samples, cellString(v))
	}
	return samples
}
