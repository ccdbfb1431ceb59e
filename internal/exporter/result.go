package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gridsight/pkg/contracts/domain"
)

// ResultExporter writes completed analyses to the exports directory: the
// full result as JSON and the normalized records as CSV.
type ResultExporter struct {
	writer  *CSVWriter
	baseDir string
	logger  *slog.Logger
}

// NewResultExporter creates a result exporter rooted at baseDir.
func NewResultExporter(baseDir string, logger *slog.Logger) *ResultExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultExporter{
		writer:  NewCSVWriter(baseDir),
		baseDir: baseDir,
		logger:  logger,
	}
}

// ExportJSON writes the full analysis result as an indented JSON document
// named <id>.json and returns the written path.
func (e *ResultExporter) ExportJSON(ctx context.Context, id string, result *domain.AnalysisResult) (string, error) {
	path := filepath.Join(e.baseDir, id+".json")
	if err := os.MkdirAll(e.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create exports directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result file: %w", err)
	}

	e.logger.InfoContext(ctx, "analysis result exported",
		slog.String("path", path),
		slog.Int("bytes", len(data)))
	return path, nil
}

// ExportRecordsCSV writes the normalized records as <id>.csv, one column per
// resolved header, and returns the written path. Records are streamed row by
// row so large sheets never materialize a second copy in memory.
func (e *ResultExporter) ExportRecordsCSV(ctx context.Context, id string, result *domain.AnalysisResult) (string, error) {
	name := id + ".csv"
	stream, err := e.writer.CreateStreamWriter(name, result.SheetMeta.Headers)
	if err != nil {
		return "", fmt.Errorf("create records csv: %w", err)
	}

	row := make([]string, len(result.SheetMeta.Headers))
	for _, record := range result.Records {
		for j, header := range result.SheetMeta.Headers {
			row[j] = formatCell(record[header])
		}
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return "", fmt.Errorf("write records csv: %w", err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("flush records csv: %w", err)
	}

	path := filepath.Join(e.baseDir, name)
	e.logger.InfoContext(ctx, "records exported",
		slog.String("path", path),
		slog.Int("rows", len(result.Records)))
	return path, nil
}

// formatCell renders a normalized record value for CSV output. Absent values
// become empty fields; floats keep their shortest exact representation.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
