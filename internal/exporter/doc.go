// Package exporter persists analysis output to disk.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// ResultExporter: Writes a completed analysis as a JSON document and the
// normalized records as a CSV file under the configured exports directory.
//
// Example usage:
//
//	exp := exporter.NewResultExporter(cfg.Storage.ExportsDir, logger)
//	jsonPath, err := exp.ExportJSON(ctx, id, result)
//	csvPath, err := exp.ExportRecordsCSV(ctx, id, result)
package exporter
