// Command analyze runs the analysis pipeline against a spreadsheet file
// and prints the result as JSON, optionally exporting JSON and CSV files
// to a directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gridsight/internal/analysis"
	"gridsight/internal/config"
	"gridsight/internal/decoder"
	"gridsight/internal/exporter"
	"gridsight/internal/infrastructure"
)

func main() {
	outDir := flag.String("out", "", "directory for exported JSON and CSV files (prints to stdout when empty)")
	maxRows := flag.Int("max-rows", 0, "row ceiling override (0 uses the configured default)")
	maxColumns := flag.Int("max-columns", 0, "column ceiling override (0 uses the configured default)")
	quiet := flag.Bool("quiet", false, "suppress log output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.xlsx|file.csv>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *quiet {
		cfg.Logging.Level = "error"
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
	}

	limits := analysis.Limits{
		MaxRows:    cfg.Analysis.MaxRows,
		MaxColumns: cfg.Analysis.MaxColumns,
	}
	if *maxRows > 0 {
		limits.MaxRows = *maxRows
	}
	if *maxColumns > 0 {
		limits.MaxColumns = *maxColumns
	}

	// Every log line from this run carries the same trace id.
	ctx := infrastructure.EnsureTraceID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	logger.InfoContext(ctx, "decoding file", slog.String("path", inputPath))
	grid, err := decoder.DecodeFile(inputPath)
	if err != nil {
		logger.ErrorContext(ctx, "decode failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(logger, analysis.DefaultThresholds(), limits)
	result, err := analyzer.Analyze(ctx, grid)
	if err != nil {
		logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "analysis complete",
		slog.Int("rows", result.SheetMeta.TotalRows),
		slog.Int("columns", result.SheetMeta.TotalColumns),
		slog.Int("insights", len(result.Insights.Insights)))

	if *outDir != "" {
		name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		ex := exporter.NewResultExporter(*outDir, logger)

		jsonPath, err := ex.ExportJSON(ctx, name, result)
		if err != nil {
			logger.ErrorContext(ctx, "JSON export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		csvPath, err := ex.ExportRecordsCSV(ctx, name, result)
		if err != nil {
			logger.ErrorContext(ctx, "CSV export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		fmt.Printf("Exported %s\n", jsonPath)
		fmt.Printf("Exported %s\n", csvPath)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.ErrorContext(ctx, "encode failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
