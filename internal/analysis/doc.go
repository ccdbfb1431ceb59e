// Package analysis turns a raw, messily-formatted cell grid into a typed,
// analyzable structure: resolved headers, per-column type classification,
// normalized values, descriptive statistics, trend classification, a ranked
// set of insights, and a default chart recommendation.
//
// # Architecture
//
// The pipeline runs leaves-first:
//
//  1. ResolveHeaders locates or synthesizes the header row
//  2. ClassifyColumn types each column via sampled parse rates
//  3. NormalizeDate / NormalizeNumber coerce individual cells
//  4. ComputeStats and DetectTrend describe each numeric column
//  5. BuildKPIs, Recommend, and SelectChart consume the results
//
// # Usage
//
//	analyzer := analysis.NewAnalyzer(logger, analysis.DefaultThresholds(), analysis.DefaultLimits())
//	result, err := analyzer.Analyze(ctx, grid)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Determinism
//
// The pipeline is single-threaded, synchronous, and side-effect free apart
// from logging: identical input always yields identical output, so one
// Analyzer may serve concurrent invocations without coordination. All I/O
// (decoding files, persisting results, narrative generation) happens outside
// this package.
//
// # Error Handling
//
// Terminal conditions (empty grid, header-only grid, size ceilings) return a
// single descriptive error with no partial result. Individual unparseable
// cells become absent values; a date column with a high per-value failure
// rate is collected as a warning and processing continues.
package analysis
