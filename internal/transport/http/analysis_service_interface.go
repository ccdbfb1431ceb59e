package http

import (
	"context"
	"io"

	"gridsight/internal/services"
)

// AnalysisServiceInterface defines the service surface the analysis handler
// depends on.
type AnalysisServiceInterface interface {
	AnalyzeUpload(ctx context.Context, r io.Reader, filename string) (*services.StoredAnalysis, error)
	Get(ctx context.Context, id string) (*services.StoredAnalysis, error)
	List(ctx context.Context) []services.AnalysisSummary
}
