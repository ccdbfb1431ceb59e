package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gridsight/internal/analysis"
	"gridsight/internal/decoder"
	"gridsight/internal/infrastructure"
	"gridsight/pkg/contracts/domain"
)

// ResultPersister writes completed analyses to durable storage.
type ResultPersister interface {
	ExportJSON(ctx context.Context, id string, result *domain.AnalysisResult) (string, error)
	ExportRecordsCSV(ctx context.Context, id string, result *domain.AnalysisResult) (string, error)
}

// NarrativeGenerator produces the optional model-written narrative.
type NarrativeGenerator interface {
	Generate(ctx context.Context, meta domain.SheetMeta, insights domain.InsightsResult, records []domain.Record) (*domain.Narrative, domain.NarrativeStatus)
}

// StoredAnalysis is a completed analysis held in the in-memory index.
type StoredAnalysis struct {
	ID              string                 `json:"id"`
	Filename        string                 `json:"filename"`
	CreatedAt       time.Time              `json:"created_at"`
	Result          *domain.AnalysisResult `json:"result"`
	Narrative       *domain.Narrative      `json:"narrative,omitempty"`
	NarrativeStatus domain.NarrativeStatus `json:"narrative_status"`
	JSONPath        string                 `json:"json_path,omitempty"`
	CSVPath         string                 `json:"csv_path,omitempty"`
}

// Summary returns the listing view of the analysis, without records or
// insight payloads.
func (a *StoredAnalysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:              a.ID,
		Filename:        a.Filename,
		CreatedAt:       a.CreatedAt,
		TotalRows:       a.Result.SheetMeta.TotalRows,
		TotalColumns:    a.Result.SheetMeta.TotalColumns,
		NarrativeStatus: a.NarrativeStatus,
	}
}

// AnalysisSummary is the compact form used by list endpoints.
type AnalysisSummary struct {
	ID              string                 `json:"id"`
	Filename        string                 `json:"filename"`
	CreatedAt       time.Time              `json:"created_at"`
	TotalRows       int                    `json:"total_rows"`
	TotalColumns    int                    `json:"total_columns"`
	NarrativeStatus domain.NarrativeStatus `json:"narrative_status"`
}

// AnalysisService orchestrates decode, analysis, persistence, and narrative
// generation, and indexes completed analyses by id.
type AnalysisService struct {
	analyzer  *analysis.Analyzer
	persister ResultPersister
	narrative NarrativeGenerator
	logger    *slog.Logger

	mu    sync.RWMutex
	store map[string]*StoredAnalysis
	order []string
}

// NewAnalysisService creates the service. The persister and narrative
// generator are optional; a nil logger falls back to slog.Default.
func NewAnalysisService(analyzer *analysis.Analyzer, persister ResultPersister, narrative NarrativeGenerator, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		analyzer:  analyzer,
		persister: persister,
		narrative: narrative,
		logger:    infrastructure.WithComponent(logger, "analysis_service"),
		store:     make(map[string]*StoredAnalysis),
	}
}

// AnalyzeUpload decodes an uploaded file and runs the full analysis flow.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, filename string) (*StoredAnalysis, error) {
	grid, err := decoder.Decode(r, filename)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return s.AnalyzeGrid(ctx, grid, filename)
}

// AnalyzeGrid runs the analysis pipeline over an already-decoded grid,
// persists the result, attaches the optional narrative, and stores the
// completed analysis. Terminal analysis errors are returned unwrapped so
// callers can classify them; persistence and narrative failures are
// non-fatal.
func (s *AnalysisService) AnalyzeGrid(ctx context.Context, grid domain.Grid, filename string) (*StoredAnalysis, error) {
	started := time.Now()

	result, err := s.analyzer.Analyze(ctx, grid)
	if err != nil {
		return nil, err
	}

	stored := &StoredAnalysis{
		ID:              uuid.New().String(),
		Filename:        filename,
		CreatedAt:       time.Now().UTC(),
		Result:          result,
		NarrativeStatus: domain.NarrativeSkipped,
	}

	if s.persister != nil {
		if path, err := s.persister.ExportJSON(ctx, stored.ID, result); err != nil {
			infrastructure.WithError(s.logger, err).WarnContext(ctx, "result persistence failed",
				slog.String("analysis_id", stored.ID))
		} else {
			stored.JSONPath = path
		}
		if path, err := s.persister.ExportRecordsCSV(ctx, stored.ID, result); err != nil {
			infrastructure.WithError(s.logger, err).WarnContext(ctx, "records export failed",
				slog.String("analysis_id", stored.ID))
		} else {
			stored.CSVPath = path
		}
	}

	if s.narrative != nil {
		stored.Narrative, stored.NarrativeStatus = s.narrative.Generate(ctx, result.SheetMeta, result.Insights, result.Records)
	}

	s.mu.Lock()
	s.store[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "analysis stored",
		slog.String("analysis_id", stored.ID),
		slog.String("filename", filename),
		slog.Int("rows", result.SheetMeta.TotalRows),
		slog.String("narrative_status", string(stored.NarrativeStatus)),
		slog.Duration("elapsed", time.Since(started)))

	return stored, nil
}

// Get returns a stored analysis by id.
func (s *AnalysisService) Get(ctx context.Context, id string) (*StoredAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.store[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	return stored, nil
}

// List returns summaries of all stored analyses, newest first.
func (s *AnalysisService) List(ctx context.Context) []AnalysisSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]AnalysisSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		summaries = append(summaries, s.store[s.order[i]].Summary())
	}
	return summaries
}

// Count returns the number of stored analyses.
func (s *AnalysisService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}
