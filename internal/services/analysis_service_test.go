package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsight/internal/analysis"
	"gridsight/internal/decoder"
	apperrors "gridsight/internal/errors"
	"gridsight/pkg/contracts/domain"
)

type fakePersister struct {
	jsonErr  error
	csvErr   error
	exported []string
}

func (f *fakePersister) ExportJSON(ctx context.Context, id string, result *domain.AnalysisResult) (string, error) {
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	f.exported = append(f.exported, id+".json")
	return "/exports/" + id + ".json", nil
}

func (f *fakePersister) ExportRecordsCSV(ctx context.Context, id string, result *domain.AnalysisResult) (string, error) {
	if f.csvErr != nil {
		return "", f.csvErr
	}
	f.exported = append(f.exported, id+".csv")
	return "/exports/" + id + ".csv", nil
}

type fakeNarrative struct {
	narrative *domain.Narrative
	status    domain.NarrativeStatus
}

func (f *fakeNarrative) Generate(ctx context.Context, meta domain.SheetMeta, insights domain.InsightsResult, records []domain.Record) (*domain.Narrative, domain.NarrativeStatus) {
	return f.narrative, f.status
}

func testGrid() domain.Grid {
	return domain.Grid{
		{"Date", "Revenue"},
		{"2024-01-15", "100"},
		{"2024-02-15", "200"},
		{"2024-03-15", "300"},
		{"2024-04-15", "400"},
	}
}

func newService(persister ResultPersister, narrative NarrativeGenerator) *AnalysisService {
	analyzer := analysis.NewAnalyzer(nil, analysis.Thresholds{}, analysis.Limits{})
	return NewAnalysisService(analyzer, persister, narrative, nil)
}

func TestAnalyzeGridStoresResult(t *testing.T) {
	persister := &fakePersister{}
	svc := newService(persister, nil)

	stored, err := svc.AnalyzeGrid(context.Background(), testGrid(), "sales.xlsx")
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "sales.xlsx", stored.Filename)
	assert.Equal(t, 4, stored.Result.SheetMeta.TotalRows)
	assert.Equal(t, domain.NarrativeSkipped, stored.NarrativeStatus)
	assert.Equal(t, "/exports/"+stored.ID+".json", stored.JSONPath)
	assert.Equal(t, "/exports/"+stored.ID+".csv", stored.CSVPath)

	got, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Same(t, stored, got)
}

func TestAnalyzeGridTerminalError(t *testing.T) {
	svc := newService(nil, nil)

	stored, err := svc.AnalyzeGrid(context.Background(), domain.Grid{}, "empty.csv")

	assert.Nil(t, stored)
	assert.ErrorIs(t, err, apperrors.ErrEmptyGrid)
}

func TestAnalyzeGridPersistenceFailureIsNonFatal(t *testing.T) {
	persister := &fakePersister{jsonErr: errors.New("disk full"), csvErr: errors.New("disk full")}
	svc := newService(persister, nil)

	stored, err := svc.AnalyzeGrid(context.Background(), testGrid(), "sales.xlsx")
	require.NoError(t, err)

	assert.Empty(t, stored.JSONPath)
	assert.Empty(t, stored.CSVPath)
}

func TestAnalyzeGridAttachesNarrative(t *testing.T) {
	narrative := &fakeNarrative{
		narrative: &domain.Narrative{ExecutiveSummary: "Revenue is growing."},
		status:    domain.NarrativeCompleted,
	}
	svc := newService(nil, narrative)

	stored, err := svc.AnalyzeGrid(context.Background(), testGrid(), "sales.xlsx")
	require.NoError(t, err)

	assert.Equal(t, domain.NarrativeCompleted, stored.NarrativeStatus)
	require.NotNil(t, stored.Narrative)
	assert.Equal(t, "Revenue is growing.", stored.Narrative.ExecutiveSummary)
}

func TestAnalyzeUploadCSV(t *testing.T) {
	svc := newService(nil, nil)

	stored, err := svc.AnalyzeUpload(context.Background(),
		strings.NewReader("Date,Revenue\n2024-01-15,100\n2024-02-15,200\n"), "report.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, stored.Result.SheetMeta.TotalRows)
}

func TestAnalyzeUploadUnsupportedFormat(t *testing.T) {
	svc := newService(nil, nil)

	_, err := svc.AnalyzeUpload(context.Background(), strings.NewReader("x"), "notes.txt")

	assert.ErrorIs(t, err, decoder.ErrUnsupportedFormat)
}

func TestGetUnknownID(t *testing.T) {
	svc := newService(nil, nil)

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc := newService(nil, nil)

	first, err := svc.AnalyzeGrid(context.Background(), testGrid(), "first.csv")
	require.NoError(t, err)
	second, err := svc.AnalyzeGrid(context.Background(), testGrid(), "second.csv")
	require.NoError(t, err)

	list := svc.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 2, svc.Count())
}
