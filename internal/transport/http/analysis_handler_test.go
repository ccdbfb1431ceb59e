package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "gridsight/internal/errors"
	"gridsight/internal/services"
	"gridsight/pkg/contracts/domain"
)

type fakeAnalysisService struct {
	analyzeErr error
	stored     map[string]*services.StoredAnalysis
	lastUpload string
}

func newFakeService() *fakeAnalysisService {
	return &fakeAnalysisService{stored: make(map[string]*services.StoredAnalysis)}
}

func (f *fakeAnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, filename string) (*services.StoredAnalysis, error) {
	f.lastUpload = filename
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	stored := &services.StoredAnalysis{
		ID:              "test-id",
		Filename:        filename,
		CreatedAt:       time.Now().UTC(),
		Result:          &domain.AnalysisResult{},
		NarrativeStatus: domain.NarrativeSkipped,
	}
	f.stored[stored.ID] = stored
	return stored, nil
}

func (f *fakeAnalysisService) Get(ctx context.Context, id string) (*services.StoredAnalysis, error) {
	stored, ok := f.stored[id]
	if !ok {
		return nil, services.ErrAnalysisNotFound
	}
	return stored, nil
}

func (f *fakeAnalysisService) List(ctx context.Context) []services.AnalysisSummary {
	summaries := make([]services.AnalysisSummary, 0, len(f.stored))
	for _, s := range f.stored {
		summaries = append(summaries, s.Summary())
	}
	return summaries
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func newTestHandler(svc AnalysisServiceInterface, maxBytes int64) *AnalysisHandler {
	return NewAnalysisHandler(svc, maxBytes, nil)
}

func TestCreateAnalysis(t *testing.T) {
	svc := newFakeService()
	handler := newTestHandler(svc, 1<<20)

	body, contentType := multipartUpload(t, "file", "sales.csv", "Date,Revenue\n2024-01-15,100\n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp services.StoredAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-id", resp.ID)
	assert.Equal(t, "sales.csv", resp.Filename)
	assert.Equal(t, "sales.csv", svc.lastUpload)
}

func TestCreateAnalysisMissingFile(t *testing.T) {
	handler := newTestHandler(newFakeService(), 1<<20)

	body, contentType := multipartUpload(t, "wrong_field", "sales.csv", "data")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILE")
}

func TestCreateAnalysisUnsupportedExtension(t *testing.T) {
	handler := newTestHandler(newFakeService(), 1<<20)

	body, contentType := multipartUpload(t, "file", "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_FILE")
}

func TestCreateAnalysisTerminalError(t *testing.T) {
	svc := newFakeService()
	svc.analyzeErr = apierrors.ErrEmptyGrid
	handler := newTestHandler(svc, 1<<20)

	body, contentType := multipartUpload(t, "file", "empty.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ANALYSIS_FAILED")
}

func TestCreateAnalysisTooLarge(t *testing.T) {
	handler := newTestHandler(newFakeService(), 64)

	body, contentType := multipartUpload(t, "file", "big.csv", strings.Repeat("x", 4096))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE_TOO_LARGE")
}

func TestGetAnalysis(t *testing.T) {
	svc := newFakeService()
	svc.stored["abc"] = &services.StoredAnalysis{
		ID:       "abc",
		Filename: "sales.xlsx",
		Result:   &domain.AnalysisResult{},
	}
	handler := newTestHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/abc", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales.xlsx")
}

func TestGetAnalysisNotFound(t *testing.T) {
	handler := newTestHandler(newFakeService(), 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ANALYSIS_NOT_FOUND")
}

func TestListAnalyses(t *testing.T) {
	svc := newFakeService()
	svc.stored["abc"] = &services.StoredAnalysis{
		ID:       "abc",
		Filename: "sales.xlsx",
		Result:   &domain.AnalysisResult{},
	}
	handler := newTestHandler(svc, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count    int                        `json:"count"`
		Analyses []services.AnalysisSummary `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Analyses, 1)
	assert.Equal(t, "abc", resp.Analyses[0].ID)
}

func TestHealthHandler(t *testing.T) {
	health := services.NewHealthService("1.2.3", nil)
	handler := NewHealthHandler(health, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}
