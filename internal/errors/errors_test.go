package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"missing file", ErrMissingFile, http.StatusBadRequest, "MISSING_FILE"},
		{"unsupported file", ErrUnsupportedFile, http.StatusBadRequest, "UNSUPPORTED_FILE"},
		{"analysis not found", ErrAnalysisNotFound, http.StatusNotFound, "ANALYSIS_NOT_FOUND"},
		{"file too large", ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"internal server", ErrInternalServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestErrorResponseRender(t *testing.T) {
	apiErr := AnalysisFailedError(ErrEmptyGrid)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, render.Render(rec, req, NewErrorResponse(apiErr)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
			Details   string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ANALYSIS_FAILED", envelope.Error.ErrorCode)
	assert.Equal(t, "grid contains no data", envelope.Error.Details)
}

func TestLimitError(t *testing.T) {
	err := NewRowLimitError(150_000, 100_000)
	assert.Equal(t, "rows", err.Dimension)
	assert.Equal(t, "grid exceeds maximum rows limit: 150000 > 100000", err.Error())

	colErr := NewColumnLimitError(80, 50)
	assert.Equal(t, "columns", colErr.Dimension)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(ErrEmptyGrid))
	assert.True(t, IsTerminal(ErrNoDataRows))
	assert.True(t, IsTerminal(NewRowLimitError(2, 1)))
	assert.True(t, IsTerminal(fmt.Errorf("analyze: %w", ErrEmptyGrid)))
	assert.False(t, IsTerminal(errors.New("transient failure")))
	assert.False(t, IsTerminal(nil))
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("port", "must be between 1 and 65535")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "port", detail.Field)
}
