package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsight/internal/infrastructure"
)

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	provider, err := infrastructure.InitializeMetrics("test", nil)
	require.NoError(t, err)

	mw, err := NewMetricsMiddleware(provider.Meter)
	require.NoError(t, err)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	scrape := httptest.NewRecorder()
	provider.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := scrape.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/brew"`)
	assert.Contains(t, body, `status_code="418"`)
}
