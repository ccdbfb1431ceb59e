package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsight/internal/config"
	"gridsight/pkg/contracts/domain"
)

func narrativeConfig(endpoint string) config.NarrativeConfig {
	return config.NarrativeConfig{
		Enabled:     true,
		Endpoint:    endpoint,
		APIKey:      "test-key",
		Model:       "test-model",
		Timeout:     2 * time.Second,
		MaxTokens:   512,
		TokenBudget: 100_000,
	}
}

func testMeta() domain.SheetMeta {
	return domain.SheetMeta{
		Headers: []string{"Revenue"},
		Columns: []domain.ColumnMeta{{
			Header:       "Revenue",
			DetectedType: domain.ColumnTypeNumber,
		}},
		DateColumnIndex:      -1,
		NumericColumnIndices: []int{0},
		TotalColumns:         1,
		TotalRows:            1,
	}
}

func modelReply(text string) string {
	payload := map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestGenerateCompleted(t *testing.T) {
	var captured generateRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(modelReply(validResponse)))
	}))
	defer server.Close()

	client := NewClient(narrativeConfig(server.URL), nil)
	n, status := client.Generate(context.Background(), testMeta(), domain.InsightsResult{}, []domain.Record{{"Revenue": 100.0}})

	assert.Equal(t, domain.NarrativeCompleted, status)
	require.NotNil(t, n)
	assert.Equal(t, "Revenue grew steadily across the period.", n.ExecutiveSummary)

	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 512, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "## Sheet Overview")
	assert.Contains(t, captured.System, "data analyst")
}

func TestGenerateSkippedWhenDisabled(t *testing.T) {
	cfg := narrativeConfig("http://localhost:1")
	cfg.Enabled = false

	client := NewClient(cfg, nil)
	n, status := client.Generate(context.Background(), testMeta(), domain.InsightsResult{}, nil)

	assert.Nil(t, n)
	assert.Equal(t, domain.NarrativeSkipped, status)
}

func TestGenerateFailedOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(narrativeConfig(server.URL), nil)
	n, status := client.Generate(context.Background(), testMeta(), domain.InsightsResult{}, nil)

	assert.Nil(t, n)
	assert.Equal(t, domain.NarrativeFailed, status)
}

func TestGenerateFailedOnUnparseableNarrative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(modelReply("sorry, I cannot help with that")))
	}))
	defer server.Close()

	client := NewClient(narrativeConfig(server.URL), nil)
	n, status := client.Generate(context.Background(), testMeta(), domain.InsightsResult{}, nil)

	assert.Nil(t, n)
	assert.Equal(t, domain.NarrativeFailed, status)
}

func TestGenerateFailedOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(modelReply(validResponse)))
	}))
	defer server.Close()

	cfg := narrativeConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond

	client := NewClient(cfg, nil)
	n, status := client.Generate(context.Background(), testMeta(), domain.InsightsResult{}, nil)

	assert.Nil(t, n)
	assert.Equal(t, domain.NarrativeFailed, status)
}
