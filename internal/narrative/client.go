// Package narrative adds an optional model-written summary on top of the
// rule-based insights. Every failure here is non-fatal: the deterministic
// analysis result stands on its own and the narrative only enriches it.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"gridsight/internal/config"
	"gridsight/pkg/contracts/domain"
)

// Client calls a chat-completion style HTTP endpoint to generate a
// narrative for a completed analysis.
type Client struct {
	cfg        config.NarrativeConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a narrative client. A nil logger falls back to
// slog.Default.
func NewClient(cfg config.NarrativeConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate builds the prompts, calls the configured endpoint, and parses the
// structured narrative. It never returns an error: a disabled or
// misconfigured client yields status skipped, and any request, timeout, or
// parse failure yields status failed with a nil narrative.
func (c *Client) Generate(ctx context.Context, meta domain.SheetMeta, insights domain.InsightsResult, records []domain.Record) (*domain.Narrative, domain.NarrativeStatus) {
	if !c.cfg.Enabled || c.cfg.Endpoint == "" {
		c.logger.DebugContext(ctx, "narrative generation skipped",
			slog.Bool("enabled", c.cfg.Enabled))
		return nil, domain.NarrativeSkipped
	}

	text, err := c.complete(ctx, BuildSystemPrompt(), BuildUserPrompt(meta, insights, records, c.cfg.TokenBudget))
	if err != nil {
		c.logger.WarnContext(ctx, "narrative generation failed",
			slog.String("error", err.Error()))
		return nil, domain.NarrativeFailed
	}

	n, err := ParseResponse(text)
	if err != nil {
		c.logger.WarnContext(ctx, "narrative response rejected",
			slog.String("error", err.Error()))
		return nil, domain.NarrativeFailed
	}

	c.logger.InfoContext(ctx, "narrative generated",
		slog.Int("patterns", len(n.CrossColumnPatterns)),
		slog.Int("actions", len(n.ActionItems)))
	return n, domain.NarrativeCompleted
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call narrative endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("narrative endpoint returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("response contains no text content")
}
