package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeminiConfig for the generateContent client.
type GeminiConfig struct {
	APIKey  string
	BaseURL string // default https://generativelanguage.googleapis.com/v1beta
	Model   string // e.g. "gemini-pro"
	Timeout time.Duration
}

// GeminiClient implements Analyzer against the Gemini REST API.
type GeminiClient struct {
	cfg    GeminiConfig
	http   *http.Client
	logger *slog.Logger
}

func NewGeminiClient(cfg GeminiConfig, logger *slog.Logger) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *GeminiClient) Analyze(ctx context.Context, text string) (Analysis, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.analyze.start",
		"provider", "gemini",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{
				{"text": systemPrompt + "\n\n" + BuildAnalysisPrompt(text)},
			}},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("llm.analyze.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Analysis{}, fmt.Errorf("gemini http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("gemini response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Analysis{}, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Analysis{}, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			TotalTokenCount int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		return Analysis{}, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		return Analysis{}, fmt.Errorf("no candidates in gemini response")
	}

	c.logger.Info("llm.analyze.ok",
		"req_id", rid,
		"tokens", gc.UsageMetadata.TotalTokenCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Analysis{
		Text:   strings.TrimSpace(gc.Candidates[0].Content.Parts[0].Text),
		Model:  c.cfg.Model,
		Tokens: gc.UsageMetadata.TotalTokenCount,
	}, nil
}
