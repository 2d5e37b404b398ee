package querygen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPClient implements LLMClient against a self-hosted completion
// gateway, using the same no-auth, JSON-in/JSON-out idiom as
// internal/adapter's MetaSearch provider.
type HTTPClient struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func NewHTTPClient(baseURL, model string, maxTokens int, temperature float64, httpClient *http.Client) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, model: model, maxTokens: maxTokens, temperature: temperature, httpClient: httpClient}
}

func (c *HTTPClient) ModelID() string { return c.model }

func (c *HTTPClient) GenerateQueries(ctx context.Context, prompt string, n int) ([]string, error) {
	reqBody, err := json.Marshal(map[string]any{
		"model":       c.model,
		"prompt":      prompt,
		"n":           n,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("llm backend returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read llm response: %w", err)
	}

	var payload struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse llm response: %w", err)
	}
	return payload.Queries, nil
}
