package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fd "fundingdiscovery/internal/domain"
	"fundingdiscovery/internal/store/domainregistry"
	"fundingdiscovery/pkg/platform/circuit"
)

// AIAnswer implements Provider for the bearer-token, per-minute-limited
// AI-answer engine: it takes a single 15-30 word question and returns a
// citations array rather than an organic list.
type AIAnswer struct {
	engine     string
	baseURL    string
	bearerToken string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

func NewAIAnswer(engine, baseURL, bearerToken string, httpClient *http.Client, breaker *circuit.Breaker) *AIAnswer {
	return &AIAnswer{engine: engine, baseURL: baseURL, bearerToken: bearerToken, httpClient: httpClient, breaker: breaker}
}

func (a *AIAnswer) Engine() string { return a.engine }

func (a *AIAnswer) Capabilities() Capabilities {
	return Capabilities{
		Type:                       fd.ProviderTypeAIAnswer,
		Engine:                     a.engine,
		SupportsAIOptimizedQueries: true,
	}
}

func (a *AIAnswer) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{Up: !a.breaker.IsOpen(), CircuitState: a.breaker.State().String()}
}

func (a *AIAnswer) Search(ctx context.Context, question string, maxResults int, sessionID string) ([]SearchResult, error) {
	reqBody, err := json.Marshal(map[string]any{"question": question, "max_citations": maxResults})
	if err != nil {
		return nil, NewError(fd.ErrorCategoryUnknown, a.engine, "marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/answer", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, NewError(fd.ErrorCategoryUnknown, a.engine, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryTimeout, a.engine, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(fd.ErrorCategoryAuth, a.engine, "bearer token rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(fd.ErrorCategoryRateLimited, a.engine, "per-minute limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, NewError(fd.ErrorCategoryRemote5xx, a.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, NewError(fd.ErrorCategoryUnknown, a.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryParse, a.engine, "failed to read response body", err)
	}

	var payload struct {
		Citations []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"citations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(fd.ErrorCategoryParse, a.engine, "failed to parse citations array", err)
	}

	now := time.Now()
	results := make([]SearchResult, 0, len(payload.Citations))
	for i, c := range payload.Citations {
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		host, err := domainregistry.ExtractDomain(c.URL)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{
			URL: c.URL, Host: host, Title: c.Title, Description: c.Snippet,
			Rank: i + 1, Engine: a.engine, DiscoveredAt: now, SessionID: sessionID,
		})
	}
	return results, nil
}
