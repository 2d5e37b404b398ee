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

// MetaSearch implements Provider for the self-hosted meta-search engine:
// no auth, host-local rate limiting, and an aggregated result list rather
// than a single-source organic list.
type MetaSearch struct {
	engine     string
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

func NewMetaSearch(engine, baseURL string, httpClient *http.Client, breaker *circuit.Breaker) *MetaSearch {
	return &MetaSearch{engine: engine, baseURL: baseURL, httpClient: httpClient, breaker: breaker}
}

func (m *MetaSearch) Engine() string { return m.engine }

func (m *MetaSearch) Capabilities() Capabilities {
	return Capabilities{
		Type:                   fd.ProviderTypeMetaSearch,
		Engine:                 m.engine,
		SupportsKeywordQueries: true,
	}
}

func (m *MetaSearch) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{Up: !m.breaker.IsOpen(), CircuitState: m.breaker.State().String()}
}

func (m *MetaSearch) Search(ctx context.Context, query string, maxResults int, sessionID string) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/search", nil)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryUnknown, m.engine, "build request", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryTimeout, m.engine, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, NewError(fd.ErrorCategoryRemote5xx, m.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, NewError(fd.ErrorCategoryUnknown, m.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryParse, m.engine, "failed to read response body", err)
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(fd.ErrorCategoryParse, m.engine, "failed to parse aggregated results", err)
	}

	now := time.Now()
	results := make([]SearchResult, 0, len(payload.Results))
	for i, r := range payload.Results {
		if i >= maxResults {
			break
		}
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		host, err := domainregistry.ExtractDomain(r.URL)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{
			URL: r.URL, Host: host, Title: r.Title, Description: r.Content,
			Rank: i + 1, Engine: m.engine, DiscoveredAt: now, SessionID: sessionID,
		})
	}
	return results, nil
}
