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

// KeywordEngine implements Provider for header-token-authenticated,
// daily-quota keyword search APIs. Keyword A (a paid web-search API) and
// Keyword B (a Google proxy) both fit this shape, differing only in base
// URL and response shape, so one adapter type parameterizes both via a
// ResponseParser.
type KeywordEngine struct {
	engine     string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuit.Breaker
	parse      ResponseParser
}

// ResponseParser decodes an engine-specific JSON payload into normalized
// organic-list entries (title, URL, snippet).
type ResponseParser func(body []byte) ([]rawHit, error)

type rawHit struct {
	Title       string
	URL         string
	Description string
}

// KeywordAParser decodes the Keyword A engine's organic-results shape.
func KeywordAParser(body []byte) ([]rawHit, error) {
	var payload struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	hits := make([]rawHit, 0, len(payload.Organic))
	for _, o := range payload.Organic {
		hits = append(hits, rawHit{Title: o.Title, URL: o.Link, Description: o.Snippet})
	}
	return hits, nil
}

// KeywordBParser decodes the Keyword B (Google-proxy) engine's results shape.
func KeywordBParser(body []byte) ([]rawHit, error) {
	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	hits := make([]rawHit, 0, len(payload.Items))
	for _, item := range payload.Items {
		hits = append(hits, rawHit{Title: item.Title, URL: item.Link, Description: item.Snippet})
	}
	return hits, nil
}

func NewKeywordEngine(engine, baseURL, apiKey string, httpClient *http.Client, breaker *circuit.Breaker, parse ResponseParser) *KeywordEngine {
	return &KeywordEngine{engine: engine, baseURL: baseURL, apiKey: apiKey, httpClient: httpClient, breaker: breaker, parse: parse}
}

func (k *KeywordEngine) Engine() string { return k.engine }

func (k *KeywordEngine) Capabilities() Capabilities {
	return Capabilities{
		Type:                   fd.ProviderTypeKeyword,
		Engine:                 k.engine,
		SupportsKeywordQueries: true,
	}
}

func (k *KeywordEngine) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{Up: !k.breaker.IsOpen(), CircuitState: k.breaker.State().String()}
}

func (k *KeywordEngine) Search(ctx context.Context, query string, maxResults int, sessionID string) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL, nil)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryUnknown, k.engine, "build request", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", maxResults))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+k.apiKey)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryTimeout, k.engine, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(fd.ErrorCategoryAuth, k.engine, "authentication rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(fd.ErrorCategoryRateLimited, k.engine, "engine rate limited the request", nil)
	case resp.StatusCode >= 500:
		return nil, NewError(fd.ErrorCategoryRemote5xx, k.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, NewError(fd.ErrorCategoryUnknown, k.engine, fmt.Sprintf("remote returned %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryParse, k.engine, "failed to read response body", err)
	}
	hits, err := k.parse(body)
	if err != nil {
		return nil, NewError(fd.ErrorCategoryParse, k.engine, "failed to parse response body", err)
	}

	now := time.Now()
	results := make([]SearchResult, 0, len(hits))
	for i, h := range hits {
		if strings.TrimSpace(h.URL) == "" {
			continue
		}
		host, err := domainregistry.ExtractDomain(h.URL)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{
			URL: h.URL, Host: host, Title: h.Title, Description: h.Description,
			Rank: i + 1, Engine: k.engine, DiscoveredAt: now, SessionID: sessionID,
		})
	}
	return results, nil
}
