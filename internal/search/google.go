// Package search implements the website retrieval adapters. Both adapters
// return the same chat.Result shape (at most 5 hits, vendor relevance order)
// so the orchestrator never knows which vendor is behind them. Errors are
// returned explicitly for testability; the orchestrator coerces any of them
// into "no results".
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"

	"siteassist/internal/chat"
)

const (
	googleEndpoint = "https://www.googleapis.com/customsearch/v1"

	// maxResults caps every search regardless of vendor.
	maxResults = 5

	searchTimeout = 15 * time.Second
)

// GoogleRetriever queries a Google Programmable Search Engine scoped to the
// website's content.
type GoogleRetriever struct {
	apiKey   string
	engineID string
	endpoint string
	httpc    *http.Client
	log      logr.Logger
}

// NewGoogleRetriever creates the adapter. apiKey and engineID (the search
// scope, "cx") are both required. endpoint overrides the production URL for
// tests; leave empty for the default.
func NewGoogleRetriever(apiKey, engineID, endpoint string, log logr.Logger) (*GoogleRetriever, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("google search: api key and engine id are required")
	}
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	return &GoogleRetriever{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: searchTimeout},
		log:      log,
	}, nil
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search runs one query and maps the vendor items directly onto Results.
// An empty item list is not an error; it is a valid "no results" answer.
func (g *GoogleRetriever) Search(ctx context.Context, query string) ([]chat.Result, error) {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("cx", g.engineID)
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google search: build request: %w", err)
	}

	httpResp, err := g.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	defer httpResp.Body.Close()

	var resp googleSearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("google search: decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("google search: vendor error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	results := make([]chat.Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, chat.Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
		if len(results) >= maxResults {
			break
		}
	}
	g.log.V(1).Info("google search complete", "query", query, "results", len(results))
	return results, nil
}
