package search

// algolia.go adapts an Algolia index of website posts to the Retriever
// contract. Initialization needs the application id and a search-only key;
// the index name is configurable and falls back to the well-known index
// created by the WP Search with Algolia exporter. Any failure (bad
// credentials, missing index, search outage) degrades to empty results;
// retrieval problems must never break a chat turn.

import (
	"context"
	"fmt"
	"strings"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	algoliasearch "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/go-logr/logr"

	"siteassist/internal/chat"
)

// defaultAlgoliaIndex is auto-discovered when no index is configured.
const defaultAlgoliaIndex = "website_contentsearchable_posts"

// AlgoliaRetriever searches a single named Algolia index.
type AlgoliaRetriever struct {
	index *algoliasearch.Index
	log   logr.Logger
}

// NewAlgoliaRetriever creates the adapter. indexName may be empty, in which
// case the account's indices are listed and the well-known content index is
// used if present.
func NewAlgoliaRetriever(appID, searchKey, indexName string, log logr.Logger) (*AlgoliaRetriever, error) {
	if appID == "" || searchKey == "" {
		return nil, fmt.Errorf("algolia: application id and search key are required")
	}

	client := algoliasearch.NewClient(appID, searchKey)

	if indexName == "" {
		res, err := client.ListIndices()
		if err != nil {
			return nil, fmt.Errorf("algolia: list indices: %w", err)
		}
		for _, item := range res.Items {
			if item.Name == defaultAlgoliaIndex {
				indexName = item.Name
				break
			}
		}
		if indexName == "" {
			return nil, fmt.Errorf("algolia: no index configured and %q not found", defaultAlgoliaIndex)
		}
		log.Info("auto-detected algolia index", "index", indexName)
	}

	return &AlgoliaRetriever{index: client.InitIndex(indexName), log: log}, nil
}

// Search queries the index for at most 5 hits with a 50-word content
// snippet window, mapping each hit to the common Result shape. The explicit
// post excerpt is preferred; the generated content snippet is the fallback.
func (a *AlgoliaRetriever) Search(ctx context.Context, query string) ([]chat.Result, error) {
	res, err := a.index.Search(query,
		ctx,
		opt.HitsPerPage(maxResults),
		opt.AttributesToRetrieve("post_title", "post_excerpt", "permalink", "content"),
		opt.AttributesToSnippet("content:50"),
		opt.SnippetEllipsisText("..."),
	)
	if err != nil {
		return nil, fmt.Errorf("algolia: search: %w", err)
	}

	results := make([]chat.Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := chat.Result{
			Title:   hitString(hit, "post_title"),
			Snippet: hitString(hit, "post_excerpt"),
			Link:    hitString(hit, "permalink"),
		}
		if r.Snippet == "" {
			r.Snippet = hitSnippet(hit, "content")
		}
		results = append(results, r)
		if len(results) >= maxResults {
			break
		}
	}
	a.log.V(1).Info("algolia search complete", "query", query, "results", len(results))
	return results, nil
}

// hitString extracts a top-level string attribute from a raw hit.
func hitString(hit map[string]interface{}, key string) string {
	if v, ok := hit[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// hitSnippet digs the generated snippet value out of _snippetResult.
func hitSnippet(hit map[string]interface{}, key string) string {
	sr, ok := hit["_snippetResult"].(map[string]interface{})
	if !ok {
		return ""
	}
	attr, ok := sr[key].(map[string]interface{})
	if !ok {
		return ""
	}
	if v, ok := attr["value"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
