package search

import (
	"testing"

	"github.com/go-logr/logr"
)

func TestNewAlgoliaRetriever_RequiresCredentials(t *testing.T) {
	if _, err := NewAlgoliaRetriever("", "search-key", "idx", logr.Discard()); err == nil {
		t.Error("empty application id accepted")
	}
	if _, err := NewAlgoliaRetriever("app-id", "", "idx", logr.Discard()); err == nil {
		t.Error("empty search key accepted")
	}
}

func TestHitString(t *testing.T) {
	hit := map[string]interface{}{
		"post_title": "  Shipping Policy  ",
		"permalink":  "https://example.com/shipping",
		"weight":     3.0,
	}
	if got := hitString(hit, "post_title"); got != "Shipping Policy" {
		t.Errorf("hitString(post_title) = %q", got)
	}
	if got := hitString(hit, "missing"); got != "" {
		t.Errorf("hitString(missing) = %q, want empty", got)
	}
	if got := hitString(hit, "weight"); got != "" {
		t.Errorf("hitString on non-string = %q, want empty", got)
	}
}

func TestHitSnippet(t *testing.T) {
	hit := map[string]interface{}{
		"_snippetResult": map[string]interface{}{
			"content": map[string]interface{}{
				"value":      "We ship worldwide within ...",
				"matchLevel": "full",
			},
		},
	}
	if got := hitSnippet(hit, "content"); got != "We ship worldwide within ..." {
		t.Errorf("hitSnippet = %q", got)
	}
	if got := hitSnippet(map[string]interface{}{}, "content"); got != "" {
		t.Errorf("hitSnippet without _snippetResult = %q, want empty", got)
	}
	if got := hitSnippet(hit, "title"); got != "" {
		t.Errorf("hitSnippet for absent attribute = %q, want empty", got)
	}
}
