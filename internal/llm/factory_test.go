package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"siteassist/internal/chat"
)

func TestFactory_CreateUnsupportedProvider(t *testing.T) {
	f := NewFactory(logr.Discard())
	_, err := f.Create("claude", "key", "model")
	if chat.KindOf(err) != chat.KindUnsupportedProvider {
		t.Fatalf("got err %v, want unsupported_provider", err)
	}
	if chat.PublicMessage(err) != "Invalid AI provider: claude" {
		t.Errorf("message = %q", chat.PublicMessage(err))
	}
}

func TestFactory_CreateKnownProviders(t *testing.T) {
	f := NewFactory(logr.Discard())
	for _, id := range []string{ProviderGemini, ProviderOpenAI, ProviderDeepseek} {
		p, err := f.Create(id, "some-key", "some-model")
		if err != nil {
			t.Errorf("Create(%q): %v", id, err)
			continue
		}
		if p == nil {
			t.Errorf("Create(%q) returned nil provider", id)
		}
	}
}

func TestFactory_CreateEmptyKey(t *testing.T) {
	f := NewFactory(logr.Discard())
	for _, id := range []string{ProviderGemini, ProviderOpenAI, ProviderDeepseek} {
		if _, err := f.Create(id, "", "model"); chat.KindOf(err) != chat.KindConfiguration {
			t.Errorf("Create(%q, \"\"): got %v, want configuration error", id, err)
		}
	}
}

// The gemini catalog is static: no key, no network, always the same table.
func TestFactory_ListAvailableModels_Gemini(t *testing.T) {
	f := NewFactory(logr.Discard())
	models := f.ListAvailableModels(context.Background(), ProviderGemini, "", false)
	if models["gemini-1.5-flash"] != "Gemini 1.5 Flash" {
		t.Errorf("static catalog missing: %v", models)
	}
}

func TestFactory_ListAvailableModels_KeylessFallback(t *testing.T) {
	f := NewFactory(logr.Discard())

	models := f.ListAvailableModels(context.Background(), ProviderOpenAI, "", false)
	if models["gpt-4o"] != "GPT-4o" {
		t.Errorf("openai fallback missing: %v", models)
	}

	models = f.ListAvailableModels(context.Background(), ProviderDeepseek, "", false)
	if models["deepseek-chat"] != "Deepseek Chat" {
		t.Errorf("deepseek fallback missing: %v", models)
	}
}

func TestFactory_ListAvailableModels_UnknownProvider(t *testing.T) {
	f := NewFactory(logr.Discard())
	models := f.ListAvailableModels(context.Background(), "claude", "key", false)
	if len(models) != 0 {
		t.Errorf("unknown provider produced a catalog: %v", models)
	}
}

func TestFactory_ListAvailableModels_Caching(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o","object":"model"}]}`))
	}))
	defer srv.Close()

	f := NewFactory(logr.Discard(), WithEndpointOverride(ProviderOpenAI, srv.URL))
	ctx := context.Background()

	f.ListAvailableModels(ctx, ProviderOpenAI, "sk-one", false)
	f.ListAvailableModels(ctx, ProviderOpenAI, "sk-one", false)
	if hits != 1 {
		t.Fatalf("cache miss on repeat call: %d fetches", hits)
	}

	// forceRefresh bypasses the cache.
	f.ListAvailableModels(ctx, ProviderOpenAI, "sk-one", true)
	if hits != 2 {
		t.Fatalf("forceRefresh did not refetch: %d fetches", hits)
	}

	// A different API key is a different cache entry.
	f.ListAvailableModels(ctx, ProviderOpenAI, "sk-two", false)
	if hits != 3 {
		t.Fatalf("key change did not refetch: %d fetches", hits)
	}
}

func TestCatalogCache_Expiry(t *testing.T) {
	c := newCatalogCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.put("openai:abcd", map[string]string{"gpt-4o": "GPT-4o"})

	if _, ok := c.get("openai:abcd"); !ok {
		t.Fatal("fresh entry not served")
	}

	now = now.Add(catalogTTL + time.Minute)
	if _, ok := c.get("openai:abcd"); ok {
		t.Error("stale entry served past TTL")
	}
}

func TestCatalogCache_CopiesOnGet(t *testing.T) {
	c := newCatalogCache()
	c.put("k", map[string]string{"a": "A"})

	got, _ := c.get("k")
	got["a"] = "tampered"

	again, _ := c.get("k")
	if again["a"] != "A" {
		t.Error("cache entry mutated through returned map")
	}
}

func TestCatalogKey_DistinguishesKeys(t *testing.T) {
	if catalogKey("openai", "one") == catalogKey("openai", "two") {
		t.Error("different API keys collide")
	}
	if catalogKey("openai", "k") == catalogKey("deepseek", "k") {
		t.Error("different providers collide")
	}
}
