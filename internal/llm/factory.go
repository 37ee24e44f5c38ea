package llm

// factory.go constructs the per-vendor chat.Provider adapters. The provider
// set is closed (gemini, openai, deepseek) and dispatch is an exhaustive
// switch rather than an open registry: a new vendor needs adapter code
// anyway, so there is nothing to gain from runtime registration.

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"siteassist/internal/chat"
)

// Provider identifiers accepted by the factory.
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepseek = "deepseek"
)

// Factory builds provider adapters and serves model catalogs. It holds the
// process-wide catalog cache; construct one at startup and share it.
type Factory struct {
	log      logr.Logger
	catalogs *catalogCache

	// endpoints optionally overrides a provider's base URL, keyed by
	// provider id. Used for the Deepseek-compatible endpoint setting and
	// for pointing adapters at test servers.
	endpoints map[string]string
}

// Option configures a Factory.
type Option func(*Factory)

// WithEndpointOverride points providerID's adapter at baseURL instead of
// the vendor's production endpoint.
func WithEndpointOverride(providerID, baseURL string) Option {
	return func(f *Factory) {
		if baseURL != "" {
			f.endpoints[providerID] = baseURL
		}
	}
}

// NewFactory creates a Factory.
func NewFactory(log logr.Logger, opts ...Option) *Factory {
	f := &Factory{
		log:       log,
		catalogs:  newCatalogCache(),
		endpoints: make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the adapter for providerID configured with apiKey and
// model. Unknown provider ids fail with an unsupported_provider error;
// empty api keys fail with a configuration error from the adapter itself.
func (f *Factory) Create(providerID, apiKey, model string) (chat.Provider, error) {
	switch providerID {
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, f.endpoints[ProviderGemini])

	case ProviderOpenAI:
		if ep := f.endpoints[ProviderOpenAI]; ep != "" {
			return newCompatProvider(apiKey, model, ep, "OpenAI", "gpt", openAIFallbackCatalog)
		}
		return NewOpenAIProvider(apiKey, model)

	case ProviderDeepseek:
		return NewDeepseekProvider(apiKey, model, f.endpoints[ProviderDeepseek])

	default:
		return nil, chat.NewError(chat.KindUnsupportedProvider,
			fmt.Sprintf("Invalid AI provider: %s", providerID))
	}
}

// ListAvailableModels returns the modelID → label catalog for providerID.
// It never fails: without an API key the provider's static fallback catalog
// is returned with no network access, and any internal adapter failure
// yields an empty map. Fetched catalogs are cached per provider+key hash;
// forceRefresh bypasses the cache.
func (f *Factory) ListAvailableModels(ctx context.Context, providerID, apiKey string, forceRefresh bool) map[string]string {
	switch providerID {
	case ProviderGemini:
		// Static catalog; no key or network needed.
		return copyCatalog(geminiCatalog)
	case ProviderOpenAI:
		if apiKey == "" {
			return copyCatalog(openAIFallbackCatalog)
		}
	case ProviderDeepseek:
		if apiKey == "" {
			return copyCatalog(deepseekFallbackCatalog)
		}
	default:
		return map[string]string{}
	}

	key := catalogKey(providerID, apiKey)
	if !forceRefresh {
		if models, ok := f.catalogs.get(key); ok {
			return models
		}
	}

	provider, err := f.Create(providerID, apiKey, "")
	if err != nil {
		f.log.Error(err, "failed to build provider for model listing", "provider", providerID)
		return map[string]string{}
	}

	models, err := provider.ListModels(ctx)
	if err != nil {
		// Adapters fall back internally; an error here is unexpected.
		f.log.Error(err, "model listing failed", "provider", providerID)
		return map[string]string{}
	}

	f.catalogs.put(key, models)
	return models
}
