// server runs the SiteAssist chat API: a retrieval-augmented website
// assistant over pluggable LLM providers, with session history in redis
// and an optional lead-capture webhook.
package main

import (
	"flag"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"siteassist/internal/api"
	"siteassist/internal/chat"
	"siteassist/internal/config"
	"siteassist/internal/conversation"
	"siteassist/internal/leads"
	"siteassist/internal/llm"
	"siteassist/internal/search"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file.")
	flag.Parse()

	zapLog, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = zapLog.Sync() }()
	log := zapr.NewLogger(zapLog)
	setupLog := log.WithName("setup")

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}

	// Session history: redis when configured, in-process otherwise.
	var store chat.HistoryStore
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = conversation.NewRedisStore(client, cfg.Chat.MaxHistory)
		setupLog.Info("using redis history store", "addr", cfg.Redis.Addr)
	} else {
		store = conversation.NewMemoryStore(cfg.Chat.MaxHistory)
		setupLog.Info("using in-memory history store")
	}

	factory := llm.NewFactory(log.WithName("llm"),
		llm.WithEndpointOverride(llm.ProviderDeepseek, cfg.Providers[llm.ProviderDeepseek].BaseURL))

	server := api.NewServer(cfg, store, factory, log.WithName("api"))

	if retriever := buildRetriever(cfg, log.WithName("search"), setupLog); retriever != nil {
		server = server.WithRetriever(retriever)
	}

	if cfg.Leads.Enabled && cfg.Leads.WebhookURL != "" {
		server = server.WithLeadSink(leads.NewWebhookSink(cfg.Leads.WebhookURL, log.WithName("leads")))
	}

	if err := server.Start(); err != nil {
		setupLog.Error(err, "server stopped")
		os.Exit(1)
	}
}

// buildRetriever constructs the configured search adapter, or nil when
// retrieval is disabled or misconfigured; a missing retriever only means
// chat turns run without website context.
func buildRetriever(cfg *config.Config, log, setupLog logr.Logger) chat.Retriever {
	switch cfg.Search.Provider {
	case "google":
		r, err := search.NewGoogleRetriever(cfg.Search.Google.APIKey,
			cfg.Search.Google.EngineID, "", log)
		if err != nil {
			setupLog.Error(err, "google search disabled")
			return nil
		}
		return r
	case "algolia":
		r, err := search.NewAlgoliaRetriever(cfg.Search.Algolia.AppID,
			cfg.Search.Algolia.SearchKey, cfg.Search.Algolia.Index, log)
		if err != nil {
			setupLog.Error(err, "algolia search disabled")
			return nil
		}
		return r
	case "":
		return nil
	default:
		setupLog.Info("unknown search provider, retrieval disabled", "provider", cfg.Search.Provider)
		return nil
	}
}
