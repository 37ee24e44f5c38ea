// Package config loads the application configuration from a YAML file,
// applies defaults, and decrypts any enc:aes256: secret values. The rest of
// the application never reads configuration ad hoc: per request, Snapshot()
// produces one immutable chat.Settings value that travels explicitly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"siteassist/internal/chat"
	"siteassist/internal/crypto"
)

// ProviderConfig holds one LLM vendor's credentials and model selection.
type ProviderConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
	// BaseURL overrides the vendor's endpoint (Deepseek-compatible
	// deployments, test servers). Empty means the vendor default.
	BaseURL string `yaml:"baseUrl"`
}

// GoogleSearchConfig configures the Google Programmable Search adapter.
type GoogleSearchConfig struct {
	APIKey   string `yaml:"apiKey"`
	EngineID string `yaml:"engineId"`
}

// AlgoliaConfig configures the Algolia adapter. Index may be empty; the
// well-known website content index is then auto-discovered.
type AlgoliaConfig struct {
	AppID     string `yaml:"appId"`
	SearchKey string `yaml:"searchKey"`
	Index     string `yaml:"index"`
}

// SearchConfig selects and configures the retrieval provider.
// Provider is "google", "algolia", or "" to disable retrieval.
type SearchConfig struct {
	Provider string             `yaml:"provider"`
	Google   GoogleSearchConfig `yaml:"google"`
	Algolia  AlgoliaConfig      `yaml:"algolia"`
}

// ChatConfig holds the assistant's persona and history bound.
type ChatConfig struct {
	SystemMessage string `yaml:"systemMessage"`
	MaxHistory    int    `yaml:"maxHistory"`
}

// LeadsConfig configures the lead-capture flow.
type LeadsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Timing     string `yaml:"timing"` // immediate | after_first | after_two | end
	WebhookURL string `yaml:"webhookUrl"`
}

// RedisConfig configures the session history cache. An empty Addr selects
// the in-memory store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the whole application configuration.
type Config struct {
	ListenAddr string `yaml:"listenAddr"`

	// Provider names the active LLM vendor: gemini, openai or deepseek.
	Provider  string                    `yaml:"provider"`
	Providers map[string]ProviderConfig `yaml:"providers"`

	Search SearchConfig `yaml:"search"`
	Chat   ChatConfig   `yaml:"chat"`
	Leads  LeadsConfig  `yaml:"leads"`
	Redis  RedisConfig  `yaml:"redis"`
}

// Load reads the config file at path, filling defaults for anything unset.
// A missing file yields the default config so the service can start from
// flags alone. API keys stored with the enc:aes256: prefix are decrypted.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8080",
		Provider:   "gemini",
		Chat: ChatConfig{
			SystemMessage: "You are a helpful assistant for this website.",
			MaxHistory:    10,
		},
		Leads: LeadsConfig{
			Timing: "after_first",
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Chat.MaxHistory <= 0 {
		cfg.Chat.MaxHistory = 10
	}

	if err := cfg.decryptSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decryptSecrets resolves every enc:aes256: value in place.
func (c *Config) decryptSecrets() error {
	for name, pcfg := range c.Providers {
		key, err := crypto.DecryptValue(pcfg.APIKey)
		if err != nil {
			return fmt.Errorf("config: provider %s apiKey: %w", name, err)
		}
		pcfg.APIKey = key
		c.Providers[name] = pcfg
	}

	key, err := crypto.DecryptValue(c.Search.Google.APIKey)
	if err != nil {
		return fmt.Errorf("config: google search apiKey: %w", err)
	}
	c.Search.Google.APIKey = key

	key, err = crypto.DecryptValue(c.Search.Algolia.SearchKey)
	if err != nil {
		return fmt.Errorf("config: algolia searchKey: %w", err)
	}
	c.Search.Algolia.SearchKey = key

	return nil
}

// ActiveProvider returns the configuration block for the selected provider,
// or a zero value when none is configured.
func (c *Config) ActiveProvider() ProviderConfig {
	return c.Providers[c.Provider]
}

// Snapshot builds the immutable per-request settings value consumed by the
// chat orchestrator.
func (c *Config) Snapshot() chat.Settings {
	p := c.ActiveProvider()
	return chat.Settings{
		Provider:      c.Provider,
		APIKey:        p.APIKey,
		Model:         p.Model,
		SystemMessage: c.Chat.SystemMessage,
		MaxHistory:    c.Chat.MaxHistory,
		LeadEnabled:   c.Leads.Enabled,
		LeadTiming:    chat.LeadTiming(c.Leads.Timing),
	}
}
