package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"siteassist/internal/chat"
	"siteassist/internal/crypto"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.Chat.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d", cfg.Chat.MaxHistory)
	}
	if cfg.Leads.Timing != "after_first" {
		t.Errorf("Leads.Timing = %q", cfg.Leads.Timing)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
listenAddr: ":9090"
provider: openai
providers:
  openai:
    apiKey: sk-test
    model: gpt-4o-mini
search:
  provider: algolia
  algolia:
    appId: APP123
    searchKey: search-key
chat:
  systemMessage: "You answer questions about Acme."
  maxHistory: 6
leads:
  enabled: true
  timing: after_two
  webhookUrl: https://crm.example.com/hook
redis:
  addr: localhost:6379
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.Provider != "openai" {
		t.Errorf("top-level fields: %+v", cfg)
	}
	if p := cfg.ActiveProvider(); p.APIKey != "sk-test" || p.Model != "gpt-4o-mini" {
		t.Errorf("active provider = %+v", p)
	}
	if cfg.Search.Provider != "algolia" || cfg.Search.Algolia.AppID != "APP123" {
		t.Errorf("search config = %+v", cfg.Search)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoad_BadMaxHistoryFallsBack(t *testing.T) {
	path := writeConfig(t, "chat:\n  maxHistory: -3\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chat.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want default", cfg.Chat.MaxHistory)
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}

func TestLoad_DecryptsSecrets(t *testing.T) {
	t.Setenv("SITEASSIST_MASTER_KEY", strings.Repeat("ab", 32))
	key, err := crypto.MasterKeyFromEnv()
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	encKey, err := crypto.Encrypt(key, "sk-hidden")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	path := writeConfig(t, `
provider: openai
providers:
  openai:
    apiKey: `+encKey+`
    model: gpt-4o
search:
  provider: google
  google:
    apiKey: plain-google-key
    engineId: cx1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ActiveProvider().APIKey != "sk-hidden" {
		t.Errorf("apiKey not decrypted: %q", cfg.ActiveProvider().APIKey)
	}
	if cfg.Search.Google.APIKey != "plain-google-key" {
		t.Errorf("plain value altered: %q", cfg.Search.Google.APIKey)
	}
}

func TestLoad_EncryptedSecretWithoutMasterKeyFails(t *testing.T) {
	t.Setenv("SITEASSIST_MASTER_KEY", strings.Repeat("ab", 32))
	key, _ := crypto.MasterKeyFromEnv()
	encKey, _ := crypto.Encrypt(key, "sk-hidden")

	path := writeConfig(t, "providers:\n  openai:\n    apiKey: "+encKey+"\n")

	t.Setenv("SITEASSIST_MASTER_KEY", "")
	if _, err := Load(path); err == nil {
		t.Fatal("encrypted secret loaded without a master key")
	}
}

func TestSnapshot(t *testing.T) {
	path := writeConfig(t, `
provider: deepseek
providers:
  deepseek:
    apiKey: ds-key
    model: deepseek-chat
chat:
  systemMessage: "Persona."
  maxHistory: 8
leads:
  enabled: true
  timing: end
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := cfg.Snapshot()
	want := chat.Settings{
		Provider:      "deepseek",
		APIKey:        "ds-key",
		Model:         "deepseek-chat",
		SystemMessage: "Persona.",
		MaxHistory:    8,
		LeadEnabled:   true,
		LeadTiming:    chat.LeadAtEnd,
	}
	if s != want {
		t.Errorf("Snapshot = %+v, want %+v", s, want)
	}
}

func TestSnapshot_UnconfiguredProvider(t *testing.T) {
	path := writeConfig(t, "provider: openai\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Snapshot()
	if s.APIKey != "" || s.Model != "" {
		t.Errorf("unconfigured provider leaked credentials: %+v", s)
	}
}
