package chat

import (
	"context"
	"strings"
)

// Role identifies who produced a message. The assistant side uses "model"
// internally (the Gemini convention); adapters that speak "assistant" remap
// on the wire.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// NormalizeRole maps any incoming role string onto the two internal roles.
// "assistant" is an alias for "model"; anything unrecognized is treated as
// a user message.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "model", "assistant":
		return RoleModel
	default:
		return RoleUser
	}
}

// Message is one turn of a conversation. Immutable once appended to a store.
//
// Text may arrive either as a flat Content string or as a Parts list
// (the Gemini wire shape). Adapters must accept both; Text() resolves the
// effective payload.
type Message struct {
	Role    Role     `json:"role"`
	Content string   `json:"content,omitempty"`
	Parts   []string `json:"parts,omitempty"`
}

// Text returns the effective text of the message: Content when set,
// otherwise the Parts joined with newlines.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	return strings.Join(m.Parts, "\n")
}

// NewMessage builds a Message with a normalized role and flat content.
func NewMessage(role Role, text string) Message {
	return Message{Role: role, Content: text}
}

// GenerationConfig is the uniform tuning surface over all providers.
// Nil pointer fields mean "use the vendor default". Parameter names differ
// per vendor (maxOutputTokens vs max_tokens etc.); adapters translate.
type GenerationConfig struct {
	Temperature      *float64
	TopP             *float64
	TopK             *int
	MaxOutputTokens  *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Stop             []string
}

// Float returns *v's value or def when v is nil.
func Float(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Int returns *v's value or def when v is nil.
func Int(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// Provider is the uniform contract over LLM vendors. Implementations carry
// their own credentials and endpoint; callers never see where the API key
// goes (header vs query parameter).
type Provider interface {
	// SetModel selects the model used by Generate. Empty model is a
	// configuration error.
	SetModel(model string) error

	// ListModels returns modelID -> display label. Vendors with static
	// catalogs answer from a built-in table; discovery-based vendors fetch
	// from their models endpoint and fall back to a built-in table on any
	// failure, so callers can always populate a picker.
	ListModels(ctx context.Context) (map[string]string, error)

	// Generate runs one synchronous completion over the full history and
	// returns the generated text. cfg may be nil (vendor defaults).
	Generate(ctx context.Context, history []Message, cfg *GenerationConfig) (string, error)
}

// ProviderFactory resolves a Provider from configuration. Implemented by
// internal/llm; defined here so the orchestrator stays vendor-agnostic.
type ProviderFactory interface {
	Create(providerID, apiKey, model string) (Provider, error)
}

// Result is one website search hit used to ground the model's answer.
// Link is the exact URL the model is instructed to cite verbatim.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Retriever is the uniform contract over website search vendors.
// Implementations return at most 5 results in vendor relevance order.
// Errors are explicit here for testability; the orchestrator coerces any
// retrieval error into "no results" and carries on.
type Retriever interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Conversation is the session-scoped message history plus the lead-capture
// bookkeeping that travels with it.
type Conversation struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`

	// UserTurns counts user messages ever appended in this session,
	// monotonically; history truncation does not decrement it.
	UserTurns int `json:"userTurns"`

	// LeadPrompted records that the lead form signal already fired once
	// for this session.
	LeadPrompted bool `json:"leadPrompted"`
}

// HistoryStore persists Conversations in a TTL-backed cache.
// Semantics: last-write-wins, no locking; a session is expected to be
// driven by one browser tab at a time.
type HistoryStore interface {
	// Load returns the conversation for the session, or an empty one if
	// absent or expired.
	Load(ctx context.Context, sessionID string) (*Conversation, error)

	// Append adds messages (dropping any that are empty after trimming),
	// truncates to the newest maxHistory entries, and persists with a
	// refreshed TTL.
	Append(ctx context.Context, conv *Conversation, msgs ...Message) error

	// Clear deletes the session's history immediately.
	Clear(ctx context.Context, sessionID string) error
}
