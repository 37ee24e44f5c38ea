package chat

// orchestrator.go drives one chat turn: load the session history, ground the
// question with website search results, assemble the augmented prompt, call
// the configured LLM provider, sanitize the reply and persist the turn.
//
// The orchestrator is stateless across requests apart from the HistoryStore.
// It receives an immutable Settings snapshot at construction time rather than
// reading live configuration, so a settings change mid-request cannot produce
// a half-old half-new turn.

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// Prompt fragments sent alongside the site operator's persona text. The link
// rules matter: the model must only cite URLs that came back from search,
// never invented ones.
const (
	htmlFormatDirective = "Please format your responses in HTML. For links, use: " +
		"<a href='URL' target='_blank' rel='noopener noreferrer'>TITLE</a>"

	answerRules = "When providing answers:\n" +
		"1. ONLY use the exact URLs provided in the search results - never create or modify URLs\n" +
		"2. If search results are available, incorporate the exact article links naturally in your response\n" +
		"3. If no search results are found, explain that you can only help with website-related questions\n" +
		"4. Be conversational and helpful while staying strictly within the provided content"

	retrievalContextHeader = "Here are relevant articles from our website. " +
		"Provide your response in HTML format. For links, use: " +
		"<a href='URL' target='_blank' rel='noopener noreferrer'>TITLE</a>\n\n"

	noResultsContext = "No relevant content found on this website. Please respond with: " +
		"'I apologize, but I'm specifically designed to help with questions about this website's content.'"
)

// Settings is the immutable per-request configuration snapshot the
// orchestrator works from.
type Settings struct {
	Provider      string
	APIKey        string
	Model         string
	SystemMessage string
	MaxHistory    int
	LeadEnabled   bool
	LeadTiming    LeadTiming
}

// Request is one incoming chat message.
type Request struct {
	SessionID string
	Message   string
}

// Reply is the successful outcome of a chat turn.
type Reply struct {
	// Message is the sanitized HTML answer, safe to inject into the widget.
	Message string `json:"message"`

	// HasSources reports whether retrieval produced results this turn;
	// the widget uses it to decide whether to show a sources affordance.
	HasSources bool `json:"hasSources"`

	// CollectLead tells the widget to show the contact form after this turn.
	CollectLead bool `json:"collectLead"`
}

// Orchestrator composes retrieval, history and generation for one session
// turn. Build one per request with the settings snapshot for that request.
type Orchestrator struct {
	settings  Settings
	store     HistoryStore
	factory   ProviderFactory
	retriever Retriever // nil when no search provider is configured
	sanitizer *Sanitizer
	log       logr.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators.
// retriever may be nil; history is then augmented without website context.
func NewOrchestrator(settings Settings, store HistoryStore, factory ProviderFactory, retriever Retriever, sanitizer *Sanitizer, log logr.Logger) *Orchestrator {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Orchestrator{
		settings:  settings,
		store:     store,
		factory:   factory,
		retriever: retriever,
		sanitizer: sanitizer,
		log:       log,
	}
}

// Handle runs one full chat turn. On failure the returned error is a *Error
// whose kind the transport maps to a status code. The visitor's own message
// is persisted before generation is attempted, so history reflects what was
// actually asked even when the vendor call fails; a failed generation stores
// no model output.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, NewError(KindValidation, "Message cannot be empty.")
	}
	if o.settings.APIKey == "" {
		return nil, NewError(KindConfiguration,
			fmt.Sprintf("API key for provider %q is not configured.", o.settings.Provider))
	}
	if o.settings.Model == "" {
		return nil, NewError(KindConfiguration,
			fmt.Sprintf("No model selected for provider %q.", o.settings.Provider))
	}

	conv, err := o.store.Load(ctx, req.SessionID)
	if err != nil {
		// A broken cache read degrades to a fresh conversation; the turn
		// still runs, it just has no memory.
		o.log.Error(err, "history load failed, starting empty", "session", req.SessionID)
		conv = &Conversation{SessionID: req.SessionID}
	}

	results, searchContext := o.retrieve(ctx, message)

	// Augment history for this turn: system instruction, website context,
	// then the visitor's message. All three are persisted so later turns
	// see the same sequence the model saw.
	system := strings.TrimSpace(o.settings.SystemMessage) + "\n\n" +
		htmlFormatDirective + "\n\n" + answerRules
	turn := []Message{
		NewMessage(RoleModel, system),
	}
	if searchContext != "" {
		turn = append(turn, NewMessage(RoleModel, searchContext))
	}
	turn = append(turn, NewMessage(RoleUser, message))

	conv.UserTurns++
	if err := o.store.Append(ctx, conv, turn...); err != nil {
		o.log.Error(err, "history append failed", "session", req.SessionID)
	}

	provider, err := o.factory.Create(o.settings.Provider, o.settings.APIKey, o.settings.Model)
	if err != nil {
		return nil, err
	}

	raw, err := provider.Generate(ctx, conv.Messages, nil)
	if err != nil {
		return nil, err
	}

	sanitized := o.sanitizer.Sanitize(raw)

	collectLead := ShouldPromptLead(o.settings.LeadEnabled, o.settings.LeadTiming,
		conv.UserTurns, conv.LeadPrompted)
	if collectLead {
		conv.LeadPrompted = true
	}

	// Store the raw (pre-sanitization) reply so future turns feed the model
	// exactly what it produced.
	if err := o.store.Append(ctx, conv, NewMessage(RoleModel, raw)); err != nil {
		o.log.Error(err, "history append failed", "session", req.SessionID)
	}

	return &Reply{
		Message:     sanitized,
		HasSources:  len(results) > 0,
		CollectLead: collectLead,
	}, nil
}

// ClearHistory wipes the session's stored conversation.
func (o *Orchestrator) ClearHistory(ctx context.Context, sessionID string) error {
	return o.store.Clear(ctx, sessionID)
}

// retrieve runs website search for the raw message and formats the grounding
// context. Retrieval never fails a turn: vendor errors are logged and
// coerced into the no-results disclaimer, and a missing retriever simply
// yields no context message.
func (o *Orchestrator) retrieve(ctx context.Context, message string) ([]Result, string) {
	if o.retriever == nil {
		return nil, ""
	}

	results, err := o.retriever.Search(ctx, message)
	if err != nil {
		o.log.Error(err, "website search failed, continuing without results")
		results = nil
	}
	if len(results) == 0 {
		return nil, noResultsContext
	}

	var b strings.Builder
	b.WriteString(retrievalContextHeader)
	for i, r := range results {
		fmt.Fprintf(&b, "Article %d:\nTitle: %s\nSnippet: %s\nURL: %s\n\n",
			i, r.Title, r.Snippet, r.Link)
	}
	return results, b.String()
}
