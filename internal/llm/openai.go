package llm

// openai.go implements chat.Provider for OpenAI-compatible vendors through
// the go-openai client. Both the OpenAI and Deepseek adapters are this one
// type with different base URLs, catalog filters and fallback tables; the
// wire protocol (bearer auth, chat/completions, flat content messages) is
// identical.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"siteassist/internal/chat"
)

const deepseekDefaultBaseURL = "https://api.deepseek.ai/v1"

// Generation defaults shared by the OpenAI-compatible vendors.
const (
	compatDefaultTemperature = 0.7
	compatDefaultTopP        = 1.0
	compatDefaultMaxTokens   = 1000
)

// openAIFallbackCatalog is served when the models endpoint is unreachable,
// so the settings UI can always offer something sensible.
var openAIFallbackCatalog = map[string]string{
	"gpt-4o":        "GPT-4o",
	"gpt-4o-mini":   "GPT-4o Mini",
	"gpt-4-turbo":   "GPT-4 Turbo",
	"gpt-3.5-turbo": "GPT-3.5 Turbo",
}

var deepseekFallbackCatalog = map[string]string{
	"deepseek-chat":  "Deepseek Chat",
	"deepseek-coder": "Deepseek Coder",
	"deepseek-math":  "Deepseek Math",
}

// OpenAICompatProvider is a chat.Provider over any OpenAI-compatible API.
type OpenAICompatProvider struct {
	client   *openai.Client
	vendor   string // "OpenAI" or "Deepseek", for error messages
	model    string
	idPrefix string // model ids outside this family are filtered out
	fallback map[string]string
}

// NewOpenAIProvider creates the OpenAI adapter. apiKey must be non-empty;
// model may be set later via SetModel.
func NewOpenAIProvider(apiKey, model string) (*OpenAICompatProvider, error) {
	return newCompatProvider(apiKey, model, "", "OpenAI", "gpt", openAIFallbackCatalog)
}

// NewDeepseekProvider creates the Deepseek adapter. endpoint overrides the
// default Deepseek API URL; leave empty for the default.
func NewDeepseekProvider(apiKey, model, endpoint string) (*OpenAICompatProvider, error) {
	if endpoint == "" {
		endpoint = deepseekDefaultBaseURL
	}
	return newCompatProvider(apiKey, model, endpoint, "Deepseek", "deepseek", deepseekFallbackCatalog)
}

func newCompatProvider(apiKey, model, baseURL, vendor, idPrefix string, fallback map[string]string) (*OpenAICompatProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, chat.NewError(chat.KindConfiguration,
			fmt.Sprintf("%s API key cannot be empty.", vendor))
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &OpenAICompatProvider{
		client:   openai.NewClientWithConfig(cfg),
		vendor:   vendor,
		model:    model,
		idPrefix: idPrefix,
		fallback: fallback,
	}, nil
}

// SetModel selects the model used by Generate.
func (p *OpenAICompatProvider) SetModel(model string) error {
	if model == "" {
		return chat.NewError(chat.KindConfiguration, "Model name cannot be empty.")
	}
	p.model = model
	return nil
}

// ListModels fetches the vendor's model list, filtered to the relevant
// family and mapped to human-readable labels. Any network or decode failure
// degrades to the built-in fallback table, since callers rely on ListModels
// always producing a usable catalog.
func (p *OpenAICompatProvider) ListModels(ctx context.Context) (map[string]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return copyCatalog(p.fallback), nil
	}

	models := make(map[string]string)
	for _, m := range list.Models {
		if strings.HasPrefix(m.ID, p.idPrefix) {
			models[m.ID] = formatModelLabel(m.ID)
		}
	}
	if len(models) == 0 {
		return copyCatalog(p.fallback), nil
	}
	return models, nil
}

// Generate runs one synchronous chat completion over the history.
func (p *OpenAICompatProvider) Generate(ctx context.Context, history []chat.Message, cfg *chat.GenerationConfig) (string, error) {
	if p.model == "" {
		return "", chat.NewError(chat.KindConfiguration, "No AI model selected.")
	}
	if cfg == nil {
		cfg = &chat.GenerationConfig{}
	}

	req := openai.ChatCompletionRequest{
		Model:            p.model,
		Messages:         formatCompatMessages(history),
		Temperature:      float32(chat.Float(cfg.Temperature, compatDefaultTemperature)),
		TopP:             float32(chat.Float(cfg.TopP, compatDefaultTopP)),
		MaxTokens:        chat.Int(cfg.MaxOutputTokens, compatDefaultMaxTokens),
		FrequencyPenalty: float32(chat.Float(cfg.FrequencyPenalty, 0)),
		PresencePenalty:  float32(chat.Float(cfg.PresencePenalty, 0)),
		Stop:             cfg.Stop,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyCompatError(p.vendor, err)
	}
	if len(resp.Choices) == 0 {
		return "", chat.NewError(chat.KindUpstreamParse,
			fmt.Sprintf("Invalid response from %s API: no choices returned.", p.vendor))
	}
	return resp.Choices[0].Message.Content, nil
}

// formatCompatMessages translates history to the flat role/content shape.
// The internal "model" role becomes "assistant"; unrecognized roles become
// "user". Empty messages are dropped.
func formatCompatMessages(history []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text())
		if text == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if chat.NormalizeRole(string(msg.Role)) == chat.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: text})
	}
	return out
}

// classifyCompatError sorts a go-openai error into the three upstream
// failure kinds: vendor-reported errors carry the vendor's own message,
// network problems are retryable transport errors, undecodable bodies are
// parse errors.
func classifyCompatError(vendor string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Unknown %s API error.", vendor)
		}
		return chat.WrapError(chat.KindUpstreamVendor, msg, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return chat.WrapError(chat.KindUpstreamVendor,
			fmt.Sprintf("%s API returned HTTP %d.", vendor, reqErr.HTTPStatusCode), err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return chat.WrapError(chat.KindUpstreamTransport,
			fmt.Sprintf("Network error while contacting the %s API.", vendor), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return chat.WrapError(chat.KindUpstreamParse,
			fmt.Sprintf("Invalid JSON response from %s API.", vendor), err)
	}

	return chat.WrapError(chat.KindUpstreamTransport,
		fmt.Sprintf("Request to the %s API failed.", vendor), err)
}

// formatModelLabel humanizes a model id: "gpt-4o-mini" → "GPT-4o Mini",
// "deepseek-chat" → "Deepseek Chat".
func formatModelLabel(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	label := strings.Join(words, " ")
	if strings.HasPrefix(label, "Gpt ") {
		label = "GPT-" + strings.TrimPrefix(label, "Gpt ")
	}
	return label
}

func copyCatalog(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
