package llm

// gemini.go implements chat.Provider against the native Gemini
// generateContent API. Unlike the OpenAI-compatible vendors, Gemini takes
// the API key as a URL query parameter instead of an Authorization header,
// speaks the nested contents/parts payload shape, and ships a static model
// catalog (there is no useful discovery endpoint for the chat family).

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"siteassist/internal/chat"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/"

// geminiCatalog is the built-in model table returned by ListModels.
var geminiCatalog = map[string]string{
	"gemini-2.0-flash-exp": "Gemini 2.0 Flash (Experimental)",
	"gemini-1.5-flash":     "Gemini 1.5 Flash",
	"gemini-1.5-flash-8b":  "Gemini 1.5 Flash 8B",
	"gemini-1.5-pro":       "Gemini 1.5 Pro",
	"gemini-1.0-pro":       "Gemini 1.0 Pro",
}

// Gemini generation defaults, applied when the caller leaves a
// GenerationConfig field unset.
const (
	geminiDefaultTemperature = 0.7
	geminiDefaultTopK        = 40
	geminiDefaultTopP        = 0.95
	geminiDefaultMaxTokens   = 1024
)

// requestTimeout bounds every outbound vendor call.
const requestTimeout = 30 * time.Second

// GeminiProvider talks to the Gemini generateContent endpoint directly.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// NewGeminiProvider creates a Gemini provider. apiKey must be non-empty.
// model may be empty at construction but must be set before Generate.
// baseURL overrides the production endpoint; leave empty for the default.
func NewGeminiProvider(apiKey, model, baseURL string) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, chat.NewError(chat.KindConfiguration, "Gemini API key cannot be empty.")
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		httpc:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// SetModel selects the Gemini model used by Generate.
func (p *GeminiProvider) SetModel(model string) error {
	if model == "" {
		return chat.NewError(chat.KindConfiguration, "Model name cannot be empty.")
	}
	p.model = model
	return nil
}

// ListModels returns a copy of the static Gemini catalog.
func (p *GeminiProvider) ListModels(_ context.Context) (map[string]string, error) {
	models := make(map[string]string, len(geminiCatalog))
	for id, label := range geminiCatalog {
		models[id] = label
	}
	return models, nil
}

// Wire shapes for the generateContent envelope.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate runs one synchronous completion over the history.
func (p *GeminiProvider) Generate(ctx context.Context, history []chat.Message, cfg *chat.GenerationConfig) (string, error) {
	if p.model == "" {
		return "", chat.NewError(chat.KindConfiguration, "No AI model selected.")
	}
	if cfg == nil {
		cfg = &chat.GenerationConfig{}
	}

	req := geminiRequest{
		Contents: formatGeminiContents(history),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     chat.Float(cfg.Temperature, geminiDefaultTemperature),
			TopK:            chat.Int(cfg.TopK, geminiDefaultTopK),
			TopP:            chat.Float(cfg.TopP, geminiDefaultTopP),
			MaxOutputTokens: chat.Int(cfg.MaxOutputTokens, geminiDefaultMaxTokens),
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", chat.WrapError(chat.KindUpstreamParse, "Failed to encode Gemini request.", err)
	}

	endpoint := p.baseURL + "models/" + p.model + ":generateContent?key=" + url.QueryEscape(p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", chat.WrapError(chat.KindUpstreamTransport, "Failed to build Gemini request.", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpc.Do(httpReq)
	if err != nil {
		return "", chat.WrapError(chat.KindUpstreamTransport,
			"Network error while contacting the Gemini API.", err)
	}
	defer httpResp.Body.Close()

	var resp geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", chat.WrapError(chat.KindUpstreamParse, "Invalid JSON response from Gemini API.", err)
	}
	if resp.Error != nil {
		msg := resp.Error.Message
		if msg == "" {
			msg = "Unknown Gemini API error."
		}
		return "", chat.NewError(chat.KindUpstreamVendor, msg)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", chat.NewError(chat.KindUpstreamParse,
			fmt.Sprintf("Invalid response from Gemini API (HTTP %d).", httpResp.StatusCode))
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// formatGeminiContents translates history into the contents/parts shape.
// The internal role taxonomy already matches Gemini's (user/model); anything
// unrecognized degrades to user. Messages that are empty after trimming are
// skipped entirely; Gemini rejects empty parts.
func formatGeminiContents(history []chat.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text())
		if text == "" {
			continue
		}
		contents = append(contents, geminiContent{
			Role:  string(chat.NormalizeRole(string(msg.Role))),
			Parts: []geminiPart{{Text: text}},
		})
	}
	return contents
}
