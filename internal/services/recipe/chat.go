package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/socialchef/recipegen/internal/errors"
	"github.com/socialchef/recipegen/internal/httpclient"
	"github.com/socialchef/recipegen/internal/metrics"
	"github.com/socialchef/recipegen/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	MistralURL = "https://api.mistral.ai/v1/chat/completions"
	GroqURL    = "https://api.groq.com/openai/v1/chat/completions"
	OpenAIURL  = "https://api.openai.com/v1/chat/completions"

	MistralModel = "mistral-small-latest"
	GroqModel    = "llama-3.3-70b-versatile"
	OpenAIModel  = "gpt-4o-mini"

	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// ChatProvider implements RecipeProvider against an OpenAI-compatible chat
// completions endpoint.
type ChatProvider struct {
	name        string
	url         string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

type ChatOption func(*ChatProvider)

// WithModel overrides the provider's default model. Empty keeps the default.
func WithModel(model string) ChatOption {
	return func(p *ChatProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithSampling sets max_tokens and temperature. Zero values keep the defaults.
func WithSampling(maxTokens int, temperature float64) ChatOption {
	return func(p *ChatProvider) {
		if maxTokens > 0 {
			p.maxTokens = maxTokens
		}
		if temperature > 0 {
			p.temperature = temperature
		}
	}
}

// WithBaseURL points the provider at a different completions URL.
func WithBaseURL(url string) ChatOption {
	return func(p *ChatProvider) { p.url = url }
}

func WithHTTPClient(c *http.Client) ChatOption {
	return func(p *ChatProvider) { p.client = c }
}

func newChatProvider(name, url, model, apiKey string, opts []ChatOption) *ChatProvider {
	p := &ChatProvider{
		name:        name,
		url:         url,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		client:      httpclient.InstrumentedClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewMistralProvider creates a Mistral recipe provider
func NewMistralProvider(apiKey string, opts ...ChatOption) *ChatProvider {
	return newChatProvider("Mistral", MistralURL, MistralModel, apiKey, opts)
}

// NewGroqProvider creates a Groq recipe provider
func NewGroqProvider(apiKey string, opts ...ChatOption) *ChatProvider {
	return newChatProvider("Groq", GroqURL, GroqModel, apiKey, opts)
}

// NewOpenAIProvider creates an OpenAI recipe provider
func NewOpenAIProvider(apiKey string, opts ...ChatOption) *ChatProvider {
	return newChatProvider("OpenAI", OpenAIURL, OpenAIModel, apiKey, opts)
}

func (p *ChatProvider) Name() string  { return p.name }
func (p *ChatProvider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// GenerateRecipe sends one completion request and returns the trimmed
// content of the first choice.
func (p *ChatProvider) GenerateRecipe(ctx context.Context, params Params) (recipe string, err error) {
	ctx, span := telemetry.Tracer("recipe").Start(ctx, "recipe.GenerateRecipe")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", p.name),
		attribute.String("model", p.model),
		attribute.Int("recipe.ingredients", len(params.Ingredients)),
	)

	startTime := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = ClassifyError(err, p.name).Type
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.RecordExternalCall(ctx, p.name, startTime)
		metrics.RecordGeneration(ctx, p.name, status, startTime)
	}()

	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: params.Prompt()}},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", errors.NewInternalError("Failed to encode completion request", "CHAT_ENCODE", err)
	}

	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, p.name), http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternalError("Failed to create completion request", "CHAT_REQUEST", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", errors.NewRecipeGenerationError(fmt.Sprintf("%s request failed", p.name), "PROVIDER_UNREACHABLE", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewRecipeGenerationError(fmt.Sprintf("Failed to read %s response", p.name), "PROVIDER_READ", err)
	}

	if resp.StatusCode >= 400 {
		return "", providerStatusError(p.name, resp.StatusCode, respBody)
	}

	var chatResp map[string]any
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", errors.NewRecipeGenerationError(fmt.Sprintf("Invalid %s response", p.name), "PROVIDER_DECODE", err)
	}

	content, reason := firstChoiceContent(chatResp)
	if reason != "" {
		return "", errors.NewRecipeGenerationError(fmt.Sprintf("Invalid %s response: %s", p.name, reason), "PROVIDER_DECODE", nil)
	}
	return strings.TrimSpace(content), nil
}

// firstChoiceContent reads choices[0].message.content. An absent key on
// the way yields FailedGenerationText; a present key holding the wrong
// shape, null or an empty choices list is reported through reason.
func firstChoiceContent(resp map[string]any) (content, reason string) {
	if resp == nil {
		return "", "empty body"
	}
	raw, ok := resp["choices"]
	if !ok {
		return FailedGenerationText, ""
	}
	choices, ok := raw.([]any)
	if !ok || len(choices) == 0 {
		return "", "no choices"
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", "malformed choice"
	}
	raw, ok = choice["message"]
	if !ok {
		return FailedGenerationText, ""
	}
	message, ok := raw.(map[string]any)
	if !ok {
		return "", "malformed message"
	}
	raw, ok = message["content"]
	if !ok {
		return FailedGenerationText, ""
	}
	text, ok := raw.(string)
	if !ok {
		return "", "content is not text"
	}
	return text, ""
}

func providerStatusError(provider string, status int, body []byte) *errors.AppError {
	appErr := errors.NewRecipeGenerationError(
		fmt.Sprintf("%s API error (status %d): %s", provider, status, strings.TrimSpace(string(body))),
		"PROVIDER_STATUS",
		nil,
	)
	switch {
	case status == http.StatusTooManyRequests:
		appErr.StatusCode = http.StatusTooManyRequests
	case status >= 500:
		appErr.StatusCode = http.StatusBadGateway
	}
	return appErr
}
