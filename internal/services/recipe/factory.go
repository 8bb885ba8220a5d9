package recipe

import (
	"strings"

	"github.com/socialchef/recipegen/internal/config"
)

// NewProvider creates the recipe provider selected by the configuration.
// There is no fallback: a failed generation is reported as is.
func NewProvider(cfg config.RecipeGenerationConfig, apiKey string) *ChatProvider {
	opts := []ChatOption{
		WithModel(cfg.Model),
		WithSampling(cfg.MaxTokens, cfg.Temperature),
	}

	switch ProviderType(strings.ToLower(cfg.Provider)) {
	case ProviderGroq:
		return NewGroqProvider(apiKey, opts...)
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, opts...)
	default:
		return NewMistralProvider(apiKey, opts...)
	}
}
