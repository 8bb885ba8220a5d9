package recipe

import "context"

// ProviderType represents the type of AI provider
type ProviderType string

const (
	ProviderMistral ProviderType = "mistral"
	ProviderGroq    ProviderType = "groq"
	ProviderOpenAI  ProviderType = "openai"
)

// FailedGenerationText is returned when the model answers without content.
const FailedGenerationText = "Failed to generate recipe."

// RecipeProvider turns recipe parameters into recipe text.
type RecipeProvider interface {
	GenerateRecipe(ctx context.Context, params Params) (string, error)
}
