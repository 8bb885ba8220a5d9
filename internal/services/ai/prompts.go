package ai

import (
	"strconv"
	"strings"
)

const (
	promptIntro        = "Generate a detailed recipe using the following:"
	promptInstructions = "Provide a structured list of ingredients and clear step-by-step instructions."
)

// PromptParams are the user's choices for a generated recipe.
type PromptParams struct {
	Ingredients []string
	Cuisine     string
	Difficulty  string
	Servings    int
	TimeMinutes int
}

// BuildRecipePrompt builds the single user message sent to the chat model.
func BuildRecipePrompt(p PromptParams) string {
	var sb strings.Builder
	sb.WriteString(promptIntro)
	sb.WriteString("\n")
	writeLine(&sb, "Ingredients", strings.Join(p.Ingredients, ", "))
	writeLine(&sb, "Cuisine", p.Cuisine)
	writeLine(&sb, "Difficulty", p.Difficulty)
	writeLine(&sb, "Servings", strconv.Itoa(p.Servings))
	writeLine(&sb, "Cooking Time", strconv.Itoa(p.TimeMinutes)+" minutes")
	sb.WriteString(promptInstructions)
	return sb.String()
}

func writeLine(sb *strings.Builder, label, value string) {
	sb.WriteString("- ")
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
