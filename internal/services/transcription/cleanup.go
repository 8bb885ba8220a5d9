package transcription

import (
	"regexp"
	"strings"
)

const (
	NoSpeechText      = "No speech detected."
	NoStepsText       = "No clear steps found."
	NoIngredientsText = "No ingredients detected."
)

var (
	// Each pattern drops the rest of the line from the first phrase on.
	introOutroPattern   = regexp.MustCompile(`(?i)(hi everyone|thanks for watching|subscribe|hit the notification).*`)
	callToActionPattern = regexp.MustCompile(`(?i)(if you enjoyed this video|leave a comment|don’t forget).*`)
	whitespacePattern   = regexp.MustCompile(`\s+`)

	ingredientPattern = regexp.MustCompile(`(?i)(\d+\s*(?:g|grams|ml|l|cups|tbsp|tsp|teaspoons?|tablespoons?)\s+[A-Za-z\s\-]+)`)
)

// CleanTranscription strips channel chatter from a transcript and formats
// the remaining sentences as one "• " bullet per line.
func CleanTranscription(transcription string) string {
	if transcription == "" {
		return NoSpeechText
	}

	cleaned := introOutroPattern.ReplaceAllString(transcription, "")
	cleaned = callToActionPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))

	var steps []string
	for _, sentence := range splitSentences(cleaned) {
		if s := strings.TrimSpace(sentence); s != "" {
			steps = append(steps, "• "+s)
		}
	}
	if len(steps) == 0 {
		return NoStepsText
	}
	return strings.Join(steps, "\n")
}

// splitSentences splits text at the spaces that follow '.', '!' or '?'.
// The text is expected to have its whitespace collapsed to single spaces.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 1; i < len(text); i++ {
		if text[i] != ' ' {
			continue
		}
		switch text[i-1] {
		case '.', '!', '?':
			sentences = append(sentences, text[start:i])
			start = i + 1
		}
	}
	return append(sentences, text[start:])
}

// ExtractIngredients returns every quantity-unit-name phrase in text, such
// as "200 g flour".
func ExtractIngredients(text string) []string {
	matches := ingredientPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{NoIngredientsText}
	}
	return matches
}
