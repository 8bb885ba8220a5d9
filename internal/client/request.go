package client

import "strings"

// RecipeRequest is the JSON body posted to /generate-recipe. Every field
// except Ingredients is sent exactly as read from its input.
type RecipeRequest struct {
	Ingredients []string `json:"ingredients"`
	Cuisine     string   `json:"cuisine"`
	Difficulty  string   `json:"difficulty"`
	Servings    string   `json:"servings"`
	Time        string   `json:"time"`
}

// ParseIngredients splits a comma separated list and trims each part.
// Order, duplicates and empty parts are kept.
func ParseIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
