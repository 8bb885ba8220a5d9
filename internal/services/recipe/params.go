package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/socialchef/recipegen/internal/services/ai"
)

const (
	DefaultCuisine    = "any"
	DefaultDifficulty = "any"
	DefaultServings   = 4
	DefaultTime       = 30
)

// IntString is an integer that arrives either as a JSON number or as a
// numeric string such as " 4 ".
type IntString int

func (n *IntString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid literal for integer: %q", s)
		}
		*n = IntString(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid integer: %s", data)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid integer: %s", data)
	}
	*n = IntString(f)
	return nil
}

// Params is a decoded /generate-recipe request.
type Params struct {
	Ingredients []string
	Cuisine     string
	Difficulty  string
	Servings    int
	Time        int
}

type rawParams struct {
	Ingredients []string   `json:"ingredients"`
	Cuisine     *string    `json:"cuisine"`
	Difficulty  *string    `json:"difficulty"`
	Servings    *IntString `json:"servings"`
	Time        *IntString `json:"time"`
}

// DecodeParams parses a request body, filling in defaults for absent or
// null fields.
func DecodeParams(data []byte) (Params, error) {
	var raw rawParams
	if err := json.Unmarshal(data, &raw); err != nil {
		return Params{}, err
	}

	p := Params{
		Ingredients: raw.Ingredients,
		Cuisine:     DefaultCuisine,
		Difficulty:  DefaultDifficulty,
		Servings:    DefaultServings,
		Time:        DefaultTime,
	}
	if p.Ingredients == nil {
		p.Ingredients = []string{}
	}
	if raw.Cuisine != nil {
		p.Cuisine = *raw.Cuisine
	}
	if raw.Difficulty != nil {
		p.Difficulty = *raw.Difficulty
	}
	if raw.Servings != nil {
		p.Servings = int(*raw.Servings)
	}
	if raw.Time != nil {
		p.Time = int(*raw.Time)
	}
	return p, nil
}

// Prompt renders the params as the model prompt.
func (p Params) Prompt() string {
	return ai.BuildRecipePrompt(ai.PromptParams{
		Ingredients: p.Ingredients,
		Cuisine:     p.Cuisine,
		Difficulty:  p.Difficulty,
		Servings:    p.Servings,
		TimeMinutes: p.Time,
	})
}
