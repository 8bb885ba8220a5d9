package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errMalformedResponse = errors.New("response carries neither recipe nor error")

// RecipeResponse is what /generate-recipe answers with: either a recipe or
// an error message. A non-empty Error wins.
type RecipeResponse struct {
	Recipe *string `json:"recipe,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func decodeResponse(r io.Reader) (*RecipeResponse, error) {
	var resp RecipeResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error == "" && resp.Recipe == nil {
		return nil, errMalformedResponse
	}
	return &resp, nil
}
