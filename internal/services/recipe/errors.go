package recipe

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/socialchef/recipegen/internal/errors"
)

// ProviderError represents a classified error from an AI provider
type ProviderError struct {
	Type     string // "rate_limit", "credit_exhausted", "server_error", "client_error", "timeout", "unknown"
	Message  string
	Provider string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return e.Message
}

// ClassifyError analyzes an error and returns a ProviderError with
// classification. The type labels generation metrics.
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	classify := func(t string) *ProviderError {
		return &ProviderError{Type: t, Message: msg, Provider: provider}
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return classify("timeout")
	}

	if containsAny(msg, "status 429", "rate limit", "too many requests") {
		return classify("rate_limit")
	}

	if containsAny(msg, "status 402", "insufficient credit", "credit exhausted", "billing") {
		return classify("credit_exhausted")
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != http.StatusInternalServerError {
		if appErr.StatusCode >= 500 {
			return classify("server_error")
		}
		if appErr.StatusCode >= 400 {
			return classify("client_error")
		}
	}

	if containsAny(msg, "status 5", "server error", "internal error") {
		return classify("server_error")
	}

	if containsAny(msg, "status 4", "bad request", "unauthorized", "forbidden") {
		return classify("client_error")
	}

	return classify("unknown")
}

// containsAny checks case-insensitively whether s contains any of the substrings
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
