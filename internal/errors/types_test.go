package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{
		Message: "something went wrong",
	}
	if err.Error() != "something went wrong" {
		t.Errorf("expected 'something went wrong', got %v", err.Error())
	}

	wrappedErr := errors.New("underlying error")
	errWithWrap := &AppError{
		Message: "failed operation",
		Err:     wrappedErr,
	}
	expected := "failed operation: underlying error"
	if errWithWrap.Error() != expected {
		t.Errorf("expected %q, got %q", expected, errWithWrap.Error())
	}
	if !errors.Is(errWithWrap, wrappedErr) {
		t.Error("expected errors.Is to reach the wrapped error")
	}
}

func TestAppError_Code(t *testing.T) {
	err := &AppError{
		ErrorCode: "ERR_CODE_123",
	}
	if err.Code() != "ERR_CODE_123" {
		t.Errorf("expected ERR_CODE_123, got %v", err.Code())
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation error",
			err:  NewValidationError("bad", "BAD", ""),
			want: http.StatusBadRequest,
		},
		{
			name: "wrapped app error",
			err:  fmt.Errorf("handler: %w", NewDownloadError("no audio", "NO_AUDIO", nil)),
			want: http.StatusInternalServerError,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
		{
			name: "app error without status",
			err:  &AppError{Message: "zero"},
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("invalid input", "VALIDATION_FAILED", "Check your fields")
	if err.Type != ErrorTypeValidation {
		t.Errorf("expected TypeValidation, got %v", err.Type)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err.StatusCode)
	}
	if err.RecoverySuggestion() != "Check your fields" {
		t.Errorf("expected 'Check your fields', got %v", err.RecoverySuggestion())
	}
}

func TestNewRecipeGenerationError(t *testing.T) {
	underlying := errors.New("mistral down")
	err := NewRecipeGenerationError("could not generate", "PROVIDER_ERROR", underlying)
	if err.Type != ErrorTypeRecipeGeneration {
		t.Errorf("expected TypeRecipeGeneration, got %v", err.Type)
	}
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err.StatusCode)
	}
	if err.Err != underlying {
		t.Error("underlying error not correctly wrapped")
	}
}

func TestNewTranscriptionError(t *testing.T) {
	underlying := errors.New("whisper failed")
	err := NewTranscriptionError("could not transcribe", "TRANSCRIPTION_FAILED", underlying)
	if err.Type != ErrorTypeTranscription {
		t.Errorf("expected TypeTranscription, got %v", err.Type)
	}
	if err.Err != underlying {
		t.Error("underlying error not correctly wrapped")
	}
}
