package transcription

import (
	"context"
	"strings"
)

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"

	GroqWhisperModel   = "whisper-large-v3"
	OpenAIWhisperModel = "whisper-1"
)

// TranscriptionProvider turns speech in an audio file into English text.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
)

// endpoint is where a provider serves its Whisper API and which model it
// uses unless configured otherwise.
type endpoint struct {
	name    string
	baseURL string
	model   string
}

var endpoints = map[ProviderType]endpoint{
	ProviderGroq:   {name: "Groq", baseURL: GroqBaseURL, model: GroqWhisperModel},
	ProviderOpenAI: {name: "OpenAI", baseURL: OpenAIBaseURL, model: OpenAIWhisperModel},
}

// ParseProviderType maps a configured provider name onto a known provider,
// ignoring case and surrounding space. Anything else selects Groq.
func ParseProviderType(name string) ProviderType {
	t := ProviderType(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := endpoints[t]; ok {
		return t
	}
	return ProviderGroq
}
