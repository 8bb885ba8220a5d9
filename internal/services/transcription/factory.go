package transcription

import (
	"github.com/socialchef/recipegen/internal/config"
)

// NewProvider creates the transcription provider selected by the configuration.
func NewProvider(cfg config.TranscriptionConfig, apiKey string) *WhisperProvider {
	var opts []WhisperOption
	if cfg.Model != "" {
		opts = append(opts, WithWhisperModel(cfg.Model))
	}
	return newWhisperProvider(endpoints[ParseProviderType(cfg.Provider)], apiKey, opts)
}
