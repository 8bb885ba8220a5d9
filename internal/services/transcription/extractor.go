package transcription

import (
	"context"
	"log/slog"
	"os"

	"github.com/socialchef/recipegen/internal/metrics"
	"github.com/socialchef/recipegen/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Downloader fetches the audio track of a video into a local file.
type Downloader interface {
	Download(ctx context.Context, videoURL string) (audioPath string, err error)
}

// Extraction is the result of processing one cooking video.
type Extraction struct {
	Transcription string   `json:"transcription"`
	Ingredients   []string `json:"ingredients"`
}

// VideoExtractor downloads a video's audio, translates its speech and
// pulls the recipe steps and ingredients out of it.
type VideoExtractor struct {
	downloader Downloader
	provider   TranscriptionProvider
}

func NewVideoExtractor(downloader Downloader, provider TranscriptionProvider) *VideoExtractor {
	return &VideoExtractor{downloader: downloader, provider: provider}
}

// Extract runs the whole pipeline for one video. The downloaded audio is
// removed before returning, whatever the outcome.
func (e *VideoExtractor) Extract(ctx context.Context, videoURL string) (result *Extraction, err error) {
	ctx, span := telemetry.Tracer("transcription").Start(ctx, "transcription.Extract")
	defer span.End()
	span.SetAttributes(attribute.String("video.url", videoURL))

	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.RecordTranscription(ctx, status)
	}()

	audioPath, err := e.downloader.Download(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	defer removeAudio(ctx, audioPath)

	text, err := e.provider.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	cleaned := CleanTranscription(text)
	return &Extraction{
		Transcription: cleaned,
		Ingredients:   ExtractIngredients(cleaned),
	}, nil
}

func removeAudio(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "Failed to remove temp audio", "path", path, "error", err)
	}
}
