package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("recipegen/business")

	// Recipe metrics
	RecipeGenerationsTotal metric.Int64Counter
	AIGenerationDuration   metric.Float64Histogram

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// YouTube extraction metrics
	TranscriptionsTotal metric.Int64Counter

	// Janitor metrics
	TempFilesRemovedTotal metric.Int64Counter
)

func Init() error {
	var err error

	RecipeGenerationsTotal, err = meter.Int64Counter(
		"recipe.generations.total",
		metric.WithDescription("Total number of recipe generation requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	AIGenerationDuration, err = meter.Float64Histogram(
		"ai.generation.duration",
		metric.WithDescription("Duration of AI recipe generation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	TranscriptionsTotal, err = meter.Int64Counter(
		"youtube.transcriptions.total",
		metric.WithDescription("Total number of YouTube extraction requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	TempFilesRemovedTotal, err = meter.Int64Counter(
		"janitor.files.removed.total",
		metric.WithDescription("Temp audio files removed by the janitor"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordExternalCall records one outbound provider call. Safe to call before Init.
func RecordExternalCall(ctx context.Context, provider string, start time.Time) {
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	if ExternalAPIDuration != nil {
		ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if ExternalAPICallsTotal != nil {
		ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}
}

// RecordGeneration records the outcome of one recipe generation request.
func RecordGeneration(ctx context.Context, provider, status string, start time.Time) {
	if AIGenerationDuration != nil {
		AIGenerationDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("provider", provider)))
	}
	if RecipeGenerationsTotal != nil {
		RecipeGenerationsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		))
	}
}

// RecordTranscription records the outcome of one YouTube extraction.
func RecordTranscription(ctx context.Context, status string) {
	if TranscriptionsTotal != nil {
		TranscriptionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

// RecordFilesRemoved records janitor removals.
func RecordFilesRemoved(ctx context.Context, n int) {
	if TempFilesRemovedTotal != nil && n > 0 {
		TempFilesRemovedTotal.Add(ctx, int64(n))
	}
}
