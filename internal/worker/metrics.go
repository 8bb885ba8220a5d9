package worker

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkerMetrics records job outcomes and janitor sweep sizes. A nil
// *WorkerMetrics records nothing.
type WorkerMetrics struct {
	jobs          metric.Int64Counter
	jobDuration   metric.Float64Histogram
	sweptPerRun   metric.Int64Histogram
	lastSweepUnix metric.Int64Gauge
}

func NewWorkerMetrics() (*WorkerMetrics, error) {
	meter := otel.Meter("recipegen/worker")

	jobs, err := meter.Int64Counter(
		"worker.jobs.total",
		metric.WithDescription("Worker jobs processed, by type and status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"worker.job.duration",
		metric.WithDescription("Duration of worker jobs"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	sweptPerRun, err := meter.Int64Histogram(
		"janitor.sweep.files",
		metric.WithDescription("Temp audio files removed per sweep"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 20, 100),
	)
	if err != nil {
		return nil, err
	}

	lastSweepUnix, err := meter.Int64Gauge(
		"janitor.sweep.last_success",
		metric.WithDescription("Unix time of the last successful sweep"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &WorkerMetrics{
		jobs:          jobs,
		jobDuration:   jobDuration,
		sweptPerRun:   sweptPerRun,
		lastSweepUnix: lastSweepUnix,
	}, nil
}

func (m *WorkerMetrics) RecordJob(ctx context.Context, jobType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	typeAttr := attribute.String("job.type", jobType)
	m.jobs.Add(ctx, 1, metric.WithAttributes(typeAttr, attribute.String("status", status)))
	m.jobDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(typeAttr))
}

// RecordSweep records a finished sweep of dir.
func (m *WorkerMetrics) RecordSweep(ctx context.Context, dir string, removed int, at time.Time) {
	if m == nil {
		return
	}
	dirAttr := metric.WithAttributes(attribute.String("dir", dir))
	m.sweptPerRun.Record(ctx, int64(removed), dirAttr)
	m.lastSweepUnix.Record(ctx, at.Unix(), dirAttr)
}
