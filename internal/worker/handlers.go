package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialchef/recipegen/internal/metrics"
	"github.com/socialchef/recipegen/internal/services/youtube"
)

// AudioJanitor deletes downloaded audio that outlived the request that
// fetched it.
type AudioJanitor struct {
	metrics *WorkerMetrics
	now     func() time.Time
}

func NewAudioJanitor(m *WorkerMetrics) *AudioJanitor {
	return &AudioJanitor{metrics: m, now: time.Now}
}

func (j *AudioJanitor) HandleCleanupAudio(ctx context.Context, t *asynq.Task) error {
	start := j.now()

	var payload CleanupAudioPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.metrics.RecordJob(ctx, t.Type(), "error", j.now().Sub(start))
		return fmt.Errorf("invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	removed, err := j.Sweep(ctx, payload.Dir, payload.MaxAge)
	if err != nil {
		j.metrics.RecordJob(ctx, t.Type(), "error", j.now().Sub(start))
		return err
	}

	metrics.RecordFilesRemoved(ctx, removed)
	j.metrics.RecordSweep(ctx, payload.Dir, removed, j.now())
	j.metrics.RecordJob(ctx, t.Type(), "success", j.now().Sub(start))
	slog.InfoContext(ctx, "Temp audio swept", "dir", payload.Dir, "removed", removed)
	return nil
}

// Sweep removes temp audio files in dir last modified more than maxAge ago
// and returns how many it removed. A missing dir holds nothing to sweep.
func (j *AudioJanitor) Sweep(ctx context.Context, dir string, maxAge time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, youtube.TempAudioPrefix+"*"))
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				slog.WarnContext(ctx, "Failed to remove temp audio", "path", path, "error", err)
			}
			continue
		}
		removed++
	}
	return removed, nil
}
