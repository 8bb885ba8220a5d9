package cache

import (
	"context"
	"time"

	"github.com/socialchef/recipegen/internal/services/transcription"
)

// Extractor is the pipeline being cached.
type Extractor interface {
	Extract(ctx context.Context, videoURL string) (*transcription.Extraction, error)
}

// Store holds extractions by video URL.
type Store interface {
	Get(ctx context.Context, videoURL string) *transcription.Extraction
	Set(ctx context.Context, videoURL string, ex *transcription.Extraction, ttl time.Duration)
}

// CachedExtractor serves repeated videos from store and only runs next on
// a miss. Failed extractions are not cached.
type CachedExtractor struct {
	next  Extractor
	store Store
	ttl   time.Duration
}

func NewCachedExtractor(next Extractor, store Store, ttl time.Duration) *CachedExtractor {
	return &CachedExtractor{next: next, store: store, ttl: ttl}
}

func (c *CachedExtractor) Extract(ctx context.Context, videoURL string) (*transcription.Extraction, error) {
	if ex := c.store.Get(ctx, videoURL); ex != nil {
		return ex, nil
	}

	ex, err := c.next.Extract(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	c.store.Set(ctx, videoURL, ex, c.ttl)
	return ex, nil
}
