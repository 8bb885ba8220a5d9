// Package cache keeps finished video extractions in Redis so a video that
// was already processed is not downloaded and transcribed again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/socialchef/recipegen/internal/services/transcription"
)

const keyPrefix = "extraction:"

// NewRedisClient connects to the Redis at redisURL with tracing enabled. A
// bare host:port is accepted too.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to instrument redis client: %w", err)
	}
	return client, nil
}

// ExtractionCache provides Redis-backed caching for video extractions.
// Redis failures are logged and treated as misses.
type ExtractionCache struct {
	client *redis.Client
	prefix string
}

// NewExtractionCache creates a cache on client. A nil client caches nothing.
func NewExtractionCache(client *redis.Client) *ExtractionCache {
	return &ExtractionCache{
		client: client,
		prefix: keyPrefix,
	}
}

// makeKey creates a cache key from a URL by hashing it.
func (c *ExtractionCache) makeKey(videoURL string) string {
	hash := sha256.Sum256([]byte(videoURL))
	return fmt.Sprintf("%s%x", c.prefix, hash)
}

// Get returns the cached extraction for videoURL, or nil on a miss.
func (c *ExtractionCache) Get(ctx context.Context, videoURL string) *transcription.Extraction {
	if c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, c.makeKey(videoURL)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Redis cache get failed", "error", err)
		return nil
	}

	var ex transcription.Extraction
	if err := json.Unmarshal(data, &ex); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached extraction", "error", err)
		return nil
	}
	return &ex
}

// Set stores ex under videoURL for ttl.
func (c *ExtractionCache) Set(ctx context.Context, videoURL string, ex *transcription.Extraction, ttl time.Duration) {
	if c.client == nil || ex == nil {
		return
	}

	data, err := json.Marshal(ex)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal extraction", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.makeKey(videoURL), data, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Redis cache set failed", "error", err)
	}
}
