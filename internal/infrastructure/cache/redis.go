package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

const (
	// verdictKeyPrefix namespaces verdict entries in Redis.
	verdictKeyPrefix = "happyscroll:verdict:"

	// statsKey is the hash holding hit/miss/set counters.
	statsKey = "happyscroll:cache:stats"
)

// verdictJSON is the JSON representation of a Verdict for caching.
// An explicit struct avoids coupling to the domain model's response tags.
type verdictJSON struct {
	VideoID          string `json:"video_id"`
	IsSafe           bool   `json:"is_safe"`
	IsSafeTranscript bool   `json:"is_safe_transcript"`
	IsSafeThumbnail  bool   `json:"is_safe_thumbnail"`
	TranscriptReason string `json:"transcript_reason"`
	ThumbnailReason  string `json:"thumbnail_reason"`
	OverallReason    string `json:"overall_reason"`
	VideoTitle       string `json:"video_title"`
	ChannelTitle     string `json:"channel_title"`
}

// RedisVerdictCache implements VerdictCache on a shared Redis backend.
// Entries survive restarts and are visible to every process; TTL is enforced
// natively by Redis. Hit/miss/set counters live in a Redis hash so the stats
// are shared too.
type RedisVerdictCache struct {
	client  *redis.Client
	ttlDays int
}

// NewRedisVerdictCache creates a Redis-backed verdict cache.
func NewRedisVerdictCache(client *redis.Client, ttlDays int) *RedisVerdictCache {
	return &RedisVerdictCache{
		client:  client,
		ttlDays: ttlDays,
	}
}

// Get retrieves a verdict from Redis. Returns nil, nil on cache miss.
func (c *RedisVerdictCache) Get(ctx context.Context, videoID string) (*model.Verdict, error) {
	data, err := c.client.Get(ctx, c.buildKey(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.bumpCounter(ctx, "misses")
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendRedis).Inc()
			return nil, nil
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheBackendRedis).Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	verdict, err := c.deserialize(data)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheBackendRedis).Inc()
		return nil, fmt.Errorf("deserialize verdict: %w", err)
	}

	c.bumpCounter(ctx, "hits")
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheBackendRedis).Inc()
	return verdict, nil
}

// Set stores a verdict with the specified TTL.
func (c *RedisVerdictCache) Set(ctx context.Context, verdict *model.Verdict, ttl time.Duration) error {
	data, err := c.serialize(verdict)
	if err != nil {
		return fmt.Errorf("serialize verdict: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(verdict.VideoID), data, ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheBackendRedis).Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	c.bumpCounter(ctx, "sets")
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheBackendRedis).Inc()
	return nil
}

// Delete removes one verdict entry.
func (c *RedisVerdictCache) Delete(ctx context.Context, videoID string) error {
	if err := c.client.Del(ctx, c.buildKey(videoID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every verdict entry under the namespace prefix.
func (c *RedisVerdictCache) Clear(ctx context.Context) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, verdictKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpClear, metrics.CacheStatusSuccess, metrics.CacheBackendRedis).Inc()
	return int(removed), nil
}

// Stats returns the shared counter snapshot plus a current entry count.
func (c *RedisVerdictCache) Stats(ctx context.Context) (*Stats, error) {
	counters, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	entries := 0
	iter := c.client.Scan(ctx, 0, verdictKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		entries++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	return buildStats(
		"redis",
		parseCounter(counters["hits"]),
		parseCounter(counters["misses"]),
		parseCounter(counters["sets"]),
		entries,
		c.ttlDays,
		true,
	), nil
}

// bumpCounter updates a stats field best-effort; stats are not load-bearing.
func (c *RedisVerdictCache) bumpCounter(ctx context.Context, field string) {
	c.client.HIncrBy(ctx, statsKey, field, 1)
}

func (c *RedisVerdictCache) buildKey(videoID string) string {
	return verdictKeyPrefix + videoID
}

func (c *RedisVerdictCache) serialize(v *model.Verdict) ([]byte, error) {
	return json.Marshal(verdictJSON{
		VideoID:          v.VideoID,
		IsSafe:           v.IsSafe,
		IsSafeTranscript: v.IsSafeTranscript,
		IsSafeThumbnail:  v.IsSafeThumbnail,
		TranscriptReason: v.TranscriptReason,
		ThumbnailReason:  v.ThumbnailReason,
		OverallReason:    v.OverallReason,
		VideoTitle:       v.VideoTitle,
		ChannelTitle:     v.ChannelTitle,
	})
}

func (c *RedisVerdictCache) deserialize(data []byte) (*model.Verdict, error) {
	var v verdictJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &model.Verdict{
		VideoID:          v.VideoID,
		IsSafe:           v.IsSafe,
		IsSafeTranscript: v.IsSafeTranscript,
		IsSafeThumbnail:  v.IsSafeThumbnail,
		TranscriptReason: v.TranscriptReason,
		ThumbnailReason:  v.ThumbnailReason,
		OverallReason:    v.OverallReason,
		VideoTitle:       v.VideoTitle,
		ChannelTitle:     v.ChannelTitle,
	}, nil
}

func parseCounter(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
