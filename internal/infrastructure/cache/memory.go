package cache

import (
	"context"
	"sync"
	"time"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

type memoryEntry struct {
	verdict   model.Verdict
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryVerdictCache is the in-process fallback backend: a mutex-guarded map
// with per-entry expiry checked on access. Entries do not survive restarts
// and are not shared across processes.
type MemoryVerdictCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	hits    int64
	misses  int64
	sets    int64
	ttlDays int

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewMemoryVerdictCache creates an in-process verdict cache.
func NewMemoryVerdictCache(ttlDays int) *MemoryVerdictCache {
	return &MemoryVerdictCache{
		entries: make(map[string]memoryEntry),
		ttlDays: ttlDays,
		now:     time.Now,
	}
}

// Get returns a copy of the cached verdict, or nil, nil on miss or expiry.
// Expired entries are swept on access.
func (c *MemoryVerdictCache) Get(_ context.Context, videoID string) (*model.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[videoID]
	if !ok {
		c.misses++
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendMemory).Inc()
		return nil, nil
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, videoID)
		c.misses++
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheBackendMemory).Inc()
		return nil, nil
	}

	c.hits++
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheBackendMemory).Inc()
	verdict := entry.verdict
	return &verdict, nil
}

// Set stores a copy of the verdict with the specified TTL.
func (c *MemoryVerdictCache) Set(_ context.Context, verdict *model.Verdict, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[verdict.VideoID] = memoryEntry{
		verdict:   *verdict,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	c.sets++
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheBackendMemory).Inc()
	return nil
}

// Delete removes one entry.
func (c *MemoryVerdictCache) Delete(_ context.Context, videoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, videoID)
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *MemoryVerdictCache) Clear(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]memoryEntry)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpClear, metrics.CacheStatusSuccess, metrics.CacheBackendMemory).Inc()
	return removed, nil
}

// Stats returns the process-local counter snapshot.
func (c *MemoryVerdictCache) Stats(_ context.Context) (*Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return buildStats("memory", c.hits, c.misses, c.sets, len(c.entries), c.ttlDays, false), nil
}
