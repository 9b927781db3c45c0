package cache

import (
	"context"
	"time"

	"github.com/happyscroll/verdict-api/internal/domain/model"
)

// hitTimeSavedSeconds is the calibration constant for the "time saved"
// statistic: roughly what a full two-branch analysis costs.
const hitTimeSavedSeconds = 20

// Stats is the operator-visible counter snapshot of a cache backend.
type Stats struct {
	Backend       string  `json:"cache_type"`
	Hits          int64   `json:"cache_hits"`
	Misses        int64   `json:"cache_misses"`
	Sets          int64   `json:"cache_sets"`
	TotalRequests int64   `json:"total_requests"`
	HitRatePct    float64 `json:"hit_rate_percentage"`
	Entries       int     `json:"cached_entries"`
	TTLDays       int     `json:"ttl_days"`
	TimeSavedSec  int64   `json:"time_saved_seconds"`
	Persistent    bool    `json:"persistent"`
	Shared        bool    `json:"shared"`
}

func buildStats(backend string, hits, misses, sets int64, entries, ttlDays int, persistent bool) *Stats {
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return &Stats{
		Backend:       backend,
		Hits:          hits,
		Misses:        misses,
		Sets:          sets,
		TotalRequests: total,
		HitRatePct:    rate,
		Entries:       entries,
		TTLDays:       ttlDays,
		TimeSavedSec:  hits * hitTimeSavedSeconds,
		Persistent:    persistent,
		Shared:        persistent,
	}
}

// VerdictCache is the pluggable verdict store keyed by canonical video id.
// Implementations handle TTL and serialization transparently. Callers must
// treat any error as a cache miss; cache failures never fail a request.
type VerdictCache interface {
	// Get returns the cached verdict, or nil, nil on miss or expiry.
	Get(ctx context.Context, videoID string) (*model.Verdict, error)

	// Set stores a verdict with the specified TTL.
	Set(ctx context.Context, verdict *model.Verdict, ttl time.Duration) error

	// Delete removes one entry. Removing an absent entry is not an error.
	Delete(ctx context.Context, videoID string) error

	// Clear removes all verdict entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Stats returns the backend's counter snapshot.
	Stats(ctx context.Context) (*Stats, error)
}
