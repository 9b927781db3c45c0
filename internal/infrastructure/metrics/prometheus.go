// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "happyscroll"

var (
	// CacheOperationsTotal tracks verdict cache operations.
	// Labels:
	//   - operation: get, set, clear
	//   - status: hit, miss, success, error
	//   - backend: redis, memory
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of verdict cache operations",
		},
		[]string{"operation", "status", "backend"},
	)

	// SingleflightRequestsTotal tracks build coalescing behavior.
	// Labels:
	//   - result: initiated (new build), shared (reused in-flight result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight verdict builds",
		},
		[]string{"result"},
	)

	// UpstreamRequestsTotal tracks outbound upstream calls.
	// Labels:
	//   - service: youtube, vision, gemini
	//   - status: success, error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream service calls",
		},
		[]string{"service", "status"},
	)

	// VerdictsTotal tracks final verdicts by outcome.
	// Labels:
	//   - outcome: safe, unsafe
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Total number of verdicts built",
		},
		[]string{"outcome"},
	)

	// RateLimitRejectionsTotal tracks budget-exhausted rejections.
	// Labels:
	//   - scope: global, client
	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by the daily budget",
		},
		[]string{"scope"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet   = "get"
	CacheOpSet   = "set"
	CacheOpClear = "clear"
)

// Cache backend constants.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Upstream service constants.
const (
	UpstreamYouTube = "youtube"
	UpstreamVision  = "vision"
	UpstreamGemini  = "gemini"
)

// Upstream call status constants.
const (
	UpstreamStatusSuccess = "success"
	UpstreamStatusError   = "error"
)

// Verdict outcome constants.
const (
	VerdictOutcomeSafe   = "safe"
	VerdictOutcomeUnsafe = "unsafe"
)

// Rate limit scope constants.
const (
	RateLimitScopeGlobal = "global"
	RateLimitScopeClient = "client"
)
