package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/infrastructure/cache"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

// VerdictService is the request entry point: it resolves a video URL to a
// cached or freshly built safety verdict.
type VerdictService interface {
	// GetVerdict returns the verdict for a video URL. clientID is the
	// caller's optional self-reported identity for per-client limiting;
	// empty means unidentified.
	GetVerdict(ctx context.Context, videoURL, clientID string) (*model.Verdict, error)

	// CacheStats returns the verdict cache's counter snapshot.
	CacheStats(ctx context.Context) (*cache.Stats, error)

	// ClearCache removes all cached verdicts and returns the count removed.
	ClearCache(ctx context.Context) (int, error)
}

// VerdictServiceConfig holds configuration for the verdict service.
type VerdictServiceConfig struct {
	// CacheTTL bounds how long a built verdict is served from cache.
	CacheTTL time.Duration
	// BuildTimeout bounds one full upstream build (metadata + both branches).
	BuildTimeout time.Duration
}

// DefaultVerdictServiceConfig returns the default configuration.
func DefaultVerdictServiceConfig() VerdictServiceConfig {
	return VerdictServiceConfig{
		CacheTTL:     7 * 24 * time.Hour,
		BuildTimeout: 75 * time.Second,
	}
}

type verdictService struct {
	metadata    repository.MetadataClient
	transcripts repository.TranscriptClassifier
	thumbnails  repository.ThumbnailClassifier

	cache         cache.VerdictCache
	limiter       *DailyLimiter
	clientLimiter *ClientLimiter
	sfGroup       singleflight.Group

	cacheTTL     time.Duration
	buildTimeout time.Duration
}

// NewVerdictService creates the verdict orchestrator. clientLimiter may be
// nil to disable server-side per-client limiting.
func NewVerdictService(
	metadata repository.MetadataClient,
	transcripts repository.TranscriptClassifier,
	thumbnails repository.ThumbnailClassifier,
	verdictCache cache.VerdictCache,
	limiter *DailyLimiter,
	clientLimiter *ClientLimiter,
	cfg VerdictServiceConfig,
) VerdictService {
	return &verdictService{
		metadata:      metadata,
		transcripts:   transcripts,
		thumbnails:    thumbnails,
		cache:         verdictCache,
		limiter:       limiter,
		clientLimiter: clientLimiter,
		cacheTTL:      cfg.CacheTTL,
		buildTimeout:  cfg.BuildTimeout,
	}
}

// GetVerdict resolves the URL to a canonical video id, serves from cache
// when possible, and otherwise runs one budget-accounted upstream build
// under single-flight discipline.
func (s *verdictService) GetVerdict(ctx context.Context, videoURL, clientID string) (*model.Verdict, error) {
	videoID, err := model.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	// Budget state is consulted before the cache so an exhausted budget can
	// short-circuit a miss, but a hit is served regardless: cached videos
	// never count and never get rejected.
	_, budgetErr := s.limiter.Precheck()

	if cached := s.cacheGet(ctx, videoID); cached != nil {
		return cached, nil
	}

	if budgetErr != nil {
		metrics.RateLimitRejectionsTotal.WithLabelValues(metrics.RateLimitScopeGlobal).Inc()
		return nil, budgetErr
	}

	if s.clientLimiter != nil && clientID != "" {
		if _, err := s.clientLimiter.Commit(clientID); err != nil {
			metrics.RateLimitRejectionsTotal.WithLabelValues(metrics.RateLimitScopeClient).Inc()
			return nil, err
		}
	}

	result, err, shared := s.sfGroup.Do(videoID, func() (any, error) {
		// The build must not die with an abandoned caller: other waiters
		// still need the result published. Detach from the caller's
		// cancellation and bound the build on its own clock.
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()

		// Re-check under single-flight: a competing request may have
		// finished a build between our lookup and our election as builder.
		if cached := s.cacheGet(bctx, videoID); cached != nil {
			return cached, nil
		}

		// The global counter advances exactly here: one commit per elected
		// builder, never one per waiter.
		if _, err := s.limiter.Commit(); err != nil {
			metrics.RateLimitRejectionsTotal.WithLabelValues(metrics.RateLimitScopeGlobal).Inc()
			return nil, err
		}

		return s.build(bctx, videoID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}
	return result.(*model.Verdict), nil
}

// build runs the full upstream pipeline for one video id: metadata fetch,
// two-branch fan-out, combination, cache write-back.
func (s *verdictService) build(ctx context.Context, videoID string) (*model.Verdict, error) {
	meta, err := s.metadata.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	transcriptResult, thumbnailResult := s.fanOut(ctx, meta)

	verdict := CombineVerdict(meta, transcriptResult, thumbnailResult)

	outcome := metrics.VerdictOutcomeUnsafe
	if verdict.IsSafe {
		outcome = metrics.VerdictOutcomeSafe
	}
	metrics.VerdictsTotal.WithLabelValues(outcome).Inc()

	if err := s.cache.Set(ctx, verdict, s.cacheTTL); err != nil {
		// A cache failure degrades the next request to a rebuild; it never
		// fails this one.
		slog.Warn("failed to cache verdict",
			"video_id", videoID,
			"error", err,
		)
	}

	return verdict, nil
}

// fanOut runs both analysis branches concurrently and waits for both.
// Branch failures are captured into the results, never returned: one
// branch's failure must not cancel the other, and the product requires
// both reasons even when one side is negative.
func (s *verdictService) fanOut(ctx context.Context, meta *model.VideoMetadata) (transcript, thumbnail model.BranchResult) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		safe, reason, err := s.transcripts.Analyze(gctx, meta.CaptionText, meta)
		transcript = model.BranchResult{Safe: safe, Reason: reason, Err: err}
		return nil
	})
	g.Go(func() error {
		safe, reason, err := s.thumbnails.Analyze(gctx, meta.ThumbnailURL)
		thumbnail = model.BranchResult{Safe: safe, Reason: reason, Err: err}
		return nil
	})

	// Branch goroutines always return nil; Wait only synchronizes.
	_ = g.Wait()
	return transcript, thumbnail
}

// cacheGet treats any backend failure as a miss.
func (s *verdictService) cacheGet(ctx context.Context, videoID string) *model.Verdict {
	cached, err := s.cache.Get(ctx, videoID)
	if err != nil {
		slog.Warn("cache get failed, treating as miss",
			"video_id", videoID,
			"error", err,
		)
		return nil
	}
	return cached
}

func (s *verdictService) CacheStats(ctx context.Context) (*cache.Stats, error) {
	return s.cache.Stats(ctx)
}

func (s *verdictService) ClearCache(ctx context.Context) (int, error) {
	return s.cache.Clear(ctx)
}
