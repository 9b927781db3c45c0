package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/infrastructure/cache"
)

// mockMetadataClient provides a configurable mock for MetadataClient.
type mockMetadataClient struct {
	fetchMetadataFn func(ctx context.Context, videoID string) (*model.VideoMetadata, error)
	fetchCount      atomic.Int32
}

func (m *mockMetadataClient) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	m.fetchCount.Add(1)
	if m.fetchMetadataFn != nil {
		return m.fetchMetadataFn(ctx, videoID)
	}
	return testMetadata(videoID), nil
}

// mockTranscriptClassifier provides a configurable mock for TranscriptClassifier.
type mockTranscriptClassifier struct {
	analyzeFn    func(ctx context.Context, transcript string, meta *model.VideoMetadata) (bool, string, error)
	analyzeCount atomic.Int32
}

func (m *mockTranscriptClassifier) Analyze(ctx context.Context, transcript string, meta *model.VideoMetadata) (bool, string, error) {
	m.analyzeCount.Add(1)
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, transcript, meta)
	}
	return true, "Content is appropriate.", nil
}

// mockThumbnailClassifier provides a configurable mock for ThumbnailClassifier.
type mockThumbnailClassifier struct {
	analyzeFn    func(ctx context.Context, thumbnailURL string) (bool, string, error)
	analyzeCount atomic.Int32
}

func (m *mockThumbnailClassifier) Analyze(ctx context.Context, thumbnailURL string) (bool, string, error) {
	m.analyzeCount.Add(1)
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, thumbnailURL)
	}
	return true, "Thumbnail is safe. No inappropriate content detected.", nil
}

// mockVerdictCache provides a configurable mock for cache.VerdictCache.
type mockVerdictCache struct {
	mu    sync.RWMutex
	data  map[string]*model.Verdict
	getFn func(ctx context.Context, videoID string) (*model.Verdict, error)
	setFn func(ctx context.Context, verdict *model.Verdict, ttl time.Duration) error
}

func newMockVerdictCache() *mockVerdictCache {
	return &mockVerdictCache{
		data: make(map[string]*model.Verdict),
	}
}

func (m *mockVerdictCache) Get(ctx context.Context, videoID string) (*model.Verdict, error) {
	if m.getFn != nil {
		return m.getFn(ctx, videoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[videoID], nil
}

func (m *mockVerdictCache) Set(ctx context.Context, verdict *model.Verdict, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, verdict, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[verdict.VideoID] = verdict
	return nil
}

func (m *mockVerdictCache) Delete(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, videoID)
	return nil
}

func (m *mockVerdictCache) Clear(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := len(m.data)
	m.data = make(map[string]*model.Verdict)
	return removed, nil
}

func (m *mockVerdictCache) Stats(ctx context.Context) (*cache.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &cache.Stats{Backend: "memory", Entries: len(m.data)}, nil
}

func testMetadata(videoID string) *model.VideoMetadata {
	return &model.VideoMetadata{
		VideoID:       videoID,
		Title:         "Test Video",
		ChannelTitle:  "Test Channel",
		Description:   "A test video.",
		ThumbnailURL:  "https://i.ytimg.com/vi/" + videoID + "/maxresdefault.jpg",
		CaptionText:   "hello world",
		CaptionSource: model.CaptionSourceManual,
	}
}
