package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/infrastructure/cache"
	"github.com/happyscroll/verdict-api/internal/usecase"
)

// mockVerdictService is a mock implementation of usecase.VerdictService.
type mockVerdictService struct {
	getVerdictFn func(ctx context.Context, videoURL, clientID string) (*model.Verdict, error)
	cacheStatsFn func(ctx context.Context) (*cache.Stats, error)
	clearCacheFn func(ctx context.Context) (int, error)
}

func (m *mockVerdictService) GetVerdict(ctx context.Context, videoURL, clientID string) (*model.Verdict, error) {
	if m.getVerdictFn != nil {
		return m.getVerdictFn(ctx, videoURL, clientID)
	}
	return nil, nil
}

func (m *mockVerdictService) CacheStats(ctx context.Context) (*cache.Stats, error) {
	if m.cacheStatsFn != nil {
		return m.cacheStatsFn(ctx)
	}
	return &cache.Stats{}, nil
}

func (m *mockVerdictService) ClearCache(ctx context.Context) (int, error) {
	if m.clearCacheFn != nil {
		return m.clearCacheFn(ctx)
	}
	return 0, nil
}

func postVerdict(t *testing.T, h *VerdictHandler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/happyScroll/v1/verdict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Verdict(rec, req)
	return rec
}

func TestVerdictHandler_Success(t *testing.T) {
	verdict := &model.Verdict{
		VideoID:          "dQw4w9WgXcQ",
		IsSafe:           true,
		IsSafeTranscript: true,
		IsSafeThumbnail:  true,
		OverallReason:    "SAFE: Both transcript and thumbnail are appropriate for children.",
		VideoTitle:       "Test Video",
		ChannelTitle:     "Test Channel",
	}

	var gotURL, gotClientID string
	h := NewVerdictHandler(&mockVerdictService{
		getVerdictFn: func(ctx context.Context, videoURL, clientID string) (*model.Verdict, error) {
			gotURL, gotClientID = videoURL, clientID
			return verdict, nil
		},
	})

	rec := postVerdict(t, h,
		`{"video_url": "https://youtu.be/dQw4w9WgXcQ"}`,
		map[string]string{"X-Client-Id": "ext-abc"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("service got url %q", gotURL)
	}
	if gotClientID != "ext-abc" {
		t.Errorf("service got client id %q, want %q", gotClientID, "ext-abc")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["video_id"] != "dQw4w9WgXcQ" {
		t.Errorf("video_id = %v", resp["video_id"])
	}
	if resp["is_safe"] != true {
		t.Errorf("is_safe = %v, want true", resp["is_safe"])
	}
	for _, key := range []string{"is_safe_transcript", "is_safe_thumbnail", "transcript_reason", "thumbnail_reason", "overall_reason", "video_title", "channel_title"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response missing field %q", key)
		}
	}
}

func TestVerdictHandler_BadRequests(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"InvalidJSON", `{not json`, "Invalid JSON body"},
		{"MissingURL", `{}`, "video_url cannot be empty"},
		{"BlankURL", `{"video_url": "   "}`, "video_url cannot be empty"},
	}

	h := NewVerdictHandler(&mockVerdictService{})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postVerdict(t, h, tc.body, nil)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp DetailResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Detail != tc.wantDetail {
				t.Errorf("detail = %v, want %q", resp.Detail, tc.wantDetail)
			}
		})
	}
}

func TestVerdictHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"InvalidURL", model.ErrInvalidURL, http.StatusBadRequest},
		{"UnextractableID", model.ErrUnextractableID, http.StatusBadRequest},
		{"VideoNotFound", repository.ErrVideoNotFound, http.StatusInternalServerError},
		{"UpstreamDown", repository.ErrUpstreamUnavailable, http.StatusInternalServerError},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewVerdictHandler(&mockVerdictService{
				getVerdictFn: func(ctx context.Context, videoURL, clientID string) (*model.Verdict, error) {
					return nil, tc.err
				},
			})

			rec := postVerdict(t, h, `{"video_url": "https://youtu.be/dQw4w9WgXcQ"}`, nil)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestVerdictHandler_BudgetExhausted(t *testing.T) {
	h := NewVerdictHandler(&mockVerdictService{
		getVerdictFn: func(ctx context.Context, videoURL, clientID string) (*model.Verdict, error) {
			return nil, &usecase.BudgetExhaustedError{Scope: "global", Limit: 150, Count: 150}
		},
	})

	rec := postVerdict(t, h, `{"video_url": "https://youtu.be/dQw4w9WgXcQ"}`, nil)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	var resp struct {
		Detail BudgetDetail `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Detail.Error != "Daily limit exceeded" {
		t.Errorf("error = %q", resp.Detail.Error)
	}
	if resp.Detail.Limit != 150 || resp.Detail.RequestsToday != 150 {
		t.Errorf("limit/requests_today = %d/%d, want 150/150", resp.Detail.Limit, resp.Detail.RequestsToday)
	}
	if !strings.Contains(resp.Detail.Note, "Cached videos do not count") {
		t.Errorf("note = %q, want cached-videos note", resp.Detail.Note)
	}
}

func TestVerdictHandler_CacheStats(t *testing.T) {
	h := NewVerdictHandler(&mockVerdictService{
		cacheStatsFn: func(ctx context.Context) (*cache.Stats, error) {
			return &cache.Stats{Backend: "redis", Hits: 10, Misses: 5, Entries: 3, TTLDays: 7}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/happyScroll/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status string      `json:"status"`
		Stats  cache.Stats `json:"cache_statistics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if resp.Stats.Backend != "redis" || resp.Stats.Hits != 10 {
		t.Errorf("cache_statistics = %+v", resp.Stats)
	}
}

func TestVerdictHandler_CacheClear(t *testing.T) {
	h := NewVerdictHandler(&mockVerdictService{
		clearCacheFn: func(ctx context.Context) (int, error) {
			return 4, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/happyScroll/v1/cache/clear", nil)
	rec := httptest.NewRecorder()
	h.CacheClear(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["entries_removed"] != float64(4) {
		t.Errorf("entries_removed = %v, want 4", resp["entries_removed"])
	}
}

func TestVerdictHandler_CacheClearError(t *testing.T) {
	h := NewVerdictHandler(&mockVerdictService{
		clearCacheFn: func(ctx context.Context) (int, error) {
			return 0, errors.New("redis down")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/happyScroll/v1/cache/clear", nil)
	rec := httptest.NewRecorder()
	h.CacheClear(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
}
