package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/usecase"
)

// clientIDHeader carries the caller's optional self-reported identity used
// for server-side per-client limiting.
const clientIDHeader = "X-Client-Id"

type VerdictRequest struct {
	VideoURL string `json:"video_url"`
}

// BudgetDetail is the structured 429 payload. The note about cached videos
// is part of the contract: clients must learn that hits are never refused.
type BudgetDetail struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Info          string `json:"info"`
	Note          string `json:"note"`
	Limit         int    `json:"limit"`
	RequestsToday int    `json:"requests_today"`
}

// VerdictHandler handles verdict and cache admin requests.
type VerdictHandler struct {
	svc usecase.VerdictService
}

// NewVerdictHandler creates a new VerdictHandler.
func NewVerdictHandler(svc usecase.VerdictService) *VerdictHandler {
	return &VerdictHandler{svc: svc}
}

// Verdict handles POST /api/happyScroll/v1/verdict
func (h *VerdictHandler) Verdict(w http.ResponseWriter, r *http.Request) {
	var req VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Detail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	videoURL := strings.TrimSpace(req.VideoURL)
	if videoURL == "" {
		Detail(w, http.StatusBadRequest, "video_url cannot be empty")
		return
	}

	verdict, err := h.svc.GetVerdict(r.Context(), videoURL, r.Header.Get(clientIDHeader))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, verdict)
}

// CacheStats handles GET /api/happyScroll/v1/cache/stats
func (h *VerdictHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CacheStats(r.Context())
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Failed to read cache statistics")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"cache_statistics": stats,
		"message":          fmt.Sprintf("Cache is %.1f%% effective", stats.HitRatePct),
	})
}

// CacheClear handles POST /api/happyScroll/v1/cache/clear
func (h *VerdictHandler) CacheClear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.ClearCache(r.Context())
	if err != nil {
		Detail(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	slog.Warn("cache manually cleared", "entries_removed", removed)

	JSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"message":         "Cache cleared successfully",
		"entries_removed": removed,
	})
}

func (h *VerdictHandler) handleServiceError(w http.ResponseWriter, err error) {
	var budgetErr *usecase.BudgetExhaustedError

	switch {
	case errors.Is(err, model.ErrInvalidURL):
		Detail(w, http.StatusBadRequest,
			"video_url must be a YouTube URL (youtube.com, youtu.be, youtube.com/shorts)")

	case errors.Is(err, model.ErrUnextractableID):
		Detail(w, http.StatusBadRequest, "Invalid YouTube URL: could not extract video ID")

	case errors.As(err, &budgetErr):
		Detail(w, http.StatusTooManyRequests, BudgetDetail{
			Error:         "Daily limit exceeded",
			Message:       "The API has reached its daily limit for new video analysis. Please try again tomorrow.",
			Info:          "New analyses are capped to manage upstream usage.",
			Note:          "Cached videos do not count toward the limit.",
			Limit:         budgetErr.Limit,
			RequestsToday: budgetErr.Count,
		})

	case errors.Is(err, repository.ErrVideoNotFound):
		Detail(w, http.StatusInternalServerError, "Video not found on the platform")

	default:
		slog.Error("verdict request failed", "error", err)
		Detail(w, http.StatusInternalServerError, "Failed to process video verdict")
	}
}
