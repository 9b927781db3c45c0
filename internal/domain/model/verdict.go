package model

// CaptionSource tags which acquisition tier produced the caption text.
type CaptionSource string

const (
	CaptionSourceManual      CaptionSource = "manual"
	CaptionSourceAuto        CaptionSource = "auto-generated"
	CaptionSourceDescription CaptionSource = "description-fallback"
)

// VideoMetadata is the immutable per-video record fetched from the platform.
// It lives for one request unless embedded in a cached Verdict.
type VideoMetadata struct {
	VideoID       string
	Title         string
	ChannelTitle  string
	Description   string
	Tags          []string
	ThumbnailURL  string
	CaptionText   string
	CaptionSource CaptionSource
}

// BranchResult is the outcome of one analysis branch. A branch either
// completed (Err == nil) with a safety bit and reason, or failed with Err.
// The combiner treats a failed branch as unsafe.
type BranchResult struct {
	Safe   bool
	Reason string
	Err    error
}

// OK reports whether the branch produced a classifier result.
func (r BranchResult) OK() bool { return r.Err == nil }

// maxReasonLength bounds every human-readable reason string stored in a Verdict.
const maxReasonLength = 1000

// TruncateReason bounds a reason string to the maximum stored length.
func TruncateReason(s string) string {
	if len(s) <= maxReasonLength {
		return s
	}
	return s[:maxReasonLength]
}

// Verdict is the cached, returned value for one video. Read-only once built.
type Verdict struct {
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
