package usecase

import (
	"github.com/happyscroll/verdict-api/internal/domain/model"
)

// Overall reason strings. The verdict is the conjunction of both branches;
// each combination gets a fixed sentence naming the failing side.
const (
	reasonBothSafe   = "SAFE: Both transcript and thumbnail are appropriate for children."
	reasonBothUnsafe = "UNSAFE: Both transcript and thumbnail contain inappropriate content. " +
		"Video should be blocked."
	reasonTranscriptUnsafe = "UNSAFE: Transcript contains inappropriate content. " +
		"Video should be blocked despite safe thumbnail."
	reasonThumbnailUnsafe = "UNSAFE: Thumbnail contains inappropriate imagery. " +
		"Video should be blocked despite safe transcript."
)

// CombineVerdict merges the two branch results into the final verdict.
// It is total over the ok/err combinations: a branch error makes that side
// unsafe and its error detail becomes the branch reason (fail-closed).
func CombineVerdict(meta *model.VideoMetadata, transcript, thumbnail model.BranchResult) *model.Verdict {
	safeTranscript := transcript.OK() && transcript.Safe
	safeThumbnail := thumbnail.OK() && thumbnail.Safe

	var overall string
	switch {
	case safeTranscript && safeThumbnail:
		overall = reasonBothSafe
	case !safeTranscript && !safeThumbnail:
		overall = reasonBothUnsafe
	case !safeTranscript:
		overall = reasonTranscriptUnsafe
	default:
		overall = reasonThumbnailUnsafe
	}

	return &model.Verdict{
		VideoID:          meta.VideoID,
		IsSafe:           safeTranscript && safeThumbnail,
		IsSafeTranscript: safeTranscript,
		IsSafeThumbnail:  safeThumbnail,
		TranscriptReason: model.TruncateReason(branchReason(transcript)),
		ThumbnailReason:  model.TruncateReason(branchReason(thumbnail)),
		OverallReason:    overall,
		VideoTitle:       meta.Title,
		ChannelTitle:     meta.ChannelTitle,
	}
}

func branchReason(r model.BranchResult) string {
	if r.Err != nil {
		return "Analysis failed: " + r.Err.Error()
	}
	return r.Reason
}
