package repository

import (
	"context"

	"github.com/happyscroll/verdict-api/internal/domain/model"
)

// MetadataClient fetches video metadata and caption text from the platform.
type MetadataClient interface {
	// FetchMetadata returns the metadata record for a video id, including the
	// best available thumbnail URL and caption text (possibly empty).
	FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error)
}

// ThumbnailClassifier judges a thumbnail image for child safety.
type ThumbnailClassifier interface {
	// Analyze fetches the image behind thumbnailURL and classifies it.
	// Returns the safety bit and a human-readable reason.
	Analyze(ctx context.Context, thumbnailURL string) (safe bool, reason string, err error)
}

// TranscriptClassifier judges caption text for child safety.
type TranscriptClassifier interface {
	// Analyze submits the transcript plus title/channel context to the text
	// policy classifier and parses its verdict.
	Analyze(ctx context.Context, transcript string, meta *model.VideoMetadata) (safe bool, reason string, err error)
}
