// Package youtube fetches video metadata and caption text from the
// YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

const (
	// defaultTimedTextURL serves caption tracks as VTT without OAuth; the
	// official captions.download endpoint requires owner credentials.
	defaultTimedTextURL = "https://www.youtube.com/api/timedtext"

	requestTimeout = 10 * time.Second
)

// Client implements repository.MetadataClient against the YouTube Data API.
type Client struct {
	svc  *yt.Service
	http *http.Client

	// timedTextURL is overridable in tests.
	timedTextURL string
}

// NewClient creates a YouTube Data API client authenticated by API key.
// Additional options (custom endpoint, HTTP client) are passed through,
// which the tests use to point at a stub server.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube API key is required")
	}

	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	return &Client{
		svc:          svc,
		http:         &http.Client{Timeout: requestTimeout},
		timedTextURL: defaultTimedTextURL,
	}, nil
}

// FetchMetadata returns the metadata record for a video id: title, channel,
// best available thumbnail and caption text. Caption acquisition is
// best-effort; metadata-level failures abort.
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	resp, err := c.svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamYouTube, metrics.UpstreamStatusError).Inc()
		return nil, mapAPIError(err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamYouTube, metrics.UpstreamStatusSuccess).Inc()

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrVideoNotFound, videoID)
	}
	snippet := resp.Items[0].Snippet
	if snippet == nil {
		return nil, fmt.Errorf("%w: empty snippet for %s", repository.ErrMetadataUnavailable, videoID)
	}

	thumbURL, err := bestThumbnailURL(snippet.Thumbnails)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, videoID)
	}

	meta := &model.VideoMetadata{
		VideoID:      videoID,
		Title:        snippet.Title,
		ChannelTitle: snippet.ChannelTitle,
		Description:  snippet.Description,
		Tags:         snippet.Tags,
		ThumbnailURL: thumbURL,
	}

	text, source, err := c.fetchCaptions(ctx, videoID)
	if err != nil {
		slog.Warn("caption fetch failed, falling back to description",
			"video_id", videoID,
			"error", err,
		)
		text = ""
	}
	if text == "" {
		text = descriptionFallback(snippet.Description, snippet.Tags)
		source = model.CaptionSourceDescription
	}
	meta.CaptionText = text
	meta.CaptionSource = source

	return meta, nil
}

// bestThumbnailURL walks the quality-descending fallback chain.
func bestThumbnailURL(t *yt.ThumbnailDetails) (string, error) {
	if t != nil {
		if t.Maxres != nil && t.Maxres.Url != "" {
			return t.Maxres.Url, nil
		}
		if t.High != nil && t.High.Url != "" {
			return t.High.Url, nil
		}
	}
	return "", repository.ErrMetadataUnavailable
}

// fetchCaptions lists caption tracks and downloads the preferred one.
// Preference: manual English, auto-generated English, any manual, any auto.
func (c *Client) fetchCaptions(ctx context.Context, videoID string) (string, model.CaptionSource, error) {
	resp, err := c.svc.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return "", "", mapAPIError(err)
	}
	if len(resp.Items) == 0 {
		return "", "", nil
	}

	track := pickCaptionTrack(resp.Items)
	if track == nil {
		return "", "", nil
	}

	text, err := c.downloadTimedText(ctx, videoID, track.Snippet.Language, isAutoTrack(track))
	if err != nil {
		return "", "", err
	}

	source := model.CaptionSourceManual
	if isAutoTrack(track) {
		source = model.CaptionSourceAuto
	}
	return text, source, nil
}

func isAutoTrack(c *yt.Caption) bool {
	return strings.EqualFold(c.Snippet.TrackKind, "asr")
}

func isEnglish(lang string) bool {
	return lang == "en" || strings.HasPrefix(strings.ToLower(lang), "en-")
}

// pickCaptionTrack applies the four-tier track preference.
func pickCaptionTrack(items []*yt.Caption) *yt.Caption {
	var manualEN, autoEN, manualAny, autoAny *yt.Caption
	for _, item := range items {
		if item.Snippet == nil {
			continue
		}
		auto := isAutoTrack(item)
		en := isEnglish(item.Snippet.Language)
		switch {
		case en && !auto && manualEN == nil:
			manualEN = item
		case en && auto && autoEN == nil:
			autoEN = item
		case !en && !auto && manualAny == nil:
			manualAny = item
		case !en && auto && autoAny == nil:
			autoAny = item
		}
	}
	for _, track := range []*yt.Caption{manualEN, autoEN, manualAny, autoAny} {
		if track != nil {
			return track
		}
	}
	return nil
}

// downloadTimedText fetches the track as VTT and strips it to plain text.
func (c *Client) downloadTimedText(ctx context.Context, videoID, lang string, auto bool) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)
	q.Set("fmt", "vtt")
	if auto {
		q.Set("kind", "asr")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.timedTextURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: timedtext: %v", repository.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: timedtext status %d", repository.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: timedtext read: %v", repository.ErrUpstreamUnavailable, err)
	}

	return stripVTT(string(body)), nil
}

// descriptionFallback derives caption-like text from the description and tags.
func descriptionFallback(description string, tags []string) string {
	parts := make([]string, 0, 1+len(tags))
	if s := strings.TrimSpace(description); s != "" {
		parts = append(parts, s)
	}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			parts = append(parts, tag)
		}
	}
	return strings.Join(parts, " ")
}

func mapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", repository.ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", repository.ErrVideoNotFound, err)
		}
	}
	return fmt.Errorf("%w: %v", repository.ErrUpstreamUnavailable, err)
}
