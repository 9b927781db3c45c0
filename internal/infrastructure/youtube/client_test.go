package youtube

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
	yt "google.golang.org/api/youtube/v3"

	"github.com/happyscroll/verdict-api/internal/domain/repository"
)

func caption(lang, trackKind string) *yt.Caption {
	return &yt.Caption{Snippet: &yt.CaptionSnippet{Language: lang, TrackKind: trackKind}}
}

func TestPickCaptionTrack_Preference(t *testing.T) {
	manualEN := caption("en", "standard")
	autoEN := caption("en", "asr")
	manualHI := caption("hi", "standard")
	autoHI := caption("hi", "asr")
	manualGB := caption("en-GB", "standard")

	testCases := []struct {
		name  string
		items []*yt.Caption
		want  *yt.Caption
	}{
		{"ManualEnglishWins", []*yt.Caption{autoHI, manualHI, autoEN, manualEN}, manualEN},
		{"AutoEnglishSecond", []*yt.Caption{autoHI, manualHI, autoEN}, autoEN},
		{"ManualAnyThird", []*yt.Caption{autoHI, manualHI}, manualHI},
		{"AutoAnyLast", []*yt.Caption{autoHI}, autoHI},
		// en-GB counts as English, so it outranks the manual Hindi track.
		{"RegionalEnglish", []*yt.Caption{manualHI, manualGB}, manualGB},
		{"Empty", nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := pickCaptionTrack(tc.items)
			if got != tc.want {
				t.Errorf("pickCaptionTrack = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestPickCaptionTrack_NilSnippet(t *testing.T) {
	items := []*yt.Caption{{Snippet: nil}, caption("en", "standard")}
	got := pickCaptionTrack(items)
	if got != items[1] {
		t.Error("tracks without snippets must be skipped")
	}
}

func TestBestThumbnailURL(t *testing.T) {
	maxres := &yt.Thumbnail{Url: "https://i.ytimg.com/vi/x/maxresdefault.jpg"}
	high := &yt.Thumbnail{Url: "https://i.ytimg.com/vi/x/hqdefault.jpg"}

	testCases := []struct {
		name    string
		details *yt.ThumbnailDetails
		want    string
		wantErr bool
	}{
		{"MaxresPreferred", &yt.ThumbnailDetails{Maxres: maxres, High: high}, maxres.Url, false},
		{"HighFallback", &yt.ThumbnailDetails{High: high}, high.Url, false},
		{"EmptyMaxresFallsThrough", &yt.ThumbnailDetails{Maxres: &yt.Thumbnail{}, High: high}, high.Url, false},
		{"NeitherAvailable", &yt.ThumbnailDetails{Default: &yt.Thumbnail{Url: "low.jpg"}}, "", true},
		{"Nil", nil, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := bestThumbnailURL(tc.details)
			if tc.wantErr {
				if !errors.Is(err, repository.ErrMetadataUnavailable) {
					t.Errorf("error = %v, want ErrMetadataUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("bestThumbnailURL failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("bestThumbnailURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDescriptionFallback(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		tags        []string
		want        string
	}{
		{"DescriptionAndTags", "A nature documentary.", []string{"nature", "wildlife"}, "A nature documentary. nature wildlife"},
		{"DescriptionOnly", "  Just text.  ", nil, "Just text."},
		{"TagsOnly", "", []string{"music", " live "}, "music live"},
		{"Empty", "   ", []string{"", "  "}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := descriptionFallback(tc.description, tc.tags)
			if got != tc.want {
				t.Errorf("descriptionFallback = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapAPIError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"Forbidden", &googleapi.Error{Code: http.StatusForbidden}, repository.ErrPermissionDenied},
		{"Unauthorized", &googleapi.Error{Code: http.StatusUnauthorized}, repository.ErrPermissionDenied},
		{"NotFound", &googleapi.Error{Code: http.StatusNotFound}, repository.ErrVideoNotFound},
		{"ServerError", &googleapi.Error{Code: http.StatusInternalServerError}, repository.ErrUpstreamUnavailable},
		{"PlainError", errors.New("dial tcp: timeout"), repository.ErrUpstreamUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapAPIError(tc.err)
			if !errors.Is(got, tc.want) {
				t.Errorf("mapAPIError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
