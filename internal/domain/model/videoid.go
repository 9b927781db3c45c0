package model

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL is returned when the input is not a recognizable YouTube URL.
	ErrInvalidURL = errors.New("not a valid YouTube URL")

	// ErrUnextractableID is returned when the host is recognized but no
	// well-formed video id can be found in the URL.
	ErrUnextractableID = errors.New("could not extract video ID from URL")
)

// videoIDPattern matches a canonical YouTube video identifier.
var videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

var watchHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// ExtractVideoID normalizes any supported YouTube URL form to the canonical
// 11-character video id. The id is the sole cache key, so every URL variant
// pointing at the same video must collapse to byte-identical output here.
//
// Supported shapes:
//
//	https://www.youtube.com/watch?v=VIDEO_ID
//	https://youtu.be/VIDEO_ID
//	https://www.youtube.com/shorts/VIDEO_ID
//	https://www.youtube.com/embed/VIDEO_ID
//
// The scheme is optional and query parameter order is irrelevant.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrInvalidURL
	}

	// url.Parse treats scheme-less input as a relative path; normalize first.
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())

	switch {
	case host == "youtu.be":
		return validateID(firstPathSegment(u.Path))

	case watchHosts[host]:
		if id := u.Query().Get("v"); id != "" {
			return validateID(id)
		}
		for _, prefix := range []string{"/shorts/", "/embed/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				return validateID(firstPathSegment(rest))
			}
		}
		return "", ErrUnextractableID

	default:
		return "", ErrInvalidURL
	}
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

func validateID(id string) (string, error) {
	if !videoIDPattern.MatchString(id) {
		return "", ErrUnextractableID
	}
	return id, nil
}
