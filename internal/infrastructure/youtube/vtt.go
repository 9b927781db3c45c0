package youtube

import (
	"regexp"
	"strings"
)

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// stripVTT reduces a WEBVTT document to its cue text: headers, cue numbers,
// timing lines and inline markup are discarded and the remaining lines are
// joined with single spaces.
func stripVTT(vtt string) string {
	var out []string
	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") ||
			strings.HasPrefix(line, "STYLE") ||
			strings.Contains(line, "-->") ||
			isCueNumber(line) {
			continue
		}
		if clean := strings.TrimSpace(markupPattern.ReplaceAllString(line, "")); clean != "" {
			out = append(out, clean)
		}
	}
	return strings.Join(out, " ")
}

func isCueNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
