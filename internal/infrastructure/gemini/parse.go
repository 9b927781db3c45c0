package gemini

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
)

var (
	verdictPattern     = regexp.MustCompile(`(?i)VERDICT:\s*(YES|NO)`)
	explanationPattern = regexp.MustCompile(`(?is)EXPLANATION:\s*(.+)`)
	bareYesPattern     = regexp.MustCompile(`(?i)\bYES\b`)
	bareNoPattern      = regexp.MustCompile(`(?i)\bNO\b`)
)

// parseVerdict extracts the safety bit and justification from a classifier
// response. A response with no recognizable verdict keyword is an error; a
// response carrying both YES and NO outside the VERDICT line is ambiguous
// and treated as unsafe.
func parseVerdict(text string) (bool, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, "", fmt.Errorf("%w: empty response", repository.ErrClassifierUnparseable)
	}

	var safe bool
	if m := verdictPattern.FindStringSubmatch(text); m != nil {
		safe = strings.EqualFold(m[1], "YES")
	} else {
		yes := bareYesPattern.MatchString(text)
		no := bareNoPattern.MatchString(text)
		switch {
		case yes && !no:
			safe = true
		case no:
			safe = false
		default:
			return false, "", fmt.Errorf("%w: no verdict keyword in response", repository.ErrClassifierUnparseable)
		}
	}

	reason := text
	if m := explanationPattern.FindStringSubmatch(text); m != nil {
		reason = strings.TrimSpace(m[1])
	}
	return safe, model.TruncateReason(reason), nil
}
