package gemini

import (
	"fmt"
	"strings"

	"github.com/happyscroll/verdict-api/internal/domain/model"
)

// safetyPrompt is the policy contract of the product: the rule list is a
// stable input to the classifier, not an implementation choice. The model is
// instructed to answer in a fixed VERDICT/EXPLANATION format.
const safetyPrompt = `You are a content moderator following STRICT Indian parenting norms for children's safety.

Analyze this video transcript and metadata:

TRANSCRIPT:
%s

METADATA:
Title: %s
Channel: %s
Caption source: %s

STRICT SAFETY RULES (ANY violation = UNSAFE):

ABSOLUTELY NOT ALLOWED (Mark as UNSAFE):
1. Nudity - ANY form (partial, full, artistic, medical, accidental, cartoon)
2. Sexual Content - ANY references (innuendos, jokes, gestures, educational)
3. Racism - ANY form (jokes, stereotypes, slurs, casual references)
4. Discrimination - Based on religion, caste, gender, region, color
5. Violence - Physical harm, weapons, blood, fighting, bullying
6. Abusive Language - Swear words, profanity, insults, derogatory terms
7. Drugs/Alcohol - Any references, jokes, or depiction
8. Scary Content - Horror, gore, disturbing imagery
9. Inappropriate Gestures - Offensive hand signs, provocative movements
10. Adult Themes - Dating, romance, intimate situations
11. Dangerous Acts - Stunts, risky behavior kids might copy
12. Religious Insensitivity - Mocking any faith or belief

SAFE ONLY IF:
- Educational and age-appropriate
- Positive, uplifting messages
- Family-friendly entertainment
- Cultural content respectful to all
- No questionable elements whatsoever

IMPORTANT: Follow strict Indian family values. When in doubt, mark as UNSAFE. Better to be over-cautious than risk exposing children to inappropriate content.

Respond EXACTLY in this format:
VERDICT: [YES if completely safe, NO if any concern]
EXPLANATION: [Detailed explanation of your decision]
`

func buildPrompt(transcript string, meta *model.VideoMetadata) string {
	if strings.TrimSpace(transcript) == "" {
		transcript = "No captions or description available."
	}
	return fmt.Sprintf(safetyPrompt, transcript, meta.Title, meta.ChannelTitle, meta.CaptionSource)
}
