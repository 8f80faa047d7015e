package notify

import (
	"fmt"
	"strings"

	"github.com/smontoya/cupo/backend/internal/domain"
)

// maxSubjectLen is the hard cap on cleaned subject length, in runes.
const maxSubjectLen = 70

// CleanSubject normalizes a generated mail subject: surrounding whitespace is
// trimmed, internal whitespace runs collapse to a single space, and subjects
// longer than 70 runes are hard-truncated with the trailing 3 runes replaced
// by an ellipsis. Returns "" when nothing printable remains; callers should
// fall back to FallbackSubject then.
func CleanSubject(s string) string {
	cleaned := strings.Join(strings.Fields(s), " ")
	runes := []rune(cleaned)
	if len(runes) <= maxSubjectLen {
		return cleaned
	}
	return string(runes[:maxSubjectLen-3]) + "..."
}

// FallbackSubject synthesizes a deterministic subject from the passenger's
// requested route when the generated subject cleans down to nothing.
func FallbackSubject(fs domain.FactSheet) string {
	subject := fmt.Sprintf("Trip match: %s to %s", fs.WantedOrigin, fs.WantedDestination)
	if fs.WantedDate != nil {
		subject += " on " + fs.WantedDate.UTC().Format("2006-01-02")
	}
	return CleanSubject(subject)
}
