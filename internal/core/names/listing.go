package names

import (
	"regexp"
	"strings"

	"hansard/internal/core/normalize"
)

var (
	reQuestionNumber = regexp.MustCompile(`(?i)(^|\s)\d{1,3}\s+(` + honorifics + `\b|To ask\b)`)
	reAskedMinister  = regexp.MustCompile(`(?i)\basked\s+(?:the\s+)?(?:minister|prime minister|deputy prime minister|parliamentary secretary)\b`)
)

// IsQuestionListing reports whether text is a Question Time paper entry rather than
// spoken debate: "<n> <label> asked the Minister for ...". These are kept as non-oral rows
func IsQuestionListing(label, text string) bool {
	if label == "" || text == "" {
		return false
	}
	s := normalize.WS(text)
	sp := normalize.WS(label)
	lead, err := regexp.Compile(`(?i)^\d+\s+` + regexp.QuoteMeta(sp) + `\s+asked\b`)
	if err != nil || !lead.MatchString(s) {
		return false
	}
	return reAskedMinister.MatchString(s)
}

// StripQuestionNumber drops embedded question numbers that precede a member's name
// or "To ask", so "3 Mr Tan asked" becomes "Mr Tan asked"
func StripQuestionNumber(text string) string {
	if text == "" {
		return text
	}
	out := reQuestionNumber.ReplaceAllString(spaces(text), " $2")
	return normalize.WS(strings.TrimSpace(out))
}
