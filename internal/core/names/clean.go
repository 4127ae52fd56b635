package names

import (
	"strings"

	"hansard/internal/core/normalize"
)

// Clean returns the bare person name in a roster or speaker label: no honorific,
// no constituency, no portfolio. ok is false when nothing name-like is left.
//
//	"Mr Chan Chun Sing (Tanjong Pagar), Coordinating Minister ..." -> "Chan Chun Sing"
//	"Miss Rachel Ong (West Coast)."                               -> "Rachel Ong"
//	"Mr SPEAKER (Mr Seah Kian Peng (Marine Parade))."             -> "Seah Kian Peng"
//
// Clean is idempotent on its own output
func Clean(raw string) (string, bool) {
	s := strings.TrimRight(strings.TrimSpace(spaces(raw)), ".")
	if s == "" {
		return "", false
	}

	// "<Role> SPEAKER (<Honorific Person (Constituency)>)", but never for deputy lines
	if !strings.Contains(upper(s), "DEPUTY SPEAKER") && reSpeakerParen.MatchString(s) {
		if p, ok := PersonFromSpeakerLine(s); ok {
			return p, true
		}
	}

	// role title with the officeholder in parentheses
	if reParenHonorific.MatchString(s) {
		if p, ok := PersonFromLabel(s); ok {
			return p, true
		}
	}

	s = beforeComma(s)
	s = strings.Trim(reTrailingParen.ReplaceAllString(s, ""), " .")
	s = strings.TrimSpace(StripHonorifics(s))
	s = reSpeakerWord.ReplaceAllString(s, "")
	s = normalize.WS(s)
	return s, s != ""
}

// PersonFromSpeakerLine extracts the officeholder from the outermost parentheses of
// a Speaker roster line, eg "Mr SPEAKER (Mr Seah Kian Peng (Marine Parade))."
func PersonFromSpeakerLine(raw string) (string, bool) {
	s := strings.TrimSpace(spaces(raw))
	l := strings.Index(s, "(")
	r := strings.LastIndex(s, ")")
	if l == -1 || r == -1 || r <= l {
		return "", false
	}
	inner := strings.Trim(strings.TrimSpace(s[l+1:r]), ".")
	inner = strings.Trim(reTrailingParen.ReplaceAllString(inner, ""), " .")
	inner = strings.TrimSpace(StripHonorific(inner))
	return inner, inner != ""
}

// PersonFromLabel extracts an explicit person name from a label. A parenthesized
// "(<honorific> <name>)" wins; a bare Speaker/Deputy Speaker label yields nothing so
// the caller resolves it through the roster; anything else is treated as a name
func PersonFromLabel(raw string) (string, bool) {
	s := strings.TrimSpace(spaces(raw))
	if s == "" {
		return "", false
	}

	if m := reParenHonorific.FindString(s); m != "" {
		inner := strings.Trim(m, "() ")
		inner = reTrailingParen.ReplaceAllString(inner, "")
		// the match stops at the first ")" so a nested constituency is left unclosed
		inner = reDanglingParen.ReplaceAllString(inner, "")
		inner = strings.TrimSpace(StripHonorifics(strings.Trim(inner, " .")))
		inner = strings.Trim(normalize.WS(beforeComma(inner)), " .")
		return inner, inner != ""
	}

	if reSpeakerWord.MatchString(s) {
		return "", false
	}

	s = beforeComma(StripHonorific(s))
	s = reParens.ReplaceAllString(s, " ")
	s = strings.Trim(normalize.WS(s), " .")
	return s, s != ""
}

// LastParenthesized returns the last innermost parenthesized chunk when it looks like a
// name (two or more alphabetic tokens), eg "The Minister for ... (Assoc Prof Dr Yaacob Ibrahim)"
func LastParenthesized(raw string) (string, bool) {
	parts := reInnerParens.FindAllStringSubmatch(spaces(raw), -1)
	if len(parts) == 0 {
		return "", false
	}
	last := strings.Trim(strings.TrimSpace(parts[len(parts)-1][1]), ".")
	if len(reAlphaToken.FindAllString(last, -1)) < 2 {
		return "", false
	}
	last = strings.TrimSpace(StripHonorifics(last))
	last = strings.Trim(normalize.WS(last), " .")
	return last, last != ""
}

// NameKey is the upper-cased, honorific and constituency free form used to key
// Deputy Speaker roster lines
func NameKey(raw string) string {
	s := StripHonorific(strings.TrimSpace(spaces(raw)))
	s = reParens.ReplaceAllString(s, "")
	s = strings.Trim(normalize.WS(beforeComma(s)), " .")
	return upper(s)
}

// MatchKey is the comparison basis for exact and fuzzy roster lookups:
// parentheticals, portfolio, leading honorific and role words dropped, ASCII letters only,
// upper-cased. Diacritics are folded first so "José" and "Jose" share a key
func MatchKey(s string) string {
	if s == "" {
		return ""
	}
	x := normalize.Fold(spaces(s))
	x = reParens.ReplaceAllString(x, " ")
	x = beforeComma(x)
	x = reLeadHonorific.ReplaceAllString(x, "")
	x = reRoleWords.ReplaceAllString(x, " ")
	x = reNonAlpha.ReplaceAllString(x, " ")
	return upper(normalize.WS(x))
}

func beforeComma(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
