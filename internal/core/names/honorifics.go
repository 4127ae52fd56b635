// Package names turns decorated Hansard speaker and roster labels into bare person names
// and resolves them against a sitting's attendance roster
package names

import (
	"regexp"
	"strings"

	"hansard/internal/core/normalize"
)

// honorific alternation used when stripping titles off a label.
// Order matters: Professor must be tried after Prof fails on the trailing space
const honorifics = `(?:Mr|Ms|Mrs|Mdm|Madam|Miss|Dr|Prof|Professor|Er\s+Dr|Assoc\s*Prof\.?\s*Dr\.?|Assoc\s*Prof\.?)`

// honorifics the Chair uses when calling the next member
const chairCallHonorifics = `(?:Mr|Ms|Mrs|Mdm|Madam|Miss|Dr|Assoc\s+Prof\s+Dr|Assoc\s+Prof|Professor|Prof|Er)`

var (
	reLeadHonorific  = regexp.MustCompile(`(?i)^` + honorifics + `\s+`)
	reLeadHonorifics = regexp.MustCompile(`(?i)^(?:` + honorifics + `\s+)+`)
	reParenHonorific = regexp.MustCompile(`(?i)\(` + honorifics + `\s+[^)]+\)`)

	reParens        = regexp.MustCompile(`\([^)]*\)`)
	reInnerParens   = regexp.MustCompile(`\(([^()]*)\)`)
	reTrailingParen = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	reDanglingParen = regexp.MustCompile(`\s*\([^)]*$`)
	reSpeakerWord   = regexp.MustCompile(`(?i)\bSPEAKER\b`)
	reSpeakerParen  = regexp.MustCompile(`(?i)\bSPEAKER\s*\(`)
	reRoleWords     = regexp.MustCompile(`(?i)\b(?:MINISTER|PRIME|DEPUTY|PARLIAMENTARY|SECRETARY|SPEAKER)\b`)
	reNonAlpha      = regexp.MustCompile(`[^A-Za-z\s]`)
	reAlphaToken    = regexp.MustCompile(`[A-Za-z]+`)

	reDeputyHonorific = regexp.MustCompile(`(?i)^(Mr|Ms|Mdm|Madam|Miss|Dr)\b`)
)

// spaces maps NBSP to a plain space so the ASCII \s classes above see it
func spaces(s string) string {
	return strings.ReplaceAll(s, string(normalize.NBSP), " ")
}

// StripHonorific removes a single leading honorific
func StripHonorific(s string) string {
	return reLeadHonorific.ReplaceAllString(spaces(s), "")
}

// StripHonorifics removes any run of leading honorifics, eg "Assoc Prof Dr"
func StripHonorifics(s string) string {
	return reLeadHonorifics.ReplaceAllString(spaces(s), "")
}

// HasParenthesizedPerson reports whether s carries "(<honorific> <name>)" somewhere,
// as role titles like "The Minister for Health (Mr Ong Ye Kung)" do
func HasParenthesizedPerson(s string) bool {
	return reParenHonorific.MatchString(spaces(s))
}

func upper(s string) string { return strings.ToUpper(s) }
