package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize drops runes Postgres text columns and downstream consumers choke on:
// NUL, ASCII controls other than tab/newline/CR, DEL, C1 controls and invalid UTF-8 bytes.
// Returns s unchanged when nothing needs dropping
func Sanitize(s string) string {
	if s == "" || clean(s) {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if dropRune(r) {
			return -1
		}
		return r
	}, s)
}

func clean(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if dropRune(r) {
			return false
		}
	}
	return true
}

func dropRune(r rune) bool {
	switch {
	case r == '\n' || r == '\r' || r == '\t':
		return false
	case r < 0x20, r == 0x7f:
		return true
	case r >= 0x80 && r <= 0x9f:
		return true
	}
	return false
}
