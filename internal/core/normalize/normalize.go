// Package normalize holds the small text helpers shared by name resolution and the transcript walker
//
// Pipeline used by Fold
// 1 UTF-8 repair drop invalid bytes and control runes
// 2 Unicode NFKD decomposition so accents become separate marks
// 3 Remove combining marks and format chars
// 4 Width fold fullwidth to ASCII then recompose with NFC
// 5 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NBSP is the no-break space upstream HTML uses between honorifics and names
const NBSP = '\u00a0'

// pool of fresh transformer chains, a chain is not safe for concurrent use
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip ZWJ ZWNJ FEFF etc
			width.Fold,
			norm.NFC,
		)
	},
}

// WS converts NBSP and every other whitespace run to a single ASCII space and trims the edges
func WS(s string) string {
	if s == "" {
		return ""
	}
	// strings.Fields splits on unicode.IsSpace which already covers NBSP
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns s with compatibility forms and diacritics folded away, case preserved.
// "Tharman Shanmugaratnam" and "Thármán Shanmugaratnam" fold to the same string
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return WS(s)
	}
	return WS(out)
}

// WordCount counts maximal runs of letters, digits and underscore
func WordCount(s string) int {
	n := 0
	in := false
	for _, r := range s {
		if isWord(r) {
			if !in {
				n++
				in = true
			}
			continue
		}
		in = false
	}
	return n
}

// Words splits s into the same runs WordCount counts
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWord(r) })
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TrimWords keeps at most max whitespace separated words of s
func TrimWords(s string, max int) string {
	f := strings.Fields(s)
	if len(f) > max {
		f = f[:max]
	}
	return strings.Join(f, " ")
}
