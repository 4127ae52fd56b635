package names

import (
	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyThreshold is the lowest similarity accepted as the same person.
// Below it a speaker is left unresolved rather than guessed
const FuzzyThreshold = 0.75

// Similarity is the difflib sequence ratio of a and b compared rune by rune, in [0,1]
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(runesOf(a), runesOf(b)).Ratio()
}

// BestMatch scores query against every candidate by MatchKey and returns the best one.
// The first candidate reaching the top score wins, so callers control ties through order.
// Returns "" and 0 when the query has no key
func BestMatch(query string, candidates []string) (string, float64) {
	q := MatchKey(query)
	if q == "" {
		return "", 0
	}
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = MatchKey(c)
	}
	return bestByKey(q, candidates, keys)
}

func bestByKey(q string, candidates, keys []string) (string, float64) {
	best, bestScore := "", 0.0
	a := runesOf(q)
	for i, c := range candidates {
		if keys[i] == "" {
			continue
		}
		sc := difflib.NewMatcher(a, runesOf(keys[i])).Ratio()
		if sc > bestScore {
			best, bestScore = c, sc
		}
	}
	return best, bestScore
}

func runesOf(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
