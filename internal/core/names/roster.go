package names

import (
	"strings"
)

// Method records how a speaker label was tied to a roster name
type Method string

const (
	// MethodExact is a MatchKey hit
	MethodExact Method = "exact"
	// MethodFuzzy is a similarity hit at or above FuzzyThreshold
	MethodFuzzy Method = "fuzzy"
	// MethodChair is a Chair label attributed to whoever presides
	MethodChair Method = "chair"
	// MethodNone means the label stays unresolved
	MethodNone Method = "none"
)

// Resolution is the outcome of resolving one speaker label
type Resolution struct {
	Query  string  // name extracted from the label
	Name   string  // canonical roster name, empty when unresolved
	Score  float64 // 1 for exact hits, the best ratio otherwise
	Method Method
}

// Resolved reports whether a roster name was found
func (r Resolution) Resolved() bool { return r.Method != MethodNone }

// Roster is the per-sitting index of cleaned attendance names.
// Read only once built; never share one across sittings
type Roster struct {
	names []string
	keys  []string
	byKey map[string]string
}

// NewRoster cleans every label, de-duplicates in order, and keys each name by MatchKey.
// The first name producing a key owns it
func NewRoster(labels []string) *Roster {
	r := &Roster{byKey: map[string]string{}}
	seen := map[string]struct{}{}
	for _, l := range labels {
		c, ok := Clean(strings.TrimSpace(l))
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		k := MatchKey(c)
		r.names = append(r.names, c)
		r.keys = append(r.keys, k)
		if _, taken := r.byKey[k]; k != "" && !taken {
			r.byKey[k] = c
		}
	}
	return r
}

// Names returns the cleaned names in roster order
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len is the number of distinct cleaned names
func (r *Roster) Len() int { return len(r.names) }

// Lookup is an exact MatchKey lookup
func (r *Roster) Lookup(name string) (string, bool) {
	k := MatchKey(name)
	if k == "" {
		return "", false
	}
	n, ok := r.byKey[k]
	return n, ok
}

// Canonical swaps name for the roster spelling sharing its MatchKey, else returns it as is
func (r *Roster) Canonical(name string) string {
	if name == "" {
		return ""
	}
	if n, ok := r.Lookup(name); ok {
		return n
	}
	return name
}

// Best is BestMatch over the roster in roster order
func (r *Roster) Best(query string) (string, float64) {
	q := MatchKey(query)
	if q == "" {
		return "", 0
	}
	return bestByKey(q, r.names, r.keys)
}

// Resolve ties a non-Chair speaker label to a roster name. An explicit parenthesized
// person beats the label text; an exact key hit beats a fuzzy one
func (r *Roster) Resolve(label string) Resolution {
	q, ok := PersonFromLabel(label)
	if !ok {
		q, ok = LastParenthesized(label)
	}
	if !ok {
		if q, ok = Clean(label); !ok {
			q = label
		}
	}

	res := Resolution{Query: q, Method: MethodNone}
	if n, ok := r.Lookup(q); ok {
		res.Name, res.Score, res.Method = n, 1, MethodExact
		return res
	}
	best, score := r.Best(q)
	res.Score = score
	if best != "" && score >= FuzzyThreshold {
		res.Name, res.Method = r.Canonical(best), MethodFuzzy
	}
	return res
}
