package names

import "testing"

func TestBestMatch(t *testing.T) {
	got, score := BestMatch("Dr Vivian Balakrishnan", []string{"Chan Chun Sing", "Vivian Balakrishnan"})
	if got != "Vivian Balakrishnan" || score != 1.0 {
		t.Fatalf("BestMatch = %q,%v", got, score)
	}

	if got, score := BestMatch("", []string{"Chan Chun Sing"}); got != "" || score != 0 {
		t.Fatalf("empty query = %q,%v", got, score)
	}
	if got, score := BestMatch("Mr Speaker", []string{"Chan Chun Sing"}); got != "" || score != 0 {
		t.Fatalf("role-only query = %q,%v", got, score)
	}

	// ties go to the first candidate in order
	got, _ = BestMatch("Lim Wee Kiat", []string{"Lim Wee Kiat.", "Mr Lim Wee Kiat"})
	if got != "Lim Wee Kiat." {
		t.Fatalf("tie = %q", got)
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("ABCD", "ABCD"); s != 1 {
		t.Fatalf("identical = %v", s)
	}
	if s := Similarity("ABCD", "WXYZ"); s != 0 {
		t.Fatalf("disjoint = %v", s)
	}
	// 2*M/T with M=3 T=7
	if s := Similarity("ABC", "ABCD"); s < 0.857 || s > 0.858 {
		t.Fatalf("partial = %v", s)
	}
}

func TestRoster(t *testing.T) {
	r := NewRoster([]string{
		"Mr SPEAKER (Mr Seah Kian Peng (Marine Parade)).",
		"Mr Chan Chun Sing (Tanjong Pagar), Minister for Education.",
		"Dr Vivian Balakrishnan (Holland-Bukit Timah), Minister for Foreign Affairs.",
		"Mr Chan Chun Sing (Tanjong Pagar).",
		"",
	})
	if r.Len() != 3 {
		t.Fatalf("Len = %d, names = %v", r.Len(), r.Names())
	}
	want := []string{"Seah Kian Peng", "Chan Chun Sing", "Vivian Balakrishnan"}
	for i, n := range r.Names() {
		if n != want[i] {
			t.Fatalf("Names[%d] = %q, want %q", i, n, want[i])
		}
	}

	if got := r.Canonical("Dr  Vivian Balakrishnan"); got != "Vivian Balakrishnan" {
		t.Fatalf("Canonical = %q", got)
	}
	if got := r.Canonical("Nobody Here"); got != "Nobody Here" {
		t.Fatalf("Canonical passthrough = %q", got)
	}
	if got := r.Canonical(""); got != "" {
		t.Fatalf("Canonical empty = %q", got)
	}
}

func TestRosterResolve(t *testing.T) {
	r := NewRoster([]string{"Mr Chan Chun Sing (Tanjong Pagar).", "Dr Vivian Balakrishnan (Holland-Bukit Timah)."})

	tests := []struct {
		name   string
		label  string
		want   string
		method Method
	}{
		{"plain label", "Mr Chan Chun Sing", "Chan Chun Sing", MethodExact},
		{"role title", "The Minister for Foreign Affairs (Dr Vivian Balakrishnan)", "Vivian Balakrishnan", MethodExact},
		{"typo", "Dr Vivian Balakrishan", "Vivian Balakrishnan", MethodFuzzy},
		{"absent", "Tan Xyz", "", MethodNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Resolve(tc.label)
			if res.Name != tc.want || res.Method != tc.method {
				t.Fatalf("Resolve(%q) = %+v, want %q via %s", tc.label, res, tc.want, tc.method)
			}
			if res.Resolved() != (tc.method != MethodNone) {
				t.Fatalf("Resolved mismatch for %+v", res)
			}
			if tc.method == MethodNone && (res.Score >= FuzzyThreshold || res.Score < 0) {
				t.Fatalf("unresolved score out of range: %v", res.Score)
			}
		})
	}
}

func TestFuzzyThresholdIsPinned(t *testing.T) {
	if FuzzyThreshold != 0.75 {
		t.Fatalf("FuzzyThreshold = %v; changing it changes historical attributions", FuzzyThreshold)
	}
}
