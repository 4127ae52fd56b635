package normalize

import (
	"testing"
)

func TestWS(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "empty", in: "", out: ""},
		{name: "identity", in: "Mr Speaker", out: "Mr Speaker"},
		{name: "nbsp", in: "Mr\u00a0Speaker", out: "Mr Speaker"},
		{name: "runs and edges", in: " \t Mr \n\n  Tan  ", out: "Mr Tan"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WS(tc.in); got != tc.out {
				t.Fatalf("WS(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "ascii untouched", in: "Vivian Balakrishnan", out: "Vivian Balakrishnan"},
		{name: "combining acute", in: "Jose\u0301 Tan", out: "Jose Tan"},
		{name: "precomposed accent", in: "Th\u00e1rm\u00e1n", out: "Tharman"},
		{name: "zero widths", in: "Ong\u200b Ye\ufeff Kung", out: "Ong Ye Kung"},
		{name: "fullwidth", in: "\uff34\uff21\uff2e", out: "TAN"},
		{name: "nbsp collapse", in: "Dr\u00a0\u00a0Tan", out: "Dr Tan"},
		{name: "control runes dropped", in: "Tan\x00 See\x7f Leng", out: "Tan See Leng"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Fold(tc.in)
			if got != tc.out {
				t.Fatalf("Fold(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Fold(got); again != got {
				t.Fatalf("Fold not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Mr Speaker, Sir.", 3},
		{"S$1.5 billion", 4},
		{"co-operation and well_being", 4},
		{"  \n\n ", 0},
	}
	for _, tc := range tests {
		if got := WordCount(tc.in); got != tc.want {
			t.Fatalf("WordCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
		if got := len(Words(tc.in)); got != tc.want {
			t.Fatalf("len(Words(%q)) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTrimWords(t *testing.T) {
	if got := TrimWords("  a b   c d ", 3); got != "a b c" {
		t.Fatalf("TrimWords = %q", got)
	}
	if got := TrimWords("a b", 5); got != "a b" {
		t.Fatalf("TrimWords short = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	in := string([]byte{'a', 0x00, 'b', 0xff, '\n', 'c'}) + "\u0085d"
	want := "ab\ncd"
	if got := Sanitize(in); got != want {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
	}
	ok := "Mr Tan\tasked\r\n"
	if got := Sanitize(ok); got != ok {
		t.Fatalf("Sanitize changed clean input: %q", got)
	}
}
