package words

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "simple", in: "alpha beta gamma", want: []string{"alpha", "beta", "gamma"}},
		{name: "runs", in: "  alpha\t\tbeta \n\n gamma  ", want: []string{"alpha", "beta", "gamma"}},
		{name: "empty", in: "", want: []string{}},
		{name: "blank", in: " \t\r\n ", want: []string{}},
		{name: "punctuation kept", in: "don't stop, ok?", want: []string{"don't", "stop,", "ok?"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") || len(got) != len(tc.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	text := "the quick  brown\nfox"
	first := Tokenize(text)
	second := Tokenize(text)
	if strings.Join(first, " ") != strings.Join(second, " ") {
		t.Fatalf("expected identical sequences, got %q and %q", first, second)
	}
	if len(first) != len(strings.Fields(text)) {
		t.Fatalf("expected %d words, got %d", len(strings.Fields(text)), len(first))
	}
}

func TestFocalIndex(t *testing.T) {
	cases := map[string]int{
		"a":     0,
		"ab":    1,
		"abc":   1,
		"gamma": 2,
		"beta":  2,
		"naïve": 2,
	}
	for word, want := range cases {
		got := FocalIndex(word)
		if got != want {
			t.Fatalf("FocalIndex(%q) = %d, want %d", word, got, want)
		}
		if got+1 > utf8.RuneCountInString(word) {
			t.Fatalf("FocalIndex(%q) = %d is out of range", word, got)
		}
	}
}

func TestSplitFocal(t *testing.T) {
	prefix, anchor, suffix := SplitFocal("gamma")
	if prefix != "ga" || anchor != "m" || suffix != "ma" {
		t.Fatalf("unexpected split: %q %q %q", prefix, anchor, suffix)
	}
	prefix, anchor, suffix = SplitFocal("résumé")
	if prefix+anchor+suffix != "résumé" || anchor != "u" {
		t.Fatalf("unexpected split for multibyte word: %q %q %q", prefix, anchor, suffix)
	}
	if p, a, s := SplitFocal(""); p != "" || a != "" || s != "" {
		t.Fatalf("expected empty split for empty word")
	}
}
