package textutil

import "testing"

func TestCleanRecognizedText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trims whitespace", "  hello  \n", "hello"},
		{"nbsp to space", "a\u00a0b", "a b"},
		{"strips zero width", "a\u200bb\ufeffc", "abc"},
		{"plain passthrough", "ligne deux", "ligne deux"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanRecognizedText(tc.in); got != tc.want {
				t.Fatalf("CleanRecognizedText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileStem(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"letters 1914.pdf", "letters 1914.pdf"},
		{"a/b\\c", "a_b_c"},
		{"__weird__", "weird"},
		{"résumé", "r_sum"},
	}
	for _, tc := range cases {
		if got := SanitizeFileStem(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileStem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
