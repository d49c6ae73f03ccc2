package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invisible lists code points that recognition output sometimes carries and
// that corrupt downstream diffing and search.
var invisible = []string{
	"\u200b", // zero width space
	"\u200c", // zero width non-joiner
	"\u200d", // zero width joiner
	"\ufeff", // byte order mark
}

// CleanRecognizedText normalizes service output into stable UTF-8: NFC form,
// non-breaking spaces collapsed to plain spaces, zero-width runes removed,
// and surrounding whitespace trimmed.
func CleanRecognizedText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := norm.NFC.String(text)
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")
	for _, s := range invisible {
		cleaned = strings.ReplaceAll(cleaned, s, "")
	}
	return strings.TrimSpace(cleaned)
}

// SanitizeFileStem strips characters that are unsafe in output file names,
// collapsing runs into single underscores.
func SanitizeFileStem(name string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '.', r == ' ':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(sb.String(), "_ ")
}
