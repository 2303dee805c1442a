package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText normalises a single-line field: NFC form, non-breaking spaces
// turned into spaces, inner whitespace collapsed, ends trimmed.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
