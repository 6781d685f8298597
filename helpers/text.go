package helpers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// foldAccents decomposes accented Latin letters and strips the combining marks,
// so "é" becomes "e" and "ç" becomes "c".
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts free text into a lowercase, hyphenated, filename-safe
// identifier. Whitespace-only input yields an empty string.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	s = nonAlnumRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CollapseSpace collapses every run of whitespace to a single space and trims
// the result.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
