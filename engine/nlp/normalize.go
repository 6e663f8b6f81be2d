package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining marks after NFD decomposition.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// enyeGuard protects ñ from accent stripping; it never appears in input text.
const enyeGuard = "\x00"

// Normalize lower-cases text, strips diacritics while keeping ñ distinct
// from n, replaces punctuation with spaces and collapses whitespace runs.
// This is the canonical comparison form for all entity matching.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "ñ", enyeGuard)
	if stripped, _, err := transform.String(stripAccents, text); err == nil {
		text = stripped
	}
	text = strings.ReplaceAll(text, enyeGuard, "ñ")
	text = punctRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
