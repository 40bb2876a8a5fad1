// Package textnorm canonicalizes text for comparison. Two strengths are
// provided: Normalize keeps punctuation and only strips markup/quote
// variance, ForMatching additionally drops everything but word characters
// so that reformatted excerpts still compare equal.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	boldRe    = regexp.MustCompile(`\*\*`)
	markupRe  = regexp.MustCompile("[#>|`]")
	spaceRe   = regexp.MustCompile(`\s+`)
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"「", `"`, "」", `"`,
		"『", `"`, "』", `"`,
	)
)

// Normalize strips markdown emphasis/heading/table/blockquote glyphs,
// unifies quote variants and collapses whitespace. Total and deterministic;
// empty input yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := boldRe.ReplaceAllString(text, "")
	t = markupRe.ReplaceAllString(t, "")
	t = quoteReplacer.Replace(t)
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// ForMatching applies Normalize and then removes all punctuation, keeping
// only letters, digits, underscores and spaces.
func ForMatching(text string) string {
	if text == "" {
		return ""
	}
	t := Normalize(text)
	t = nonWordRe.ReplaceAllString(t, "")
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
