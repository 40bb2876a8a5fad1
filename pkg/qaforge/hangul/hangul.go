// Package hangul provides small helpers for Korean syllable structure,
// used to pick and validate grammatical particles.
package hangul

import "strings"

const (
	syllableBase = 0xAC00
	syllableEnd  = 0xD7A3
	jongseongCnt = 28
)

// IsSyllable reports whether r is a precomposed Hangul syllable.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableEnd
}

// HasBatchim reports whether r is a Hangul syllable ending in a final
// consonant (받침). Non-syllable runes report false.
func HasBatchim(r rune) bool {
	if !IsSyllable(r) {
		return false
	}
	return (r-syllableBase)%jongseongCnt != 0
}

// LastRune returns the final rune of s after trailing space trim, or 0
// if the string is empty.
func LastRune(s string) rune {
	s = strings.TrimRight(s, " \t\n")
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

// EndsWithBatchim reports whether the final rune of s carries a 받침.
func EndsWithBatchim(s string) bool {
	return HasBatchim(LastRune(s))
}

// particle slots recognized by FillParticles. Each maps to the form used
// after a 받침 and the form used after an open syllable.
var slots = []struct {
	slot    string
	closed  string
	open    string
}{
	{"{이가}", "이", "가"},
	{"{을를}", "을", "를"},
	{"{은는}", "은", "는"},
	{"{으로로}", "으로", "로"},
	{"{과와}", "과", "와"},
}

// FillParticles resolves particle slots like "{은는}" in a template against
// the final syllable of topic. Unknown slots are left untouched.
func FillParticles(template, topic string) string {
	if topic == "" {
		return template
	}
	closed := EndsWithBatchim(topic)
	out := template
	for _, s := range slots {
		if closed {
			out = strings.ReplaceAll(out, s.slot, s.closed)
		} else {
			out = strings.ReplaceAll(out, s.slot, s.open)
		}
	}
	return out
}
