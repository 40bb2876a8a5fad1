// Package stem strips trailing Korean grammatical particles from tokens to
// obtain approximate stems for topical overlap scoring. This is a surface
// heuristic, not morphological analysis: false stems are tolerated because
// results only feed overlap ratios, never user-facing output.
package stem

import (
	"regexp"
	"unicode/utf8"
)

// particles holds known particle suffixes, longest first so that a long
// suffix is never shadowed by one of its own tails ("으로서의" before "으로").
var particles = []string{
	"으로서의", "으로써의", "으로부터", "에서부터",
	"에서는", "에서의", "으로는", "에게서", "으로서", "으로써",
	"에서도", "까지는", "부터는", "만으로", "에게는", "과의", "와의",
	"으로", "에서", "에게", "부터", "까지", "에는", "에도",
	"이란", "이라", "에의", "란", "라면", "이면",
	"인가요", "되나요", "하나요", "인지요", "습니까", "입니까",
	"은", "는", "이", "가", "을", "를", "에", "의", "도",
	"로", "과", "와", "나", "며", "야", "요", "고",
}

var koreanRunRe = regexp.MustCompile(`[가-힣]{2,}`)

// StripParticles removes a trailing particle from word if the remainder is
// still a non-trivial stem. Words of two or fewer syllables are returned
// unchanged.
func StripParticles(word string) string {
	wordLen := utf8.RuneCountInString(word)
	if wordLen <= 2 {
		return word
	}
	for _, p := range particles {
		pLen := utf8.RuneCountInString(p)
		if wordLen > pLen+1 && hasSuffix(word, p) {
			return word[:len(word)-len(p)]
		}
	}
	return word
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// Extract tokenizes text on maximal runs of Korean syllables and returns the
// deduplicated set of stems. Original tokens of three or more syllables are
// kept alongside their stems so compounds stay matchable even when the
// particle guess is wrong.
func Extract(text string) map[string]struct{} {
	stems := make(map[string]struct{})
	for _, w := range koreanRunRe.FindAllString(text, -1) {
		s := StripParticles(w)
		if utf8.RuneCountInString(s) >= 2 {
			stems[s] = struct{}{}
		}
		if utf8.RuneCountInString(w) >= 3 {
			stems[w] = struct{}{}
		}
	}
	return stems
}
