// Package phrase derives comparison units from normalized text: sliding
// word windows for near-verbatim matching and standalone Korean terms for
// content that survived reformatting (tables rewritten as prose).
package phrase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultWindowSize is the recommended span, in words, for near-verbatim
// window matching.
const DefaultWindowSize = 4

// minWindowChars drops windows too short to be discriminative.
const minWindowChars = 6

var keywordRe = regexp.MustCompile(`[가-힣]{3,}`)

// Windows splits text into whitespace tokens and emits every step-th
// contiguous span of size words. Spans shorter than six characters are
// skipped. step <= 1 emits every window.
func Windows(text string, size, step int) []string {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if step <= 0 {
		step = 1
	}
	words := strings.Fields(text)
	if len(words) < size {
		return nil
	}
	var out []string
	for i := 0; i+size <= len(words); i += step {
		w := strings.Join(words[i:i+size], " ")
		if utf8.RuneCountInString(w) < minWindowChars {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Keywords extracts maximal Korean-syllable runs of three or more
// characters, deduplicated in first-seen order.
func Keywords(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range keywordRe.FindAllString(text, -1) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
