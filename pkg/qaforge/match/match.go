// Package match decides whether a claimed source excerpt is actually drawn
// from the page it cites. Markdown extraction is lossy (tables reflowed,
// bullets rewrapped), so a single exact-substring test would reject far too
// much; instead a cascade of strategies is tried at increasing
// normalization strength, and the first success wins.
package match

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/phrase"
	"github.com/cognidoc/qaforge/pkg/qaforge/textnorm"
)

// Verdict is the outcome of a grounding check.
type Verdict int

const (
	Mismatched Verdict = iota
	Matched
	MissingPage
)

func (v Verdict) String() string {
	switch v {
	case Matched:
		return "matched"
	case MissingPage:
		return "missing_page"
	default:
		return "mismatched"
	}
}

// Result carries the verdict, a confidence ratio in [0,1], and a free-text
// diagnostic naming what failed to match (capped to a few examples).
type Result struct {
	Verdict Verdict
	Ratio   float64
	Detail  string
}

// Thresholds tune the cascade. The divergent constants found across callers
// are deliberately configuration, not load-bearing values.
type Thresholds struct {
	WindowSize    int     // words per sliding window
	WindowRatio   float64 // fraction of windows that must appear verbatim
	KeywordRatio  float64 // fraction of standalone terms that must appear
	LineRatio     float64 // weighted line-average for the line fallback
	MinSourceLen  int     // runes below which a source is an empty-source defect
	MinSubstrLen  int     // runes required for the aggressive substring test
}

// DefaultThresholds returns the recommended cascade tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowSize:   phrase.DefaultWindowSize,
		WindowRatio:  0.40,
		KeywordRatio: 0.50,
		LineRatio:    0.50,
		MinSourceLen: 10,
		MinSubstrLen: 10,
	}
}

// Matcher runs the grounding cascade with a fixed tuning.
type Matcher struct {
	th Thresholds
}

// New creates a matcher; zero-valued threshold fields are filled from
// DefaultThresholds.
func New(th Thresholds) *Matcher {
	def := DefaultThresholds()
	if th.WindowSize <= 0 {
		th.WindowSize = def.WindowSize
	}
	if th.WindowRatio <= 0 {
		th.WindowRatio = def.WindowRatio
	}
	if th.KeywordRatio <= 0 {
		th.KeywordRatio = def.KeywordRatio
	}
	if th.LineRatio <= 0 {
		th.LineRatio = def.LineRatio
	}
	if th.MinSourceLen <= 0 {
		th.MinSourceLen = def.MinSourceLen
	}
	if th.MinSubstrLen <= 0 {
		th.MinSubstrLen = def.MinSubstrLen
	}
	return &Matcher{th: th}
}

// MinSourceLen exposes the short-source cutoff for callers that classify
// short excerpts separately before matching.
func (m *Matcher) MinSourceLen() int { return m.th.MinSourceLen }

// Match checks sourceText against the cited page's markdown. pageFound is
// false when the page does not exist in the corpus, which yields
// MissingPage rather than an error: absent pages are an expected condition.
func (m *Matcher) Match(sourceText, pageText string, pageFound bool) Result {
	if !pageFound {
		return Result{Verdict: MissingPage, Ratio: 0}
	}

	trimmed := strings.TrimSpace(sourceText)
	if utf8.RuneCountInString(trimmed) < m.th.MinSourceLen {
		return Result{Verdict: Mismatched, Ratio: 0, Detail: "source text empty or too short"}
	}

	// Strategy 1: light normalization, verbatim substring.
	normSrc := textnorm.Normalize(sourceText)
	normPage := textnorm.Normalize(pageText)
	if normSrc != "" && strings.Contains(normPage, normSrc) {
		return Result{Verdict: Matched, Ratio: 1.0}
	}

	// Strategy 2: aggressive normalization, verbatim substring.
	aggSrc := textnorm.ForMatching(sourceText)
	aggPage := textnorm.ForMatching(pageText)
	if utf8.RuneCountInString(aggSrc) > m.th.MinSubstrLen && strings.Contains(aggPage, aggSrc) {
		return Result{Verdict: Matched, Ratio: 0.95}
	}

	best := 0.0
	var failed []string

	// Strategy 3: sliding word windows.
	windows := phrase.Windows(aggSrc, m.th.WindowSize, 2)
	if len(windows) > 0 {
		hit := 0
		for _, w := range windows {
			if strings.Contains(aggPage, w) {
				hit++
			} else if len(failed) < 3 {
				failed = append(failed, w)
			}
		}
		ratio := float64(hit) / float64(len(windows))
		if ratio >= m.th.WindowRatio {
			return Result{Verdict: Matched, Ratio: ratio}
		}
		if ratio > best {
			best = ratio
		}
	}

	// Strategy 4: standalone term presence, for restructured content.
	keywords := phrase.Keywords(aggSrc)
	if len(keywords) > 0 {
		hit := 0
		for _, k := range keywords {
			if strings.Contains(aggPage, k) {
				hit++
			} else if len(failed) < 3 {
				failed = append(failed, k)
			}
		}
		ratio := float64(hit) / float64(len(keywords))
		if ratio >= m.th.KeywordRatio {
			return Result{Verdict: Matched, Ratio: ratio}
		}
		if ratio > best {
			best = ratio
		}
	}

	// Strategy 5: line-by-line with shrinking word chunks.
	if ratio, ok := m.lineRatio(sourceText, aggPage); ok {
		if ratio >= m.th.LineRatio {
			return Result{Verdict: Matched, Ratio: ratio}
		}
		if ratio > best {
			best = ratio
		}
	}

	detail := ""
	if len(failed) > 0 {
		detail = fmt.Sprintf("unmatched: %s", strings.Join(failed, "; "))
	}
	return Result{Verdict: Mismatched, Ratio: best, Detail: detail}
}

// lineRatio scores each non-trivial source line: a full match counts 1.0,
// a leading five-word chunk 0.7, a leading three-word chunk 0.4. The
// second return is false when the source has no usable lines.
func (m *Matcher) lineRatio(sourceText, aggPage string) (float64, bool) {
	var lines []string
	for _, l := range strings.Split(sourceText, "\n") {
		l = strings.TrimSpace(l)
		if l != "" && utf8.RuneCountInString(l) > 5 {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return 0, false
	}

	score := 0.0
	for _, l := range lines {
		normLine := textnorm.ForMatching(l)
		if utf8.RuneCountInString(normLine) < 5 {
			score += 1.0
			continue
		}
		if strings.Contains(aggPage, normLine) {
			score += 1.0
			continue
		}
		words := strings.Fields(normLine)
		if len(words) < 3 {
			continue
		}
		if chunk := strings.Join(words[:min(5, len(words))], " "); strings.Contains(aggPage, chunk) {
			score += 0.7
		} else if chunk := strings.Join(words[:3], " "); strings.Contains(aggPage, chunk) {
			score += 0.4
		}
	}
	return score / float64(len(lines)), true
}
