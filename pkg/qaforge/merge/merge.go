// Package merge combines the outputs of several generation passes into
// one dataset: duplicates are dropped, structurally broken entries are
// filtered, categories are re-derived from the cited page, and ids are
// reassigned per chapter in page order.
package merge

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/config"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
)

const (
	minQuestionRunes = 10
	minAnswerRunes   = 100
	minSourceRunes   = 10
)

var htmlResidueRe = regexp.MustCompile(`(?i)<(?:br|div|p |span|table|img|input|align)`)

// LengthStats summarizes a rune-length distribution.
type LengthStats struct {
	Avg int
	Min int
	Max int
}

// Stats describes one merge run.
type Stats struct {
	Loaded     int
	Duplicates int
	Invalid    map[string]int // filter reason -> count
	Kept       int

	ByCategory    map[string]int
	PagesCovered  int
	Subcategories int
	Keywords      int

	Question LengthStats
	Answer   LengthStats
	Source   LengthStats
}

// Merger merges pass outputs under one category configuration.
type Merger struct {
	cfg *config.Config
}

// New returns a merger. cfg supplies the chapter table.
func New(cfg *config.Config) *Merger {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Merger{cfg: cfg}
}

// Merge combines the groups in order. The first occurrence of a question
// wins; later duplicates are dropped. Kept entries are returned sorted by
// chapter and page with freshly assigned ids. Input entries are not
// modified.
func (m *Merger) Merge(groups ...[]*entry.Entry) ([]*entry.Entry, *Stats) {
	stats := &Stats{
		Invalid:    make(map[string]int),
		ByCategory: make(map[string]int),
	}

	seen := make(map[string]bool)
	var kept []*entry.Entry
	for _, group := range groups {
		for _, e := range group {
			stats.Loaded++
			q := strings.TrimSpace(e.Question)
			if seen[q] {
				stats.Duplicates++
				continue
			}
			if reason := m.validate(e); reason != "" {
				stats.Invalid[reason]++
				continue
			}
			// Claimed only once validated, so a broken entry does not
			// shadow a later well-formed copy of the same question.
			seen[q] = true
			kept = append(kept, e.Clone())
		}
	}

	nums := make(map[string]string, len(kept))
	for _, e := range kept {
		name, num := m.cfg.Category(e.Page())
		e.Category = name
		nums[name] = num
	}

	order := m.chapterOrder()
	sort.SliceStable(kept, func(i, j int) bool {
		oi, oj := order[kept[i].Category], order[kept[j].Category]
		if oi != oj {
			return oi < oj
		}
		return kept[i].Page() < kept[j].Page()
	})

	counters := make(map[string]int)
	for _, e := range kept {
		counters[e.Category]++
		e.ID = fmt.Sprintf("q_%s_%04d", nums[e.Category], counters[e.Category])
	}

	m.fillStats(stats, kept)
	return kept, stats
}

// validate mirrors the structural floor every merged entry must clear.
// It returns the first failing reason, or "".
func (m *Merger) validate(e *entry.Entry) string {
	switch {
	case utf8.RuneCountInString(e.Question) < minQuestionRunes:
		return "short_question"
	case utf8.RuneCountInString(e.Answer) < minAnswerRunes:
		return "short_answer"
	case len(e.Sources) == 0:
		return "no_sources"
	case utf8.RuneCountInString(e.Sources[0].Text) < minSourceRunes:
		return "short_source"
	case htmlResidueRe.MatchString(e.Answer):
		return "html_in_answer"
	case htmlResidueRe.MatchString(e.Sources[0].Text):
		return "html_in_source"
	}
	return ""
}

// chapterOrder maps chapter names to their position in the config table.
// Unknown chapters sort last.
func (m *Merger) chapterOrder() map[string]int {
	order := make(map[string]int, len(m.cfg.Categories))
	for i, c := range m.cfg.Categories {
		order[c.Name] = i
	}
	return order
}

func (m *Merger) fillStats(stats *Stats, kept []*entry.Entry) {
	stats.Kept = len(kept)
	if len(kept) == 0 {
		return
	}

	pages := make(map[int]bool)
	subcats := make(map[string]bool)
	var qLens, aLens, sLens []int
	for _, e := range kept {
		stats.ByCategory[e.Category]++
		for _, s := range e.Sources {
			pages[s.Page] = true
		}
		subcats[e.Subcategory] = true
		stats.Keywords += len(e.Keywords)
		qLens = append(qLens, utf8.RuneCountInString(e.Question))
		aLens = append(aLens, utf8.RuneCountInString(e.Answer))
		sLens = append(sLens, utf8.RuneCountInString(e.Sources[0].Text))
	}
	stats.PagesCovered = len(pages)
	stats.Subcategories = len(subcats)
	stats.Question = lengthStats(qLens)
	stats.Answer = lengthStats(aLens)
	stats.Source = lengthStats(sLens)
}

func lengthStats(lens []int) LengthStats {
	s := LengthStats{Min: lens[0], Max: lens[0]}
	sum := 0
	for _, n := range lens {
		sum += n
		if n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
	}
	s.Avg = sum / len(lens)
	return s
}

// Report renders the run summary.
func (s *Stats) Report(categories []config.CategoryRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Final Dataset Statistics ===\n")
	fmt.Fprintf(&b, "Loaded: %d  duplicates: %d  kept: %d\n", s.Loaded, s.Duplicates, s.Kept)

	if len(s.Invalid) > 0 {
		fmt.Fprintf(&b, "\nFiltered:\n")
		reasons := make([]string, 0, len(s.Invalid))
		for r := range s.Invalid {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&b, "  %s: %d\n", r, s.Invalid[r])
		}
	}

	fmt.Fprintf(&b, "\nCategory distribution:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "  %s: %d\n", c.Name, s.ByCategory[c.Name])
	}

	if s.Kept > 0 {
		fmt.Fprintf(&b, "\nQuality metrics:\n")
		fmt.Fprintf(&b, "  Question length: avg=%d, min=%d, max=%d\n", s.Question.Avg, s.Question.Min, s.Question.Max)
		fmt.Fprintf(&b, "  Answer length: avg=%d, min=%d, max=%d\n", s.Answer.Avg, s.Answer.Min, s.Answer.Max)
		fmt.Fprintf(&b, "  Source length: avg=%d, min=%d, max=%d\n", s.Source.Avg, s.Source.Min, s.Source.Max)
		fmt.Fprintf(&b, "  Pages covered: %d\n", s.PagesCovered)
		fmt.Fprintf(&b, "  Unique subcategories: %d\n", s.Subcategories)
		fmt.Fprintf(&b, "  Total keywords: %d (avg %d per entry)\n", s.Keywords, s.Keywords/s.Kept)
	}
	return b.String()
}
