// Package inspect runs the full entry-by-entry verification: grounding,
// relevance, structural rules, duplicate detection and severity
// classification. It is the one place that knows how the individual
// checks combine into an accept/reject decision.
package inspect

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/corpus"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
	"github.com/cognidoc/qaforge/pkg/qaforge/match"
	"github.com/cognidoc/qaforge/pkg/qaforge/relevance"
	"github.com/cognidoc/qaforge/pkg/qaforge/rules"
	"github.com/cognidoc/qaforge/pkg/qaforge/textnorm"
)

// dedup key parameters: answers shorter than dedupMinRunes are too small
// to call duplicates, longer ones are keyed by their first dedupKeyRunes.
const (
	dedupMinRunes = 50
	dedupKeyRunes = 200
	copyRatio     = 0.85
	copyHeadRunes = 500
)

// DedupSet tracks which answers have been seen, first occurrence wins.
type DedupSet struct {
	seen map[string]string
}

// NewDedupSet returns an empty set.
func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]string)}
}

// Key derives the dedup key for an answer. ok is false when the answer is
// too short to participate in duplicate detection.
func (d *DedupSet) Key(answer string) (string, bool) {
	norm := textnorm.ForMatching(answer)
	if utf8.RuneCountInString(norm) < dedupMinRunes {
		return "", false
	}
	r := []rune(norm)
	if len(r) > dedupKeyRunes {
		r = r[:dedupKeyRunes]
	}
	return string(r), true
}

// Claim registers the answer under id. If an earlier entry already owns
// the key, Claim reports that owner and leaves the set unchanged.
func (d *DedupSet) Claim(answer, id string) (ownerID string, duplicate bool) {
	if owner, dup := d.Contains(answer); dup {
		return owner, true
	}
	d.Add(answer, id)
	return "", false
}

// Contains reports whether the answer's key is already claimed, without
// claiming it.
func (d *DedupSet) Contains(answer string) (ownerID string, duplicate bool) {
	key, ok := d.Key(answer)
	if !ok {
		return "", false
	}
	owner, exists := d.seen[key]
	return owner, exists
}

// Add claims the answer's key for id unconditionally. Short answers are
// ignored.
func (d *DedupSet) Add(answer, id string) {
	if key, ok := d.Key(answer); ok {
		d.seen[key] = id
	}
}

// Len returns the number of claimed keys.
func (d *DedupSet) Len() int { return len(d.seen) }

// Inspector verifies entries against the corpus.
type Inspector struct {
	Corpus    *corpus.Corpus
	Matcher   *match.Matcher
	Rules     *rules.Engine
	Relevance *relevance.Checker

	// Progress, when set, is called after each entry during InspectAll.
	Progress func(done, total int)
}

// New builds an inspector with default checkers for any nil collaborator.
// The corpus is required.
func New(c *corpus.Corpus, m *match.Matcher, e *rules.Engine, rel *relevance.Checker) *Inspector {
	if m == nil {
		m = match.New(match.Thresholds{})
	}
	if e == nil {
		e = rules.New()
	}
	if rel == nil {
		rel = relevance.New()
	}
	return &Inspector{Corpus: c, Matcher: m, Rules: e, Relevance: rel}
}

// Inspect runs every check on one entry. duplicate marks the entry as a
// repeat of an earlier answer; duplicate detection itself is batch-level
// and happens in InspectAll or in the caller's DedupSet.
func (ins *Inspector) Inspect(e *entry.Entry, duplicate bool) ([]issue.Issue, error) {
	var issues []issue.Issue

	if len(e.Sources) == 0 {
		issues = append(issues, issue.New(issue.NoSources))
	}
	if duplicate {
		issues = append(issues, issue.New(issue.DuplicateAnswer))
	}

	var allPages strings.Builder
	for _, src := range e.Sources {
		pageText, found, err := ins.Corpus.Page(src.Page)
		if err != nil {
			return nil, err
		}
		if !found {
			issues = append(issues, issue.Newf(issue.SourceMissing, fmt.Sprintf("page=%d", src.Page)))
			continue
		}
		allPages.WriteString("\n")
		allPages.WriteString(pageText)

		if utf8.RuneCountInString(strings.TrimSpace(src.Text)) >= ins.Matcher.MinSourceLen() {
			res := ins.Matcher.Match(src.Text, pageText, true)
			if res.Verdict != match.Matched {
				issues = append(issues, issue.Newf(issue.SourceTextMismatch,
					fmt.Sprintf("page=%d,ratio=%.2f", src.Page, res.Ratio)))
			}
		} else {
			issues = append(issues, issue.Newf(issue.SourceTextEmpty, fmt.Sprintf("page=%d", src.Page)))
		}

		if rules.PageIsForm(pageText) {
			issues = append(issues, issue.Newf(issue.FormContent, fmt.Sprintf("page=%d", src.Page)))
		}
		if rules.PageIsReferenceTable(pageText) {
			issues = append(issues, issue.Newf(issue.ReferenceTable, fmt.Sprintf("page=%d", src.Page)))
		}
	}
	pages := allPages.String()

	issues = append(issues, ins.Rules.CheckQuestion(e.Question, e.Answer, pages)...)
	issues = append(issues, ins.Rules.CheckAnswerText(e.Answer)...)
	issues = append(issues, ins.Rules.CheckGrammar(e.Question, e.Answer)...)
	issues = append(issues, ins.Relevance.CheckAnswer(e.Question, e.Answer)...)

	if pages != "" && len(e.Sources) > 0 {
		issues = append(issues, ins.Relevance.CheckPage(e.Question, e.Sources[0].Title, pages)...)
	}

	if len(e.Sources) > 0 {
		if e.Sources[0].Text != "" {
			var texts []string
			for _, s := range e.Sources {
				texts = append(texts, s.Text)
			}
			if answerIsSourceCopy(e.Answer, strings.Join(texts, " ")) {
				issues = append(issues, issue.New(issue.AnswerSourceCopy))
			}
		}
		issues = append(issues, ins.Rules.CheckTitle(e.Sources[0].Title)...)
		issues = append(issues, ins.Rules.CheckSourceText(e.Sources[0].Text)...)
	}

	return issues, nil
}

// CategoryStat aggregates outcomes for one category.
type CategoryStat struct {
	Total    int
	Clean    int
	Rejected int
}

// Stats summarizes a batch inspection.
type Stats struct {
	Total      int
	Clean      int
	Rejected   int
	Duplicates int

	IssueCounts    map[issue.Kind]int
	CriticalCounts map[issue.Kind]int
	ByCategory     map[string]*CategoryStat
}

// BatchResult is the outcome of InspectAll. Rejected entries carry their
// rejection_reasons and warnings annotations; clean entries keep only
// warnings.
type BatchResult struct {
	Clean    []*entry.Entry
	Rejected []*entry.Entry
	Stats    Stats
}

// InspectAll verifies a dataset. Entries are annotated in place and
// partitioned by whether any critical issue was found.
func (ins *Inspector) InspectAll(entries []*entry.Entry) (*BatchResult, error) {
	dedup := NewDedupSet()
	duplicates := make(map[string]bool)
	for _, e := range entries {
		if _, dup := dedup.Claim(e.Answer, e.ID); dup {
			duplicates[e.ID] = true
		}
	}

	res := &BatchResult{
		Stats: Stats{
			Total:          len(entries),
			Duplicates:     len(duplicates),
			IssueCounts:    make(map[issue.Kind]int),
			CriticalCounts: make(map[issue.Kind]int),
			ByCategory:     make(map[string]*CategoryStat),
		},
	}

	for i, e := range entries {
		issues, err := ins.Inspect(e, duplicates[e.ID])
		if err != nil {
			return nil, err
		}
		critical, warnings := issue.Split(issues)

		for _, is := range issues {
			res.Stats.IssueCounts[is.Kind]++
		}
		for _, is := range critical {
			res.Stats.CriticalCounts[is.Kind]++
		}
		cat := res.Stats.ByCategory[e.Category]
		if cat == nil {
			cat = &CategoryStat{}
			res.Stats.ByCategory[e.Category] = cat
		}
		cat.Total++

		if len(critical) > 0 {
			e.RejectionReasons = issue.Strings(critical)
			e.Warnings = issue.Strings(warnings)
			res.Rejected = append(res.Rejected, e)
			res.Stats.Rejected++
			cat.Rejected++
		} else {
			e.RejectionReasons = nil
			e.Warnings = issue.Strings(warnings)
			res.Clean = append(res.Clean, e)
			res.Stats.Clean++
			cat.Clean++
		}

		if ins.Progress != nil {
			ins.Progress(i+1, len(entries))
		}
	}
	return res, nil
}

// answerIsSourceCopy reports whether the answer is essentially the source
// excerpt verbatim, judged by similarity of the normalized heads.
func answerIsSourceCopy(answer, sourceText string) bool {
	a := textnorm.ForMatching(answer)
	s := textnorm.ForMatching(sourceText)
	if a == "" || s == "" {
		return false
	}
	return similarity(firstRunes(a, copyHeadRunes), firstRunes(s, copyHeadRunes)) > copyRatio
}

// similarity is 2*LCS/(len(a)+len(b)) over runes, the classic sequence
// ratio.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Report renders a human-readable summary in the layout used for audit
// records: totals, per-kind counts, per-category breakdown.
func (s *Stats) Report() string {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\n전수조사 결과\n%s\n", line, line)
	fmt.Fprintf(&b, "총 엔트리: %d\n통과: %d (%.1f%%)\n탈락: %d (%.1f%%)\n중복 답변: %d\n",
		s.Total, s.Clean, pct(s.Clean, s.Total), s.Rejected, pct(s.Rejected, s.Total), s.Duplicates)

	if len(s.CriticalCounts) > 0 {
		b.WriteString("\n[탈락 사유별 집계]\n")
		for _, kc := range sortedCounts(s.CriticalCounts) {
			fmt.Fprintf(&b, "  %-35s %d\n", kc.kind, kc.count)
		}
	}
	if len(s.ByCategory) > 0 {
		b.WriteString("\n[카테고리별 집계]\n")
		cats := make([]string, 0, len(s.ByCategory))
		for c := range s.ByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			st := s.ByCategory[c]
			fmt.Fprintf(&b, "  %-4s 총 %4d | 통과 %4d | 탈락 %4d\n", c, st.Total, st.Clean, st.Rejected)
		}
	}
	return b.String()
}

type kindCount struct {
	kind  issue.Kind
	count int
}

func sortedCounts(m map[issue.Kind]int) []kindCount {
	out := make([]kindCount, 0, len(m))
	for k, n := range m {
		out = append(out, kindCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].kind < out[j].kind
	})
	return out
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
