// Package recovery applies mechanical repairs to rejected entries and
// re-verifies them. Only repairs with a deterministic right answer are
// attempted: stripping leaked formatting, unescaping markdown, particle
// agreement, replacing meaningless source titles and rewording a known
// set of nonsense verb pairings. Every candidate goes back through the
// full inspection before it may rejoin the dataset.
package recovery

import (
	"regexp"
	"strings"

	"github.com/cognidoc/qaforge/pkg/qaforge/corpus"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/inspect"
	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
	"github.com/cognidoc/qaforge/pkg/qaforge/rules"
)

const maxTitleRunes = 50

var (
	boldRe     = regexp.MustCompile(`\s*\*\*\s*`)
	bulletRe   = regexp.MustCompile(`^[□◎●○■▶☞【\[(]\s*`)
	mdPrefixRe = regexp.MustCompile("^[>|`#]+\\s*")
	spaceRe    = regexp.MustCompile(`\s+`)
	qaNumberRe = regexp.MustCompile(`^[QA][0-9]+[.\s:]\s*`)
)

// escapeFixer undoes escaping introduced by markdown conversion.
var escapeFixer = strings.NewReplacer(
	`\|`, "|",
	`\*`, "*",
	`\#`, "#",
	`\-`, "-",
	`\_`, "_",
)

// verbFixes rewrites "~을 하려면" pairings whose object cannot be "done"
// into the verb the noun actually takes.
var verbFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`대상을\s*하려면`), "대상에 해당하려면"},
	{regexp.MustCompile(`내용을\s*하려면`), "내용을 확인하려면"},
	{regexp.MustCompile(`사항을\s*하려면`), "사항을 확인하려면"},
	{regexp.MustCompile(`서류를\s*하려면`), "서류를 제출하려면"},
	{regexp.MustCompile(`기준을\s*하려면`), "기준을 충족하려면"},
	{regexp.MustCompile(`규정을\s*하려면`), "규정을 적용하려면"},
}

// Engine repairs and re-verifies rejected entries.
type Engine struct {
	inspector *inspect.Inspector
	rules     *rules.Engine

	// Progress, when set, is called after each entry during Recover.
	Progress func(done, total int)
}

// New builds a recovery engine around an inspector. The inspector's
// corpus is also used for title re-derivation.
func New(ins *inspect.Inspector) *Engine {
	return &Engine{inspector: ins, rules: ins.Rules}
}

// Result is the outcome of a recovery run.
type Result struct {
	Recovered     []*entry.Entry
	StillRejected []*entry.Entry

	// FixCounts counts applied repairs by the issue kind they target.
	FixCounts map[issue.Kind]int
	// RecoveredReasons counts, per original rejection reason, how many
	// entries carrying it were recovered.
	RecoveredReasons map[issue.Kind]int
}

// Recover repairs each rejected entry and re-inspects it. existingClean
// seeds duplicate detection so a repaired entry cannot duplicate an
// answer already in the accepted dataset; entries recovered earlier in
// the run count as well. Inputs are not mutated.
func (g *Engine) Recover(rejected, existingClean []*entry.Entry) (*Result, error) {
	dedup := inspect.NewDedupSet()
	for _, e := range existingClean {
		dedup.Add(e.Answer, e.ID)
	}

	res := &Result{
		FixCounts:        make(map[issue.Kind]int),
		RecoveredReasons: make(map[issue.Kind]int),
	}

	for i, orig := range rejected {
		cand := orig.Clone()
		origReasons := cand.RejectionReasons
		cand.RejectionReasons = nil
		cand.Warnings = nil

		fixes, err := g.applyFixes(cand)
		if err != nil {
			return nil, err
		}
		for _, f := range fixes {
			res.FixCounts[f]++
		}

		_, dup := dedup.Contains(cand.Answer)
		issues, err := g.inspector.Inspect(cand, dup)
		if err != nil {
			return nil, err
		}
		critical, warnings := issue.Split(issues)

		if len(critical) == 0 {
			cand.Warnings = issue.Strings(warnings)
			res.Recovered = append(res.Recovered, cand)
			dedup.Add(cand.Answer, cand.ID)
			for _, r := range origReasons {
				res.RecoveredReasons[issue.Parse(r).Kind]++
			}
		} else {
			cand.RejectionReasons = issue.Strings(critical)
			cand.Warnings = issue.Strings(warnings)
			res.StillRejected = append(res.StillRejected, cand)
		}

		if g.Progress != nil {
			g.Progress(i+1, len(rejected))
		}
	}
	return res, nil
}

// applyFixes mutates the candidate in place and reports which repairs
// changed anything, labeled by the issue kind they address.
func (g *Engine) applyFixes(e *entry.Entry) ([]issue.Kind, error) {
	var applied []issue.Kind

	if q := fixQuestionMarkdown(e.Question); q != e.Question {
		e.Question = q
		applied = append(applied, issue.QuestionRawMarkdown)
	}
	if q := qaNumberRe.ReplaceAllString(e.Question, ""); q != e.Question {
		e.Question = strings.TrimSpace(q)
		applied = append(applied, issue.QuestionQANumber)
	}
	if a := escapeFixer.Replace(e.Answer); a != e.Answer {
		e.Answer = a
		applied = append(applied, issue.AnswerEscapedMarkdown)
	}

	q, qn := rules.CorrectParticles(e.Question)
	a, an := rules.CorrectParticles(e.Answer)
	if qn+an > 0 {
		e.Question = q
		e.Answer = a
		applied = append(applied, issue.GrammarError)
	}

	retitled, err := g.fixSourceTitles(e)
	if err != nil {
		return nil, err
	}
	if retitled {
		applied = append(applied, issue.SourceTitleMeaningless)
	}

	fixedVerb := false
	for _, vf := range verbFixes {
		if next := vf.re.ReplaceAllString(e.Question, vf.repl); next != e.Question {
			e.Question = next
			fixedVerb = true
		}
	}
	if fixedVerb {
		applied = append(applied, issue.QuestionNonsenseVerb)
	}

	return applied, nil
}

// fixSourceTitles replaces meaningless titles with one derived from the
// cited page.
func (g *Engine) fixSourceTitles(e *entry.Entry) (bool, error) {
	changed := false
	for i := range e.Sources {
		src := &e.Sources[i]
		if g.rules.CheckTitle(src.Title) == nil {
			continue
		}
		pageText, found, err := g.inspector.Corpus.Page(src.Page)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}
		title := corpus.ExtractTitle(pageText)
		if title == "" || title == src.Title {
			continue
		}
		if r := []rune(title); len(r) > maxTitleRunes {
			title = string(r[:maxTitleRunes])
		}
		src.Title = title
		changed = true
	}
	return changed, nil
}

func fixQuestionMarkdown(question string) string {
	q := boldRe.ReplaceAllString(question, " ")
	q = bulletRe.ReplaceAllString(q, "")
	q = mdPrefixRe.ReplaceAllString(q, "")
	q = spaceRe.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
