// qa-verify audits the source grounding of a finished dataset: every
// cited excerpt is matched against its page and the results are broken
// down by category, with sample diagnostics for the mismatches.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/cognidoc/qaforge/pkg/qaforge"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/match"
)

type catStat struct {
	matched    int
	mismatched int
	missing    int
}

type mismatch struct {
	id     string
	pages  []int
	detail string
}

func main() {
	var (
		corpusDir  = flag.String("corpus", "", "Markdown corpus directory (required)")
		configPath = flag.String("config", "", "Optional YAML config file")
		input      = flag.String("input", "", "Dataset JSONL file (required)")
		reportOut  = flag.String("report", "", "Optional report text file")
		samples    = flag.Int("samples", 20, "Mismatch samples to print")
	)
	flag.Parse()

	if *corpusDir == "" {
		log.Fatal("--corpus required")
	}
	if *input == "" {
		log.Fatal("--input required")
	}

	p, err := qaforge.Open(qaforge.Options{ConfigPath: *configPath, CorpusDir: *corpusDir})
	if err != nil {
		log.Fatalf("open pipeline: %v", err)
	}

	entries, skipped, err := entry.ReadFile(*input)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	if skipped > 0 {
		log.Printf("skipped %d malformed lines", skipped)
	}
	log.Printf("verifying %d entries", len(entries))

	byCat := make(map[string]*catStat)
	var matched, mismatched, missing int
	var mismatches, missingEntries []mismatch

	for i, e := range entries {
		if (i+1)%500 == 0 {
			log.Printf("  verified %d/%d", i+1, len(entries))
		}

		status, detail, pages := verifyEntry(p, e)
		cs := byCat[e.Category]
		if cs == nil {
			cs = &catStat{}
			byCat[e.Category] = cs
		}
		switch status {
		case match.Matched:
			matched++
			cs.matched++
		case match.MissingPage:
			missing++
			cs.missing++
			missingEntries = append(missingEntries, mismatch{e.ID, pages, detail})
		default:
			mismatched++
			cs.mismatched++
			mismatches = append(mismatches, mismatch{e.ID, pages, detail})
		}
	}

	report := buildReport(len(entries), matched, mismatched, missing, byCat, mismatches, missingEntries, *samples)
	if *reportOut != "" {
		if err := os.WriteFile(*reportOut, []byte(report), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}
	os.Stdout.WriteString(report)
}

// verifyEntry matches every cited source. A missing page dominates a
// mismatch, and a single failing source condemns the entry.
func verifyEntry(p *qaforge.Pipeline, e *entry.Entry) (match.Verdict, string, []int) {
	if len(e.Sources) == 0 {
		return match.Mismatched, "no sources listed", nil
	}

	verdict := match.Matched
	var details []string
	var pages []int
	for _, src := range e.Sources {
		pages = append(pages, src.Page)
		pageText, found, err := p.Corpus.Page(src.Page)
		if err != nil {
			log.Fatalf("page %d: %v", src.Page, err)
		}
		res := p.Matcher.Match(src.Text, pageText, found)
		switch res.Verdict {
		case match.MissingPage:
			verdict = match.MissingPage
			details = append(details, fmt.Sprintf("page %d missing", src.Page))
		case match.Mismatched:
			if verdict != match.MissingPage {
				verdict = match.Mismatched
			}
			d := res.Detail
			if d == "" {
				d = fmt.Sprintf("ratio %.2f", res.Ratio)
			}
			details = append(details, fmt.Sprintf("page %d: %s", src.Page, d))
		}
	}
	return verdict, strings.Join(details, "; "), pages
}

func buildReport(total, matched, mismatched, missing int, byCat map[string]*catStat, mismatches, missingEntries []mismatch, samples int) string {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\nSource Verification Report\n%s\n", line, line)
	fmt.Fprintf(&b, "Total checked:  %d\n", total)
	if total > 0 {
		fmt.Fprintf(&b, "Matched:        %d (%.1f%%)\n", matched, pct(matched, total))
		fmt.Fprintf(&b, "Mismatched:     %d (%.1f%%)\n", mismatched, pct(mismatched, total))
		fmt.Fprintf(&b, "Missing pages:  %d (%.1f%%)\n", missing, pct(missing, total))
	}

	fmt.Fprintf(&b, "\nBY CATEGORY:\n")
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		cs := byCat[c]
		catTotal := cs.matched + cs.mismatched + cs.missing
		fmt.Fprintf(&b, "  %s: %d/%d matched (%.1f%%), %d mismatched, %d missing\n",
			c, cs.matched, catTotal, pct(cs.matched, catTotal), cs.mismatched, cs.missing)
	}

	if len(mismatches) > 0 {
		fmt.Fprintf(&b, "\nSAMPLE MISMATCHED ENTRIES (first %d):\n", samples)
		for i, m := range mismatches {
			if i == samples {
				break
			}
			detail := m.detail
			if r := []rune(detail); len(r) > 200 {
				detail = string(r[:200]) + "..."
			}
			fmt.Fprintf(&b, "  %s pages=%v\n    %s\n", m.id, m.pages, detail)
		}
	}
	if len(missingEntries) > 0 {
		fmt.Fprintf(&b, "\nMISSING PAGE ENTRIES (first 10):\n")
		for i, m := range missingEntries {
			if i == 10 {
				break
			}
			fmt.Fprintf(&b, "  %s pages=%v\n", m.id, m.pages)
		}
	}
	return b.String()
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
