// qa-recover applies mechanical repairs to rejected entries, re-inspects
// each one against the corpus and the accepted dataset, and writes the
// recovered, still-rejected and merged datasets.
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
	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
	"github.com/cognidoc/qaforge/pkg/qaforge/recovery"
)

func main() {
	var (
		corpusDir    = flag.String("corpus", "", "Markdown corpus directory (required)")
		configPath   = flag.String("config", "", "Optional YAML config file")
		rejectedIn   = flag.String("rejected", "", "Rejected entries JSONL (required)")
		acceptedIn   = flag.String("accepted", "", "Accepted entries JSONL (required)")
		recoveredOut = flag.String("recovered", "", "Recovered entries JSONL (required)")
		stillOut     = flag.String("still-rejected", "", "Still-rejected entries JSONL (required)")
		mergedOut    = flag.String("merged", "", "Optional accepted+recovered JSONL")
		reportOut    = flag.String("report", "", "Optional report text file")
	)
	flag.Parse()

	if *corpusDir == "" {
		log.Fatal("--corpus required")
	}
	if *rejectedIn == "" || *acceptedIn == "" {
		log.Fatal("--rejected and --accepted required")
	}
	if *recoveredOut == "" || *stillOut == "" {
		log.Fatal("--recovered and --still-rejected required")
	}

	p, err := qaforge.Open(qaforge.Options{ConfigPath: *configPath, CorpusDir: *corpusDir})
	if err != nil {
		log.Fatalf("open pipeline: %v", err)
	}

	rejected, skipped, err := entry.ReadFile(*rejectedIn)
	if err != nil {
		log.Fatalf("load rejected: %v", err)
	}
	if skipped > 0 {
		log.Printf("%s: skipped %d malformed lines", *rejectedIn, skipped)
	}
	accepted, skipped, err := entry.ReadFile(*acceptedIn)
	if err != nil {
		log.Fatalf("load accepted: %v", err)
	}
	if skipped > 0 {
		log.Printf("%s: skipped %d malformed lines", *acceptedIn, skipped)
	}
	log.Printf("recovering %d rejected against %d accepted", len(rejected), len(accepted))

	p.Recovery.Progress = func(done, total int) {
		if done%500 == 0 {
			log.Printf("  processed %d/%d", done, total)
		}
	}

	res, err := p.Recover(rejected, accepted)
	if err != nil {
		log.Fatalf("recover: %v", err)
	}

	if err := entry.WriteFile(*recoveredOut, res.Recovered); err != nil {
		log.Fatalf("write recovered: %v", err)
	}
	if err := entry.WriteFile(*stillOut, res.StillRejected); err != nil {
		log.Fatalf("write still-rejected: %v", err)
	}
	if *mergedOut != "" {
		merged := append(append([]*entry.Entry(nil), accepted...), res.Recovered...)
		if err := entry.WriteFile(*mergedOut, merged); err != nil {
			log.Fatalf("write merged: %v", err)
		}
		log.Printf("merged dataset: %d entries", len(merged))
	}

	report := buildReport(len(rejected), res)
	if *reportOut != "" {
		if err := os.WriteFile(*reportOut, []byte(report), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}
	os.Stdout.WriteString(report)
}

func buildReport(total int, res *recovery.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Recovery Report ===\n")
	fmt.Fprintf(&b, "Rejected in: %d\n", total)
	fmt.Fprintf(&b, "Recovered: %d\n", len(res.Recovered))
	fmt.Fprintf(&b, "Still rejected: %d\n", len(res.StillRejected))

	if len(res.FixCounts) > 0 {
		fmt.Fprintf(&b, "\nApplied fixes:\n")
		for _, kc := range sortedKinds(res.FixCounts) {
			fmt.Fprintf(&b, "  %s: %d\n", kc.kind, kc.n)
		}
	}
	if len(res.RecoveredReasons) > 0 {
		fmt.Fprintf(&b, "\nRecovered by original reason:\n")
		for _, kc := range sortedKinds(res.RecoveredReasons) {
			fmt.Fprintf(&b, "  %s: %d\n", kc.kind, kc.n)
		}
	}
	return b.String()
}

type kindCount struct {
	kind issue.Kind
	n    int
}

func sortedKinds(m map[issue.Kind]int) []kindCount {
	out := make([]kindCount, 0, len(m))
	for k, n := range m {
		out = append(out, kindCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].kind < out[j].kind
	})
	return out
}
