// qa-inspect verifies every entry of a dataset against the corpus and
// splits it into accepted and rejected JSONL files plus a text report.
// With --db the run and its per-entry verdicts are persisted to SQLite.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/cognidoc/qaforge/pkg/qaforge"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/inspect"
	"github.com/cognidoc/qaforge/pkg/qaforge/store"
	"github.com/cognidoc/qaforge/pkg/qaforge/store/sqlite"
)

func main() {
	var (
		corpusDir   = flag.String("corpus", "", "Markdown corpus directory (required)")
		configPath  = flag.String("config", "", "Optional YAML config file")
		input       = flag.String("input", "", "Dataset JSONL file (required)")
		acceptedOut = flag.String("accepted", "", "Accepted entries JSONL (required)")
		rejectedOut = flag.String("rejected", "", "Rejected entries JSONL (required)")
		reportOut   = flag.String("report", "", "Optional report text file")
		dbPath      = flag.String("db", "", "Optional SQLite file for run persistence")
	)
	flag.Parse()

	if *corpusDir == "" {
		log.Fatal("--corpus required")
	}
	if *input == "" {
		log.Fatal("--input required")
	}
	if *acceptedOut == "" || *rejectedOut == "" {
		log.Fatal("--accepted and --rejected required")
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
	log.Printf("inspecting %d entries", len(entries))

	p.Inspector.Progress = func(done, total int) {
		if done%500 == 0 {
			log.Printf("  inspected %d/%d", done, total)
		}
	}

	started := time.Now()
	res, err := p.Inspect(entries)
	if err != nil {
		log.Fatalf("inspect: %v", err)
	}

	if err := entry.WriteFile(*acceptedOut, res.Clean); err != nil {
		log.Fatalf("write accepted: %v", err)
	}
	if err := entry.WriteFile(*rejectedOut, res.Rejected); err != nil {
		log.Fatalf("write rejected: %v", err)
	}

	report := res.Stats.Report()
	if *reportOut != "" {
		if err := os.WriteFile(*reportOut, []byte(report), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}
	os.Stdout.WriteString(report)

	if *dbPath != "" {
		if err := persist(*dbPath, *input, started, res); err != nil {
			log.Fatalf("persist run: %v", err)
		}
	}
	log.Printf("accepted %d, rejected %d", len(res.Clean), len(res.Rejected))
}

func persist(dbPath, dataset string, started time.Time, res *inspect.BatchResult) error {
	ctx := context.Background()
	s, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	runID := store.NewRunID()
	if err := s.CreateRun(ctx, store.Run{
		ID:        runID,
		Kind:      "inspect",
		Dataset:   dataset,
		StartedAt: started,
	}); err != nil {
		return err
	}

	record := func(entries []*entry.Entry, passed bool) error {
		for _, e := range entries {
			v := store.Verdict{
				RunID:    runID,
				EntryID:  e.ID,
				Question: e.Question,
				Category: e.Category,
				Page:     e.Page(),
				Passed:   passed,
				Reasons:  e.RejectionReasons,
				Warnings: e.Warnings,
			}
			if err := s.UpsertVerdict(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}
	if err := record(res.Clean, true); err != nil {
		return err
	}
	if err := record(res.Rejected, false); err != nil {
		return err
	}

	if err := s.FinishRun(ctx, runID, time.Now(),
		res.Stats.Total, res.Stats.Clean, res.Stats.Rejected); err != nil {
		return err
	}
	log.Printf("run %s persisted to %s", runID, dbPath)
	return nil
}
