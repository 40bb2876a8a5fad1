// qa-merge combines the outputs of several generation passes into one
// dataset: deduplicated, filtered, re-categorized and renumbered.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cognidoc/qaforge/pkg/qaforge/config"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/merge"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		output     = flag.String("out", "", "Output JSONL file (required)")
	)
	flag.Parse()

	if *output == "" {
		log.Fatal("--out required")
	}
	if flag.NArg() == 0 {
		log.Fatal("at least one input JSONL file required")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	var groups [][]*entry.Entry
	for _, path := range flag.Args() {
		entries, skipped, err := entry.ReadFile(path)
		if err != nil {
			log.Fatalf("load %s: %v", path, err)
		}
		if skipped > 0 {
			log.Printf("%s: skipped %d malformed lines", path, skipped)
		}
		log.Printf("loaded %d from %s", len(entries), path)
		groups = append(groups, entries)
	}

	merged, stats := merge.New(cfg).Merge(groups...)
	if err := entry.WriteFile(*output, merged); err != nil {
		log.Fatalf("write output: %v", err)
	}

	fmt.Print(stats.Report(cfg.Categories))
	log.Printf("wrote %d entries to %s", len(merged), *output)
}
