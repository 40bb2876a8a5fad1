// qa-generate runs one generation pass over the markdown corpus and
// writes the resulting entries as JSONL.
package main

import (
	"flag"
	"log"
	"sort"
	"strings"

	"github.com/cognidoc/qaforge/pkg/qaforge"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/gen"
)

func main() {
	var (
		corpusDir  = flag.String("corpus", "", "Markdown corpus directory (required)")
		configPath = flag.String("config", "", "Optional YAML config file")
		output     = flag.String("out", "", "Output JSONL file (required)")
		seed       = flag.Int64("seed", 1, "Template selection seed")
		existing   = flag.String("existing", "", "Comma-separated JSONL files whose questions are skipped")
		idOffset   = flag.Int("id-offset", 0, "Offset added to generated id numbers")
	)
	flag.Parse()

	if *corpusDir == "" {
		log.Fatal("--corpus required")
	}
	if *output == "" {
		log.Fatal("--out required")
	}

	p, err := qaforge.Open(qaforge.Options{ConfigPath: *configPath, CorpusDir: *corpusDir})
	if err != nil {
		log.Fatalf("open pipeline: %v", err)
	}

	known := make(map[string]struct{})
	if *existing != "" {
		for _, path := range strings.Split(*existing, ",") {
			entries, skipped, err := entry.ReadFile(strings.TrimSpace(path))
			if err != nil {
				log.Fatalf("load existing: %v", err)
			}
			if skipped > 0 {
				log.Printf("%s: skipped %d malformed lines", path, skipped)
			}
			for _, e := range entries {
				known[strings.TrimSpace(e.Question)] = struct{}{}
			}
		}
		log.Printf("loaded %d existing questions", len(known))
	}

	entries, stats, err := p.Generate(gen.Options{Seed: *seed, Existing: known, IDOffset: *idOffset})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if err := entry.WriteFile(*output, entries); err != nil {
		log.Fatalf("write output: %v", err)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Printf("%s: %d", k, stats[k])
	}
	log.Printf("wrote %d entries to %s", len(entries), *output)
}
