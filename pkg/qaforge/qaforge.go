// Package qaforge builds question-answer datasets from a page-indexed
// markdown corpus and verifies that every entry stays grounded in the
// page it cites. The pipeline has four passes: generate entries from
// page sections, merge the outputs of several passes, inspect each entry
// against its source pages, and recover rejected entries with mechanical
// repairs followed by full re-inspection.
//
// The subpackages can be used independently; this package wires them
// together from one configuration.
package qaforge

import (
	"github.com/cognidoc/qaforge/pkg/qaforge/config"
	"github.com/cognidoc/qaforge/pkg/qaforge/corpus"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/gen"
	"github.com/cognidoc/qaforge/pkg/qaforge/inspect"
	"github.com/cognidoc/qaforge/pkg/qaforge/match"
	"github.com/cognidoc/qaforge/pkg/qaforge/merge"
	"github.com/cognidoc/qaforge/pkg/qaforge/recovery"
	"github.com/cognidoc/qaforge/pkg/qaforge/relevance"
	"github.com/cognidoc/qaforge/pkg/qaforge/rules"
)

// Options configures a pipeline.
type Options struct {
	// Config is used as-is when set. Otherwise ConfigPath is loaded, and
	// when that is empty too the defaults apply.
	Config     *config.Config
	ConfigPath string

	// CorpusDir overrides the configured corpus directory.
	CorpusDir string
}

// Pipeline is the assembled dataset pipeline. Fields are exported so
// drivers can reach individual stages.
type Pipeline struct {
	Config    *config.Config
	Corpus    *corpus.Corpus
	Matcher   *match.Matcher
	Rules     *rules.Engine
	Relevance *relevance.Checker
	Inspector *inspect.Inspector
	Recovery  *recovery.Engine
	Merger    *merge.Merger
}

// Open resolves the configuration, opens the corpus and wires every
// stage.
func Open(opts Options) (*Pipeline, error) {
	cfg := opts.Config
	if cfg == nil && opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg == nil {
		cfg = config.Default()
	}

	dir := opts.CorpusDir
	if dir == "" {
		dir = cfg.CorpusDir
	}
	c, err := corpus.Open(dir, cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	m := match.New(match.Thresholds{
		WindowSize:   cfg.Match.WindowSize,
		WindowRatio:  cfg.Match.WindowRatio,
		KeywordRatio: cfg.Match.KeywordRatio,
		LineRatio:    cfg.Match.LineRatio,
		MinSourceLen: cfg.Match.MinSourceLen,
		MinSubstrLen: cfg.Match.MinSubstrLen,
	})

	eng := rules.New()
	if cfg.Lengths.MinQuestion > 0 {
		eng.MinQuestionRunes = cfg.Lengths.MinQuestion
	}
	if cfg.Lengths.MinAnswer > 0 {
		eng.MinAnswerRunes = cfg.Lengths.MinAnswer
	}

	ins := inspect.New(c, m, eng, relevance.New())
	return &Pipeline{
		Config:    cfg,
		Corpus:    c,
		Matcher:   m,
		Rules:     eng,
		Relevance: ins.Relevance,
		Inspector: ins,
		Recovery:  recovery.New(ins),
		Merger:    merge.New(cfg),
	}, nil
}

// Generate runs one generation pass over the corpus.
func (p *Pipeline) Generate(opts gen.Options) ([]*entry.Entry, gen.Stats, error) {
	return gen.New(p.Corpus, p.Config, opts).Generate()
}

// Inspect runs the full inspection over a dataset.
func (p *Pipeline) Inspect(entries []*entry.Entry) (*inspect.BatchResult, error) {
	return p.Inspector.InspectAll(entries)
}

// Recover repairs rejected entries and re-inspects them against the
// accepted set.
func (p *Pipeline) Recover(rejected, accepted []*entry.Entry) (*recovery.Result, error) {
	return p.Recovery.Recover(rejected, accepted)
}

// Merge combines pass outputs into one dataset.
func (p *Pipeline) Merge(groups ...[]*entry.Entry) ([]*entry.Entry, *merge.Stats) {
	return p.Merger.Merge(groups...)
}
