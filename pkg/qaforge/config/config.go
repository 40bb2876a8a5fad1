// Package config loads pipeline configuration from YAML and supplies the
// built-in defaults for the teacher-personnel handbook layout.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognidoc/qaforge/pkg/qaforge/internalerr"
)

// CategoryRange maps a page interval to a dataset category.
type CategoryRange struct {
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Name  string `yaml:"name"`
	Num   string `yaml:"num"`
}

// Match holds grounding cascade tunables.
type Match struct {
	WindowSize   int     `yaml:"window_size"`
	WindowRatio  float64 `yaml:"window_ratio"`
	KeywordRatio float64 `yaml:"keyword_ratio"`
	LineRatio    float64 `yaml:"line_ratio"`
	MinSourceLen int     `yaml:"min_source_len"`
	MinSubstrLen int     `yaml:"min_substr_len"`
}

// Lengths holds the minimum size rules.
type Lengths struct {
	MinQuestion int `yaml:"min_question"`
	MinAnswer   int `yaml:"min_answer"`
}

// Config is the full pipeline configuration.
type Config struct {
	CorpusDir  string          `yaml:"corpus_dir"`
	CacheSize  int             `yaml:"cache_size"`
	Match      Match           `yaml:"match"`
	Lengths    Lengths         `yaml:"lengths"`
	Categories []CategoryRange `yaml:"categories"`
}

// Default returns the configuration matching the handbook's chapter
// layout and the recommended thresholds.
func Default() *Config {
	return &Config{
		CacheSize: 1024,
		Match: Match{
			WindowSize:   4,
			WindowRatio:  0.40,
			KeywordRatio: 0.50,
			LineRatio:    0.50,
			MinSourceLen: 10,
			MinSubstrLen: 10,
		},
		Lengths: Lengths{MinQuestion: 10, MinAnswer: 100},
		Categories: []CategoryRange{
			{3, 100, "교원의 임용", "1"},
			{101, 118, "정원 및 순회교사제", "2"},
			{119, 256, "휴직 및 복직", "3"},
			{257, 336, "복무", "4"},
			{337, 434, "계약제교원", "5"},
			{435, 526, "평정 업무", "6"},
			{527, 596, "징계 및 직위해제", "7"},
			{597, 700, "승급 및 호봉획정", "8"},
		},
	}
}

// Load reads a YAML config from path. Absent keys keep their defaults, so
// a config file only has to name what it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.Match.WindowSize < 2 {
		return fmt.Errorf("config: window_size %d: %w", c.Match.WindowSize, internalerr.ErrInvalidConfig)
	}
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"window_ratio", c.Match.WindowRatio},
		{"keyword_ratio", c.Match.KeywordRatio},
		{"line_ratio", c.Match.LineRatio},
	} {
		if r.v <= 0 || r.v > 1 {
			return fmt.Errorf("config: %s %v out of (0,1]: %w", r.name, r.v, internalerr.ErrInvalidConfig)
		}
	}
	for _, cat := range c.Categories {
		if cat.Start > cat.End {
			return fmt.Errorf("config: category %q range [%d,%d]: %w", cat.Name, cat.Start, cat.End, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// Category resolves a page number to its chapter name and number. Pages
// outside every range fall into the first chapter.
func (c *Config) Category(page int) (name, num string) {
	for _, r := range c.Categories {
		if page >= r.Start && page <= r.End {
			return r.Name, r.Num
		}
	}
	if len(c.Categories) > 0 {
		return c.Categories[0].Name, c.Categories[0].Num
	}
	return "", ""
}
