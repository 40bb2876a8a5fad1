// Package corpus reads the page-indexed markdown corpus. Pages are files
// named "<N>쪽.md" in a single directory; lookups go through an LRU cache
// because inspection touches the same pages thousands of times. Missing
// pages are cached as misses, not errors.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/cognidoc/qaforge/pkg/qaforge/internalerr"
)

// DefaultCacheSize holds the whole working set of a typical handbook.
const DefaultCacheSize = 1024

var pageFileRe = regexp.MustCompile(`^([0-9]+)쪽\.md$`)

type page struct {
	text  string
	found bool
}

// Corpus is a directory of page files.
type Corpus struct {
	dir   string
	cache *lru.Cache[int, page]
}

// Open validates dir and prepares the cache. cacheSize <= 0 selects
// DefaultCacheSize.
func Open(dir string, cacheSize int) (*Corpus, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: %s: %w", dir, internalerr.ErrCorpusMissing)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: %s is not a directory: %w", dir, internalerr.ErrCorpusMissing)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[int, page](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("corpus: cache: %w", err)
	}
	return &Corpus{dir: dir, cache: cache}, nil
}

// Dir returns the corpus directory.
func (c *Corpus) Dir() string { return c.dir }

// Page returns the markdown text of page n. found is false when the page
// file does not exist; that outcome is cached like any other.
func (c *Corpus) Page(n int) (text string, found bool, err error) {
	if p, ok := c.cache.Get(n); ok {
		return p.text, p.found, nil
	}
	data, err := os.ReadFile(filepath.Join(c.dir, fmt.Sprintf("%d쪽.md", n)))
	if err != nil {
		if os.IsNotExist(err) {
			c.cache.Add(n, page{})
			return "", false, nil
		}
		return "", false, fmt.Errorf("corpus: page %d: %w", n, err)
	}
	p := page{text: string(data), found: true}
	c.cache.Add(n, p)
	return p.text, p.found, nil
}

// Pages lists the page numbers present in the corpus, ascending.
func (c *Corpus) Pages() ([]int, error) {
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	var nums []int
	for _, e := range ents {
		m := pageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums, nil
}

var titleParser = goldmark.New().Parser()

// ExtractTitle derives a display title for a page: the first heading, else
// the first bold run, else the first non-trivial line. Converted pages
// often lose their heading markers, hence the fallbacks.
func ExtractTitle(pageText string) string {
	src := []byte(pageText)
	doc := titleParser.Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var heading, bold string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			if heading == "" {
				heading = cleanTitle(string(v.Text(src)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Emphasis:
			if v.Level == 2 && bold == "" {
				bold = cleanTitle(string(v.Text(src)))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if heading != "" {
		return heading
	}
	if bold != "" {
		return bold
	}
	for _, l := range strings.Split(pageText, "\n") {
		l = cleanTitle(l)
		if utf8.RuneCountInString(l) >= 4 {
			return l
		}
	}
	return ""
}

func cleanTitle(s string) string {
	s = strings.Trim(s, " \t#*>|")
	return strings.TrimSpace(s)
}
