// Package entry defines the QA record and its JSONL serialization. One
// record per line; malformed lines are counted and skipped rather than
// failing the whole file, since datasets pass through hand edits.
package entry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SourceRef cites the handbook page an answer was drawn from. Text is the
// verbatim excerpt that grounding verification checks against the page.
type SourceRef struct {
	Page  int    `json:"page"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Entry is one question-answer record.
type Entry struct {
	ID          string      `json:"id"`
	Question    string      `json:"question"`
	Answer      string      `json:"answer"`
	Sources     []SourceRef `json:"sources"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`

	// Inspection annotations. Empty on clean entries.
	RejectionReasons []string `json:"rejection_reasons,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Clone returns a deep copy, so recovery can mutate a candidate without
// touching the original.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Sources = append([]SourceRef(nil), e.Sources...)
	c.Keywords = append([]string(nil), e.Keywords...)
	c.RejectionReasons = append([]string(nil), e.RejectionReasons...)
	c.Warnings = append([]string(nil), e.Warnings...)
	return &c
}

// Page returns the first cited page, or 0 when there are no sources.
func (e *Entry) Page() int {
	if len(e.Sources) == 0 {
		return 0
	}
	return e.Sources[0].Page
}

// Read decodes JSONL entries from r. skipped counts lines that were not
// valid JSON.
func Read(r io.Reader) (entries []*Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		entries = append(entries, &e)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("entry: read: %w", err)
	}
	return entries, skipped, nil
}

// ReadFile loads a JSONL dataset from path.
func ReadFile(path string) (entries []*Entry, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("entry: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes entries as JSONL to w.
func Write(w io.Writer, entries []*Entry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("entry: write %s: %w", e.ID, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes a JSONL dataset to path, replacing any existing file.
func WriteFile(path string, entries []*Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
