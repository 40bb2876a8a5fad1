package entry

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{"id":"q_1_0001","question":"연가는 어떻게 부여되나요?","answer":"연가는 재직기간별로 일수가 다르게 부여된다.","sources":[{"page":12,"title":"연가","text":"연가는 재직기간별로 일수가 다르게 부여된다."}],"category":"1"}
not json at all
{"id":"q_1_0002","question":"병가 일수는?","answer":"병가는 연 60일 이내로 한다.","sources":[{"page":13,"title":"병가","text":"병가는 연 60일 이내로 한다."}],"category":"1","keywords":["병가"]}

`

func TestReadSkipsMalformedLines(t *testing.T) {
	entries, skipped, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if entries[0].ID != "q_1_0001" || entries[1].Page() != 13 {
		t.Errorf("decoded entries wrong: %+v", entries)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	in, _, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	in[0].RejectionReasons = []string{"SOURCE_TEXT_MISMATCH:page=12,ratio=0.10"}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, skipped, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 || len(out) != 2 {
		t.Fatalf("round trip lost entries: %d entries, %d skipped", len(out), skipped)
	}
	if out[0].RejectionReasons[0] != in[0].RejectionReasons[0] {
		t.Error("annotations not preserved")
	}
	if out[0].Question != in[0].Question {
		t.Error("korean text not preserved")
	}
}

func TestWriteOmitsEmptyAnnotations(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []*Entry{{ID: "q_1_0001", Question: "질문", Answer: "답변", Category: "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "rejection_reasons") || strings.Contains(buf.String(), "warnings") {
		t.Errorf("clean entry must not carry annotation keys: %s", buf.String())
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := &Entry{
		ID:      "q_1_0001",
		Sources: []SourceRef{{Page: 12, Title: "연가", Text: "본문"}},
	}
	c := e.Clone()
	c.Sources[0].Page = 99
	c.ID = "q_1_9999"
	if e.Sources[0].Page != 12 || e.ID != "q_1_0001" {
		t.Error("Clone shares state with the original")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.jsonl")
	in := []*Entry{
		{ID: "q_1_0001", Question: "연가는 어떻게 부여되나요?", Answer: "재직기간별로 부여된다.", Category: "1"},
	}
	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}
	out, skipped, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || skipped != 0 || out[0].ID != "q_1_0001" {
		t.Errorf("file round trip failed: %+v (skipped %d)", out, skipped)
	}
}
