package inspect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognidoc/qaforge/pkg/qaforge/corpus"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
)

const page12 = `# 연가
연가는 재직기간별로 일수가 다르게 부여된다. 재직기간 1년 미만인 교원에게는 11일의 연가가 부여되며, 재직기간이 길어질수록 연가 일수는 단계적으로 늘어난다. 연가일수에서 결근일수와 정직일수는 공제한다. 연가는 학사 일정에 지장이 없는 범위에서 사용하도록 한다.
`

const goodAnswer = "연가는 재직기간별로 일수가 다르게 부여된다. 재직기간 1년 미만인 교원에게는 11일의 연가가 부여되며, 재직기간이 길어질수록 연가 일수는 단계적으로 늘어난다. 연가일수에서 결근일수와 정직일수는 공제한다."

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "12쪽.md"), []byte(page12), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := corpus.Open(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func goodEntry(id string) *entry.Entry {
	return &entry.Entry{
		ID:       id,
		Question: "연가는 재직기간에 따라 어떻게 부여되나요?",
		Answer:   goodAnswer,
		Sources: []entry.SourceRef{{
			Page:  12,
			Title: "연가 일수 산정",
			Text:  "연가는 재직기간별로 일수가 다르게 부여된다. 연가일수에서 결근일수와 정직일수는 공제한다.",
		}},
		Category: "4",
	}
}

func reasonsContain(reasons []string, k issue.Kind) bool {
	for _, r := range reasons {
		if strings.HasPrefix(r, string(k)) {
			return true
		}
	}
	return false
}

func TestInspectCleanEntry(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	issues, err := ins.Inspect(goodEntry("q_4_0001"), false)
	if err != nil {
		t.Fatal(err)
	}
	if critical, _ := issue.Split(issues); len(critical) != 0 {
		t.Errorf("grounded entry should have no critical issues, got %v", critical)
	}
}

func TestInspectMissingPage(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	e := goodEntry("q_4_0001")
	e.Sources[0].Page = 999
	issues, err := ins.Inspect(e, false)
	if err != nil {
		t.Fatal(err)
	}
	critical, _ := issue.Split(issues)
	if !reasonsContain(issue.Strings(critical), issue.SourceMissing) {
		t.Errorf("absent page should be critical, got %v", issues)
	}
}

func TestInspectFabricatedSource(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	e := goodEntry("q_4_0001")
	e.Sources[0].Text = "전결권자 지정현황과 위임전결규정 개정절차를 안내한다."
	issues, err := ins.Inspect(e, false)
	if err != nil {
		t.Fatal(err)
	}
	critical, _ := issue.Split(issues)
	if !reasonsContain(issue.Strings(critical), issue.SourceTextMismatch) {
		t.Errorf("fabricated source should be critical, got %v", issues)
	}
}

func TestInspectShortestAllowedSource(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	e := goodEntry("q_4_0001")
	// 10 runes, the minimum the matcher accepts, taken verbatim from the page.
	e.Sources[0].Text = "연가는 재직기간별로"
	issues, err := ins.Inspect(e, false)
	if err != nil {
		t.Fatal(err)
	}
	if reasonsContain(issue.Strings(issues), issue.SourceTextEmpty) {
		t.Errorf("minimum-length source should reach the matcher, got %v", issues)
	}
	critical, _ := issue.Split(issues)
	if reasonsContain(issue.Strings(critical), issue.SourceTextMismatch) {
		t.Errorf("verbatim excerpt should match its page, got %v", critical)
	}
}

func TestInspectAllPartitionsAndAnnotates(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	good := goodEntry("q_4_0001")
	dup := goodEntry("q_4_0002") // same answer, later in the batch
	broken := goodEntry("q_4_0003")
	broken.Sources[0].Page = 999

	res, err := ins.InspectAll([]*entry.Entry{good, dup, broken})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Clean) != 1 || res.Clean[0].ID != "q_4_0001" {
		t.Fatalf("clean = %v, want only the first entry", ids(res.Clean))
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("rejected = %v", ids(res.Rejected))
	}
	if !reasonsContain(dup.RejectionReasons, issue.DuplicateAnswer) {
		t.Errorf("later duplicate should be rejected first-wins, got %v", dup.RejectionReasons)
	}
	if !reasonsContain(broken.RejectionReasons, issue.SourceMissing) {
		t.Errorf("broken entry reasons = %v", broken.RejectionReasons)
	}
	if good.RejectionReasons != nil {
		t.Errorf("clean entry must not carry rejection reasons: %v", good.RejectionReasons)
	}

	if res.Stats.Total != 3 || res.Stats.Clean != 1 || res.Stats.Rejected != 2 || res.Stats.Duplicates != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if cat := res.Stats.ByCategory["4"]; cat == nil || cat.Total != 3 || cat.Clean != 1 {
		t.Errorf("category stats = %+v", cat)
	}
}

func TestDedupSet(t *testing.T) {
	d := NewDedupSet()
	long := strings.Repeat("연가는 재직기간별로 일수가 다르게 부여된다 ", 4)

	if owner, dup := d.Claim(long, "a"); dup {
		t.Fatalf("first claim reported duplicate of %s", owner)
	}
	owner, dup := d.Claim(long, "b")
	if !dup || owner != "a" {
		t.Errorf("second claim = (%s, %v), want (a, true)", owner, dup)
	}
	// short answers never participate
	if _, dup := d.Claim("짧은 답변입니다.", "c"); dup {
		t.Error("short answer claimed as duplicate")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("연가는 부여된다", "연가는 부여된다"); got != 1.0 {
		t.Errorf("identical strings = %v, want 1.0", got)
	}
	if got := similarity("가나다라", "마바사아"); got != 0 {
		t.Errorf("disjoint strings = %v, want 0", got)
	}
	if got := similarity("", ""); got != 0 {
		t.Errorf("empty strings = %v, want 0", got)
	}
}

func TestAnswerIsSourceCopy(t *testing.T) {
	src := "연가는 재직기간별로 일수가 다르게 부여된다. 연가일수에서 결근일수는 공제한다."
	if !answerIsSourceCopy(src, src) {
		t.Error("verbatim copy not detected")
	}
	if answerIsSourceCopy(goodAnswer, src) {
		t.Error("expanded answer misdetected as copy")
	}
}

func TestStatsReport(t *testing.T) {
	ins := New(testCorpus(t), nil, nil, nil)
	res, err := ins.InspectAll([]*entry.Entry{goodEntry("q_4_0001")})
	if err != nil {
		t.Fatal(err)
	}
	report := res.Stats.Report()
	for _, want := range []string{"총 엔트리: 1", "통과: 1", "카테고리별"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func ids(entries []*entry.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
