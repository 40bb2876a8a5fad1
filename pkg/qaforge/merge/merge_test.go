package merge

import (
	"strings"
	"testing"

	"github.com/cognidoc/qaforge/pkg/qaforge/config"
	"github.com/cognidoc/qaforge/pkg/qaforge/entry"
)

func mkEntry(question string, page int) *entry.Entry {
	return &entry.Entry{
		ID:       "q_9_9999",
		Question: question,
		Answer:   strings.Repeat("휴직 제도의 신청 요건과 절차를 규정에 따라 설명하는 답변이다. ", 5),
		Sources: []entry.SourceRef{{
			Page:  page,
			Title: "휴직",
			Text:  "휴직은 교원의 신분을 유지한 채 직무에서 벗어나는 제도이다.",
		}},
		Category: "잘못된 분류",
	}
}

func TestMergeDeduplicatesFirstWins(t *testing.T) {
	first := mkEntry("육아휴직의 신청 절차는 어떻게 되나요?", 130)
	first.Answer += " 첫 번째 답변."
	second := mkEntry("육아휴직의 신청 절차는 어떻게 되나요?", 140)

	m := New(nil)
	kept, stats := m.Merge([]*entry.Entry{first}, []*entry.Entry{second})
	if len(kept) != 1 || stats.Duplicates != 1 {
		t.Fatalf("kept = %d, duplicates = %d", len(kept), stats.Duplicates)
	}
	if !strings.HasSuffix(kept[0].Answer, "첫 번째 답변.") {
		t.Error("duplicate did not keep the first occurrence")
	}
}

func TestMergeBrokenFirstDoesNotShadowLaterCopy(t *testing.T) {
	broken := mkEntry("육아휴직의 신청 절차는 어떻게 되나요?", 130)
	broken.Answer = "짧은 답변."
	good := mkEntry("육아휴직의 신청 절차는 어떻게 되나요?", 130)

	m := New(nil)
	kept, stats := m.Merge([]*entry.Entry{broken}, []*entry.Entry{good})
	if len(kept) != 1 {
		t.Fatalf("kept = %d, want 1 (invalid=%v duplicates=%d)", len(kept), stats.Invalid, stats.Duplicates)
	}
	if stats.Invalid["short_answer"] != 1 || stats.Duplicates != 0 {
		t.Errorf("invalid = %v, duplicates = %d", stats.Invalid, stats.Duplicates)
	}
	if strings.HasPrefix(kept[0].Answer, "짧은") {
		t.Error("kept the broken copy instead of the valid one")
	}
}

func TestMergeFiltersBrokenEntries(t *testing.T) {
	short := mkEntry("연가 일수는 어떻게 되나요?", 260)
	short.Answer = "짧은 답변."
	html := mkEntry("병가는 어떻게 신청하나요?", 261)
	html.Answer += " <br>잔여 마크업"
	ok := mkEntry("공가 사유에는 어떤 것이 있나요?", 262)

	m := New(nil)
	kept, stats := m.Merge([]*entry.Entry{short, html, ok})
	if len(kept) != 1 {
		t.Fatalf("kept = %d, want 1", len(kept))
	}
	if stats.Invalid["short_answer"] != 1 || stats.Invalid["html_in_answer"] != 1 {
		t.Errorf("invalid = %v", stats.Invalid)
	}
}

func TestMergeReassignsIDsInChapterOrder(t *testing.T) {
	entries := []*entry.Entry{
		mkEntry("호봉 획정은 어떻게 하나요?", 600),
		mkEntry("신규 임용 절차는 어떻게 되나요?", 12),
		mkEntry("질병휴직의 기간은 얼마나 되나요?", 130),
		mkEntry("기간제 교원 임용은 어떻게 하나요?", 20),
	}

	m := New(nil)
	kept, _ := m.Merge(entries)
	if len(kept) != 4 {
		t.Fatalf("kept = %d", len(kept))
	}

	wantIDs := []string{"q_1_0001", "q_1_0002", "q_3_0001", "q_8_0001"}
	wantPages := []int{12, 20, 130, 600}
	for i, e := range kept {
		if e.ID != wantIDs[i] {
			t.Errorf("kept[%d].ID = %q, want %q", i, e.ID, wantIDs[i])
		}
		if e.Page() != wantPages[i] {
			t.Errorf("kept[%d].Page() = %d, want %d", i, e.Page(), wantPages[i])
		}
	}
	if kept[0].Category != "교원의 임용" || kept[3].Category != "승급 및 호봉획정" {
		t.Errorf("categories not re-derived: %q, %q", kept[0].Category, kept[3].Category)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	e := mkEntry("연가 사용 절차는 어떻게 되나요?", 260)
	m := New(nil)
	if _, _ = m.Merge([]*entry.Entry{e}); e.ID != "q_9_9999" || e.Category != "잘못된 분류" {
		t.Errorf("input mutated: id=%q category=%q", e.ID, e.Category)
	}
}

func TestStatsReport(t *testing.T) {
	m := New(nil)
	kept, stats := m.Merge([]*entry.Entry{
		mkEntry("호봉 재획정은 언제 하나요?", 600),
		mkEntry("승급 제한 사유는 무엇인가요?", 610),
	})
	if len(kept) != 2 {
		t.Fatalf("kept = %d", len(kept))
	}
	report := stats.Report(config.Default().Categories)
	for _, want := range []string{"kept: 2", "승급 및 호봉획정: 2", "Pages covered: 2", "Answer length"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
