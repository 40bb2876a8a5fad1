package gen

import (
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/cognidoc/qaforge/pkg/qaforge/config"
	"github.com/cognidoc/qaforge/pkg/qaforge/corpus"
)

const leavePage = `# 12쪽

# 육아휴직
육아휴직은 만 8세 이하 또는 초등학교 2학년 이하의 자녀를 양육하기 위하여 신청하는 휴직이다. 휴직기간은 자녀 1명에 대하여 3년 이내로 하며, 분할하여 사용할 수 있다.
육아휴직을 신청하려는 교원은 휴직 개시 예정일 30일 전까지 신청서를 제출하여야 한다. 「교육공무원법」 제44조에 따라 임용권자는 특별한 사정이 없으면 휴직을 허가하여야 한다.
- 휴직기간 중 보수는 별도의 규정에 따라 지급된다.
- 복직을 원하는 경우에는 복직원을 제출하여야 한다.
`

func TestParseSections(t *testing.T) {
	content := `# 12쪽

# 휴직
## 질병휴직
질병휴직은 신체상 또는 정신상의 장애로 인한 휴직이다.
요양이 필요한 기간 동안 허가한다.

**휴직기간**
1년 이내로 하되, 1년 연장할 수 있다.

| 구분 | 기간 |
| --- | --- |
| 일반 | 1년 |
`
	sections := ParseSections(content, 12)
	if len(sections) != 2 {
		t.Fatalf("len(sections) = %d, want 2", len(sections))
	}
	first := sections[0]
	if first.Title != "질병휴직" || !reflect.DeepEqual(first.ParentTitles, []string{"휴직"}) {
		t.Errorf("first section = %q parents %v", first.Title, first.ParentTitles)
	}
	second := sections[1]
	if second.Title != "휴직기간" {
		t.Errorf("bold subsection title = %q", second.Title)
	}
	if !reflect.DeepEqual(second.ParentTitles, []string{"휴직", "질병휴직"}) {
		t.Errorf("bold subsection parents = %v", second.ParentTitles)
	}
	if !second.HasTable {
		t.Error("table not detected")
	}
}

func TestCleanTopic(t *testing.T) {
	tests := []struct {
		title   string
		parents []string
		want    string
	}{
		{"가) 휴직의 종류", nil, "휴직의 종류"},
		{"1. 임용", nil, "임용"},
		{"**승급**", nil, "승급"},
		{"연가 (계속)", nil, "연가"},
		{"휴직 (「교육공무원법」 제44조)", nil, "휴직"},
		{"①", []string{"복무"}, "복무"},
	}
	for _, tt := range tests {
		if got := cleanTopic(tt.title, tt.parents); got != tt.want {
			t.Errorf("cleanTopic(%q, %v) = %q, want %q", tt.title, tt.parents, got, tt.want)
		}
	}
}

func TestDetectContentTypes(t *testing.T) {
	types := detectContentTypes("휴직을 신청하는 절차는 다음과 같다. 기간은 3년 이내로 한다.", "육아휴직")
	joined := strings.Join(types, ",")
	for _, want := range []string{"procedure", "number", "leave"} {
		if !strings.Contains(joined, want) {
			t.Errorf("types = %v, want %s included", types, want)
		}
	}
	if got := detectContentTypes("그 밖의 일반적인 안내입니다.", ""); !reflect.DeepEqual(got, []string{"general"}) {
		t.Errorf("fallback types = %v", got)
	}
}

func TestGenerateQuestionsFillsParticles(t *testing.T) {
	s := &Section{
		Title:   "육아휴직",
		Page:    12,
		Text:    strings.Repeat("육아휴직의 신청 요건과 절차를 설명한다. ", 5),
		TextLen: 110,
		Types:   []string{"leave"},
	}
	qs := generateQuestions(s, rand.New(rand.NewSource(1)))
	if len(qs) == 0 {
		t.Fatal("no questions generated")
	}
	for _, q := range qs {
		if strings.Contains(q.text, "{") {
			t.Errorf("unresolved slot in %q", q.text)
		}
		if !strings.Contains(q.text, "육아휴직") {
			t.Errorf("topic missing from %q", q.text)
		}
	}
}

func TestGenerateQuestionsDeterministic(t *testing.T) {
	s := &Section{Title: "연가", Page: 12, Text: strings.Repeat("연가 일수와 사용 절차. ", 10), TextLen: 120, Types: []string{"number", "procedure"}}
	a := generateQuestions(s, rand.New(rand.NewSource(7)))
	b := generateQuestions(s, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed must produce the same questions")
	}
}

func TestGenerateQuestionsSkipsForms(t *testing.T) {
	s := &Section{Title: "서식", Page: 12, TextLen: 200, IsForm: true, Types: []string{"general"}}
	if qs := generateQuestions(s, rand.New(rand.NewSource(1))); qs != nil {
		t.Errorf("form section produced questions: %v", qs)
	}
}

func TestTableToText(t *testing.T) {
	raw := `| 재직기간 | 연가일수 |
| --- | --- |
| 1년 미만 | 11일 |
| 1년 이상 | 12일 |`
	got := tableToText(raw)
	if !strings.Contains(got, "**1년 미만:**") || !strings.Contains(got, "연가일수: 11일") {
		t.Errorf("tableToText = %q", got)
	}
}

func TestExtractLawReferences(t *testing.T) {
	text := "「교육공무원법」 제44조에 따른다. 「국가공무원법」도 적용된다. 「교육공무원법」 제44조 재인용."
	got := extractLawReferences(text)
	want := []string{"「교육공무원법」 제44조", "「국가공무원법」"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("refs = %v, want %v", got, want)
	}
}

func TestExtractSourceTruncatesAtSentence(t *testing.T) {
	sentence := "육아휴직은 자녀 양육을 위하여 신청하는 휴직이다. "
	s := &Section{Text: strings.Repeat(sentence, 30)}
	got := extractSource(s)
	if n := len([]rune(got)); n > 500 {
		t.Errorf("source length = %d runes, want <= 500", n)
	}
	if !strings.HasSuffix(got, "다.") {
		t.Errorf("source not cut at sentence boundary: %q", got[len(got)-30:])
	}
}

func TestExtractSourcePrefixesShortSections(t *testing.T) {
	s := &Section{Text: "1년 이내로 한다.", ParentTitles: []string{"휴직", "질병휴직"}}
	got := extractSource(s)
	if !strings.HasPrefix(got, "질병휴직: ") {
		t.Errorf("short source not prefixed: %q", got)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "12쪽.md"), []byte(leavePage), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "13쪽.md"), []byte("# 13쪽\n짧음\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := corpus.Open(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	g := New(c, config.Default(), Options{Seed: 42})
	entries, stats, err := g.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatalf("no entries generated, stats = %v", stats)
	}
	if stats["skip_empty"] != 1 {
		t.Errorf("short page not skipped: %v", stats)
	}

	idRe := regexp.MustCompile(`^q_1_[0-9]{4}$`)
	seen := make(map[string]bool)
	for _, e := range entries {
		if !idRe.MatchString(e.ID) {
			t.Errorf("id = %q", e.ID)
		}
		if e.Category != "교원의 임용" {
			t.Errorf("category = %q", e.Category)
		}
		if e.Sources[0].Page != 12 {
			t.Errorf("source page = %d", e.Sources[0].Page)
		}
		if seen[e.Question] {
			t.Errorf("duplicate question emitted: %q", e.Question)
		}
		seen[e.Question] = true
	}

	// a rerun with the prior questions registered produces nothing new
	existing := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		existing[e.Question] = struct{}{}
	}
	g2 := New(c, config.Default(), Options{Seed: 42, Existing: existing})
	again, stats2, err := g2.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("rerun produced %d entries, want 0 (skip_dup=%d)", len(again), stats2["skip_dup"])
	}
}
