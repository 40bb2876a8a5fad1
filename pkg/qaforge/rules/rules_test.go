package rules

import (
	"strings"
	"testing"

	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
)

func hasKind(issues []issue.Issue, k issue.Kind) bool {
	for _, is := range issues {
		if is.Kind == k {
			return true
		}
	}
	return false
}

func TestCheckQuestionKinds(t *testing.T) {
	e := New()
	tests := []struct {
		name     string
		question string
		want     issue.Kind
	}{
		{"empty", "", issue.QuestionEmpty},
		{"too short", "연가는?", issue.QuestionTooShort},
		{"html", "연가는 <br> 어떻게 부여되나요?", issue.HTMLInQuestion},
		{"bold markup", "**연가** 일수는 어떻게 계산하나요?", issue.QuestionRawMarkdown},
		{"bullet prefix", "□ 휴직 신청 절차는 어떻게 되나요?", issue.QuestionRawMarkdown},
		{"continuation", "(계속) 휴직 기간 산정은 어떻게 하나요?", issue.QuestionContinuation},
		{"qa numbering", "Q12. 연가는 어떻게 부여되나요?", issue.QuestionQANumber},
		{"vague reference", "다음의 기준에 따른 처리 절차는 무엇인가요?", issue.QuestionVagueReference},
		{"nonsense verb", "지급 대상을 하려면 어떻게 해야 하나요?", issue.QuestionNonsenseVerb},
		{"placeholder", "○○학교의 휴직 절차는 무엇인가요?", issue.QuestionPlaceholder},
		{"spaced chars", "신 청 서 작 성 요령은 무엇인가요?", issue.QuestionSpacedChars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CheckQuestion(tt.question, "", "")
			if !hasKind(got, tt.want) {
				t.Errorf("CheckQuestion(%q) = %v, want kind %s", tt.question, got, tt.want)
			}
		})
	}
}

func TestCheckQuestionPastedContent(t *testing.T) {
	e := New()
	pasted := strings.TrimSpace(strings.Repeat("연가 및 휴직 관련 규정과 운영 지침에 대한 안내 ", 6))
	if got := e.CheckQuestion(pasted, "", ""); !hasKind(got, issue.QuestionPastedContent) {
		t.Errorf("long statement without question shape should be pasted content, got %v", got)
	}
	natural := "연가 일수는 어떻게 계산하나요?"
	if got := e.CheckQuestion(natural, "", ""); hasKind(got, issue.QuestionPastedContent) {
		t.Errorf("short natural question flagged as pasted: %v", got)
	}
}

func TestCheckQuestionFakeRelation(t *testing.T) {
	e := New()
	question := "휴직과 복직의 관계는 무엇인가요?"
	flat := "휴직은 일정 기간 직무를 쉬는 것이다. 복직은 다시 직무에 복귀하는 것이다."
	if got := e.CheckQuestion(question, flat, ""); !hasKind(got, issue.QuestionFakeRelation) {
		t.Errorf("relation question with list answer should be flagged, got %v", got)
	}
	related := "휴직과 복직은 상호 연계되어 있으며 휴직 사유가 소멸하면 복직 의무가 생긴다."
	if got := e.CheckQuestion(question, related, ""); hasKind(got, issue.QuestionFakeRelation) {
		t.Errorf("explained relation flagged: %v", got)
	}
}

func TestCheckQuestionTemplateMismatch(t *testing.T) {
	e := New()
	question := "연가 규정의 최근 변경 사항은 무엇인가요?"
	stalePage := "연가는 재직기간별로 일수가 다르게 부여된다."
	if got := e.CheckQuestion(question, "", stalePage); !hasKind(got, issue.QuestionTemplateMismatch) {
		t.Errorf("change question over unchanged page should be flagged, got %v", got)
	}
	revisedPage := "2024년 개정으로 연가 일수 산정 방식이 변경되었다."
	if got := e.CheckQuestion(question, "", revisedPage); hasKind(got, issue.QuestionTemplateMismatch) {
		t.Errorf("change question over revised page flagged: %v", got)
	}
	// without page text the rule cannot judge
	if got := e.CheckQuestion(question, "", ""); hasKind(got, issue.QuestionTemplateMismatch) {
		t.Errorf("missing page must not trigger template mismatch: %v", got)
	}
}

func TestCheckAnswerTextKinds(t *testing.T) {
	e := New()
	tests := []struct {
		name   string
		answer string
		want   issue.Kind
	}{
		{"empty", "", issue.AnswerEmpty},
		{"too short", "연가는 부여된다.", issue.AnswerTooShort},
		{"html", "연가는 <table>에 따라 부여된다.", issue.HTMLInAnswer},
		{"continuation start", "(계속) 둘째 자녀부터는 가산하여 지급한다.", issue.AnswerStartsContinuation},
		{"escaped markdown", `연가 일수는 \| 재직기간에 따라 다르다.`, issue.AnswerEscapedMarkdown},
		{"form sample data", "신청인 홍길동 (인) 서명 후 제출한다.", issue.AnswerFormTemplateData},
		{"blank run", "성명: ________ 생년월일: ________ 을 기재하여 제출한다.", issue.FormContent},
		{"blank school", "( )학교 교원이 작성하여 제출한다.", issue.FormContent},
		{"checkbox", "해당 항목에 [ ] 표시 후 제출한다.", issue.FormContent},
		{"low content", "| --- | --- | --- |", issue.AnswerLowContent},
		{"truncated", "연가는 재직기간에 따라 차등 부여되", issue.AnswerTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CheckAnswerText(tt.answer)
			if !hasKind(got, tt.want) {
				t.Errorf("CheckAnswerText(%q) = %v, want kind %s", tt.answer, got, tt.want)
			}
		})
	}
}

func TestCheckAnswerTableDump(t *testing.T) {
	e := New()
	row := "| 1년 미만 | 11일 | 비고 |\n| --- | --- | --- |\n"
	answer := strings.Repeat(row, 3)
	if got := e.CheckAnswerText(answer); !hasKind(got, issue.AnswerTableDump) {
		t.Errorf("pipe-heavy answer should be a table dump, got %v", got)
	}
}

func TestCheckAnswerBlankRunsInLongAnswer(t *testing.T) {
	e := New()
	answer := strings.TrimSpace(strings.Repeat("연가는 재직기간에 따라 부여되며 결근일수는 연가일수에서 공제한다. ", 4)) +
		" 신청서에는 성명 ________ 및 소속 ________ 을 기재한다."
	got := e.CheckAnswerText(answer)
	if !hasKind(got, issue.FormContent) {
		t.Errorf("blank runs inside a full answer must still be form content, got %v", got)
	}
}

func TestCheckAnswerTextClean(t *testing.T) {
	e := New()
	answer := strings.TrimSpace(strings.Repeat("연가는 재직기간에 따라 부여되며 결근일수는 연가일수에서 공제한다. ", 4))
	if got := e.CheckAnswerText(answer); len(got) != 0 {
		t.Errorf("complete answer should pass, got %v", got)
	}
}

func TestCheckTitle(t *testing.T) {
	e := New()
	for _, title := range []string{"1", "A12", "비고:", "표"} {
		if got := e.CheckTitle(title); !hasKind(got, issue.SourceTitleMeaningless) {
			t.Errorf("CheckTitle(%q) should flag, got %v", title, got)
		}
	}
	if got := e.CheckTitle("연가 일수 산정"); got != nil {
		t.Errorf("meaningful title flagged: %v", got)
	}
	if got := e.CheckTitle(""); got != nil {
		t.Errorf("empty title must be left to other rules, got %v", got)
	}
}

func TestCheckSourceText(t *testing.T) {
	e := New()
	if got := e.CheckSourceText("|---|---|---|"); !hasKind(got, issue.SourceLowContent) {
		t.Errorf("formatting-only source should flag, got %v", got)
	}
	if got := e.CheckSourceText("연가는 재직기간별로 일수가 다르게 부여된다."); got != nil {
		t.Errorf("prose source flagged: %v", got)
	}
}

func TestCheckGrammarDerivedForms(t *testing.T) {
	e := New()
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"batchim noun with 와", "지급 대상와 기준을 설명한다.", true},
		{"open noun with 과", "시험 결과과 처분 내용을 말한다.", true},
		{"open noun with 은", "휴직 사유은 다음과 같다.", true},
		{"correct open noun", "학교와 학생의 관계를 설명한다.", false},
		{"correct batchim noun", "교원과 직원은 구분된다.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CheckGrammar(tt.text, "")
			if hasKind(got, issue.GrammarError) != tt.want {
				t.Errorf("CheckGrammar(%q) = %v, want flagged=%v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCorrectParticles(t *testing.T) {
	got, n := CorrectParticles("지급 대상와 시험 결과과 기준을 정한다.")
	want := "지급 대상과 시험 결과와 기준을 정한다."
	if got != want {
		t.Errorf("CorrectParticles = %q, want %q", got, want)
	}
	if n != 2 {
		t.Errorf("fixed = %d, want 2", n)
	}

	clean := "학교와 학생, 교원과 직원을 포함한다."
	if got, n := CorrectParticles(clean); got != clean || n != 0 {
		t.Errorf("correct text must be untouched, got %q (%d fixes)", got, n)
	}
}

func TestPageIsForm(t *testing.T) {
	form := `서식 3 휴직 신청서
성 명 :          (인)
□ 질병휴직  □ 육아휴직
위와 같이 신청합니다.
교육감 귀하`
	if !PageIsForm(form) {
		t.Error("form page not detected")
	}
	prose := "연가는 재직기간별로 일수가 다르게 부여된다."
	if PageIsForm(prose) {
		t.Error("prose page misdetected as form")
	}
	if PageIsForm("") {
		t.Error("empty page is not a form")
	}
}

func TestPageIsReferenceTable(t *testing.T) {
	table := "아포스티유 가입국 현황: 뉴질랜드, 마샬군도 등"
	if !PageIsReferenceTable(table) {
		t.Error("country listing not detected")
	}
	if PageIsReferenceTable("연가는 재직기간별로 부여된다.") {
		t.Error("prose misdetected as reference table")
	}
}
