package relevance

import (
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

func TestCheckAnswerDisconnect(t *testing.T) {
	c := New()
	question := "징계위원회의 구성과 징계의결 요구 절차는 어떻게 되나요?"
	answer := "호봉은 봉급표상 급여 단계를 말하며 승급에 따라 올라간다."
	issues := c.CheckAnswer(question, answer)
	if !hasKind(issues, issue.AnswerQuestionDisconnect) {
		t.Errorf("disjoint topics should raise ANSWER_QUESTION_DISCONNECT, got %v", issues)
	}
	if !hasKind(issues, issue.AnswerTopicMismatch) {
		t.Errorf("answer head on another topic should raise ANSWER_TOPIC_MISMATCH, got %v", issues)
	}
}

func TestCheckAnswerRelevant(t *testing.T) {
	c := New()
	question := "육아휴직 수당은 어떻게 지급되나요?"
	answer := "육아휴직 수당은 휴직일을 기준으로 월봉급액의 일정 비율을 지급한다."
	if issues := c.CheckAnswer(question, answer); len(issues) != 0 {
		t.Errorf("on-topic answer should pass, got %v", issues)
	}
}

func TestCheckAnswerEmptyInputs(t *testing.T) {
	c := New()
	if issues := c.CheckAnswer("", "답변"); issues != nil {
		t.Errorf("empty question must not raise relevance issues, got %v", issues)
	}
	if issues := c.CheckAnswer("질문은 무엇인가요?", ""); issues != nil {
		t.Errorf("empty answer must not raise relevance issues, got %v", issues)
	}
}

const leavePage = `# 연가
연가는 재직기간별로 일수가 다르게 부여된다.
연가일수에서 결근일수는 공제한다.
`

func TestCheckPageOffTopicQuestion(t *testing.T) {
	c := New()
	question := "전결권자의 위임전결 범위는 무엇인가요?"
	issues := c.CheckPage(question, "전결권자 지정현황", leavePage)
	if !hasKind(issues, issue.QuestionTopicNotOnPage) {
		t.Errorf("question topic absent from page should raise QUESTION_TOPIC_NOT_ON_PAGE, got %v", issues)
	}
	if !hasKind(issues, issue.SourceTitleNotInPage) {
		t.Errorf("foreign title should raise SOURCE_TITLE_NOT_IN_PAGE, got %v", issues)
	}
}

func TestCheckPageOnTopicQuestion(t *testing.T) {
	c := New()
	question := "연가는 재직기간에 따라 어떻게 부여되나요?"
	if issues := c.CheckPage(question, "연가 일수 부여 기준", leavePage); len(issues) != 0 {
		t.Errorf("on-topic question should pass, got %v", issues)
	}
}

func TestCheckPageShortTitleSkipped(t *testing.T) {
	c := New()
	// titles of five runes or fewer are too short to judge
	issues := c.CheckPage("연가는 재직기간에 따라 어떻게 부여되나요?", "연가", leavePage)
	if hasKind(issues, issue.SourceTitleNotInPage) {
		t.Errorf("short titles must not be judged, got %v", issues)
	}
}
