// Package relevance checks that a QA entry's parts talk about the same
// topic: the answer must address the question, and the question's subject
// must actually occur on the cited page. Checks work on particle-stripped
// stems so that surface inflection does not mask topical agreement.
package relevance

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
	"github.com/cognidoc/qaforge/pkg/qaforge/stem"
)

// answerGeneric are interrogative and scaffolding stems that occur in
// nearly every question and carry no topic. They are excluded before
// measuring question/answer overlap.
var answerGeneric = map[string]struct{}{
	"무엇": {}, "어떤": {}, "어떻게": {}, "대해": {}, "설명": {}, "알려": {},
	"있나": {}, "인가": {}, "관련": {}, "규정": {}, "내용": {}, "경우": {},
	"사항": {}, "해당": {}, "따른": {}, "대한": {}, "주요": {}, "구체": {},
	"자세": {}, "어떠": {}, "가능": {}, "필요": {}, "어떤것": {}, "정리": {},
	"알고": {}, "싶은": {}, "궁금": {}, "차이": {}, "비교": {}, "각각": {},
	"모든": {}, "어떻": {}, "하는": {}, "되는": {}, "있는": {}, "없는": {},
	"것이": {}, "점이": {}, "처리": {}, "절차": {}, "방법": {}, "기준": {},
	"조건": {}, "요건": {},
}

// pageGeneric is the stop set for the question-vs-page check. It trades
// the conversational fillers for document-structure nouns that appear on
// almost every page of a rulebook.
var pageGeneric = map[string]struct{}{
	"무엇": {}, "어떤": {}, "어떻게": {}, "대해": {}, "설명": {}, "알려": {},
	"있나": {}, "인가": {}, "관련": {}, "규정": {}, "내용": {}, "경우": {},
	"사항": {}, "해당": {}, "따른": {}, "대한": {}, "주요": {}, "구체": {},
	"자세": {}, "어떠": {}, "가능": {}, "필요": {}, "처리": {}, "절차": {},
	"방법": {}, "기준": {}, "조건": {}, "요건": {}, "정의": {}, "종류": {},
	"범위": {}, "특징": {}, "목적": {}, "대상": {}, "기간": {}, "시기": {},
}

// Checker holds the tunables for relevance decisions.
type Checker struct {
	// DisconnectRatio is the overlap fraction below which a question and
	// answer are declared disconnected.
	DisconnectRatio float64
	// AnswerHead is how many leading runes of the answer must mention the
	// question's topic.
	AnswerHead int
}

// New returns a checker with the recommended tuning.
func New() *Checker {
	return &Checker{DisconnectRatio: 0.15, AnswerHead: 300}
}

// CheckAnswer verifies that the answer addresses the question. It reports
// ANSWER_QUESTION_DISCONNECT when almost no question topic survives into
// the answer, and ANSWER_TOPIC_MISMATCH when the answer's opening talks
// about something else entirely.
func (c *Checker) CheckAnswer(question, answer string) []issue.Issue {
	if question == "" || answer == "" {
		return nil
	}

	topic := topicStems(stem.Extract(question), answerGeneric, 2)
	if len(topic) == 0 {
		return nil
	}

	var issues []issue.Issue

	aStems := stem.Extract(answer)
	matched := 0
	for s := range topic {
		if stemPresent(s, aStems) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(topic))

	// Stems may be split differently in the answer, so also count plain
	// substring presence and take the better of the two readings.
	subMatched := 0
	for s := range topic {
		if strings.Contains(answer, s) {
			subMatched++
		}
	}
	subRatio := float64(subMatched) / float64(len(topic))

	best := ratio
	if subRatio > best {
		best = subRatio
	}
	if best < c.DisconnectRatio && len(topic) >= 3 {
		issues = append(issues, issue.Newf(issue.AnswerQuestionDisconnect, fmt.Sprintf("ratio=%.2f", best)))
	}

	head := firstRunes(answer, c.AnswerHead)
	headTopics := topicStems(stem.Extract(head), answerGeneric, 2)
	if len(headTopics) >= 2 && len(topic) >= 2 {
		total := 0
		for qs := range topic {
			if _, ok := headTopics[qs]; ok {
				total++
			}
			for at := range headTopics {
				if strings.Contains(at, qs) || strings.Contains(qs, at) {
					total++
					break
				}
			}
			if strings.Contains(head, qs) {
				total++
			}
		}
		if total == 0 {
			issues = append(issues, issue.New(issue.AnswerTopicMismatch))
		}
	}

	return issues
}

// CheckPage verifies the entry against the cited page's text. The source
// title should occur on the page at least loosely, and the question's
// specific subject must appear there at all.
func (c *Checker) CheckPage(question, sourceTitle, pageText string) []issue.Issue {
	var issues []issue.Issue

	if sourceTitle != "" && utf8.RuneCountInString(sourceTitle) > 5 {
		titleStems := stem.Extract(sourceTitle)
		pageStems := stem.Extract(pageText)
		matched := 0
		for s := range titleStems {
			if _, ok := pageStems[s]; ok || strings.Contains(pageText, s) {
				matched++
			}
		}
		if matched == 0 && len(titleStems) >= 2 {
			issues = append(issues, issue.New(issue.SourceTitleNotInPage))
		}
	}

	// Only stems of three syllables or more are specific enough to demand
	// on the page; shorter ones collide with everything.
	topic := topicStems(stem.Extract(question), pageGeneric, 3)
	if len(topic) >= 2 {
		found := 0
		for s := range topic {
			if strings.Contains(pageText, s) {
				found++
			}
		}
		if found == 0 {
			issues = append(issues, issue.New(issue.QuestionTopicNotOnPage))
		}
	}

	return issues
}

func topicStems(stems map[string]struct{}, stop map[string]struct{}, minRunes int) map[string]struct{} {
	out := make(map[string]struct{}, len(stems))
	for s := range stems {
		if _, generic := stop[s]; generic {
			continue
		}
		if utf8.RuneCountInString(s) < minRunes {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

// stemPresent reports whether s is in the stem set directly or as a
// substring of a longer stem (교육공무원 covers 공무원).
func stemPresent(s string, stems map[string]struct{}) bool {
	if _, ok := stems[s]; ok {
		return true
	}
	for a := range stems {
		if strings.Contains(a, s) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
