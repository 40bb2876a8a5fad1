// Package rules holds the structural quality rules applied to QA entries:
// markup leakage, pasted or truncated text, form artifacts, nonsense
// phrasing and particle grammar. Rules are pure text predicates; grounding
// and relevance live in their own packages.
package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/hangul"
	"github.com/cognidoc/qaforge/pkg/qaforge/issue"
)

var (
	htmlRe      = regexp.MustCompile(`(?i)<(?:br|div|center|table|tr|td|th|p|h[1-6])\b`)
	rawBoldRe   = regexp.MustCompile(`\*\*\s*[가-힣]|[가-힣]\s*\*\*`)
	rawBulletRe = regexp.MustCompile(`^[□◎●○■▶☞【\[(]\s`)
	qaNumberRe  = regexp.MustCompile(`^[QA][0-9]+[.\s]`)
	vagueRefRe  = regexp.MustCompile(`^(다음|아래|위)(의|에|은|는)`)
	nonsenseRe  = regexp.MustCompile(`(대상|내용|사항|서류|기준|규정)을\s*하려면`)
	relationRe  = regexp.MustCompile(`과의?\s*관계|와의?\s*관계|의\s*관계`)
	changeAskRe = regexp.MustCompile(`최근\s*변경|변경\s*사항|개정\s*내용|변경된\s*점`)
	changeRe    = regexp.MustCompile(`변경|개정|신설|삭제|수정|개편|종전|현행`)
	spacedRe    = regexp.MustCompile(`[가-힣]\s[가-힣]\s[가-힣]\s[가-힣]\s[가-힣]`)
	alphaRe     = regexp.MustCompile(`[가-힣a-zA-Z]`)
	titleNumRe  = regexp.MustCompile(`^[A-Z]?[0-9]+$`)
	endPunctRe  = regexp.MustCompile(`[.!?)」』0-9]`)
)

// questionEndings are the sentence tails a natural Korean question ends
// with. Long "questions" without one are pasted page content.
var questionEndings = []string{"요?", "까?", "나요?", "는지?", "가요?", "세요?", "인지?", "습니까?"}

// relationPhrases must appear early in an answer for a "~와의 관계"
// question to count as genuinely explained.
var relationPhrases = []string{"관계가", "관련이", "연관", "연계", "영향을 미", "상호", "함께", "밀접", "연결"}

// answerEndings are acceptable final words of a complete answer.
var answerEndings = []string{".", "요", "다", "니다", "음", "임", "됨", "함"}

// formSamples are sample values copied from blank forms. Two or more in one
// answer mean the answer reproduces a form template.
var formSamples = []string{"이순신", "홍길동", "○○", "△△", "□□", "☆☆", "20**", "19**", "20  .  .", "(인)", "귀하"}

// grammarNouns are administrative nouns frequently miscombined with the
// 와/과 and 은/는 particle pairs. The wrong surface form for each noun is
// derived from its final consonant, never listed by hand.
var grammarNouns = []string{
	"대상", "규정", "기관", "기간", "내용", "조건", "기준", "요건", "사항",
	"직원", "교원", "공무원", "학생", "학교", "면직", "공석", "복직", "휴직",
	"정원", "처분", "결과", "자격", "시험",
	"자료", "교사", "기타", "사유", "대리", "배우자", "위원회", "부서",
}

// wrongForms returns the particle combinations that are ungrammatical for
// noun: a noun ending in a final consonant takes 과/은, an open syllable
// takes 와/는.
func wrongForms(noun string) [2]string {
	if hangul.EndsWithBatchim(noun) {
		return [2]string{noun + "와", noun + "는"}
	}
	return [2]string{noun + "과", noun + "은"}
}

// rightForms returns the grammatical counterparts of wrongForms, in the
// same order.
func rightForms(noun string) [2]string {
	if hangul.EndsWithBatchim(noun) {
		return [2]string{noun + "과", noun + "은"}
	}
	return [2]string{noun + "와", noun + "는"}
}

// Engine evaluates structural rules with a fixed tuning.
type Engine struct {
	MinQuestionRunes int     // below this the question is flagged short
	MinAnswerRunes   int     // below this the answer is flagged short
	PastedSoftLen    int     // rune length above which a non-question shape is pasted content
	PastedHardLen    int     // rune length above which any question is pasted content
	AnswerHeadRunes  int     // answer prefix searched for relation phrases
	LowContentRatio  float64 // minimum letter fraction of an answer
	SourceLowRatio   float64 // minimum letter fraction of a source text
	FormSampleHits   int     // form sample count that condemns an answer
}

// New returns an engine with the recommended tuning.
func New() *Engine {
	return &Engine{
		MinQuestionRunes: 10,
		MinAnswerRunes:   100,
		PastedSoftLen:    120,
		PastedHardLen:    150,
		AnswerHeadRunes:  300,
		LowContentRatio:  0.3,
		SourceLowRatio:   0.2,
		FormSampleHits:   2,
	}
}

// CheckQuestion evaluates the question-side rules. answer is consulted for
// rules whose evidence spans both fields; pageText is the concatenated
// text of all cited pages and may be empty when no page resolved.
func (e *Engine) CheckQuestion(question, answer, pageText string) []issue.Issue {
	if question == "" {
		return []issue.Issue{issue.New(issue.QuestionEmpty)}
	}

	var issues []issue.Issue
	qLen := utf8.RuneCountInString(question)
	if qLen < e.MinQuestionRunes {
		issues = append(issues, issue.New(issue.QuestionTooShort))
	}
	if htmlRe.MatchString(question) {
		issues = append(issues, issue.New(issue.HTMLInQuestion))
	}
	if rawBoldRe.MatchString(question) || rawBulletRe.MatchString(question) {
		issues = append(issues, issue.New(issue.QuestionRawMarkdown))
	}

	if qLen > e.PastedSoftLen {
		if !hasQuestionShape(question) || qLen > e.PastedHardLen {
			issues = append(issues, issue.New(issue.QuestionPastedContent))
		}
	}

	if strings.Contains(question, "(계속)") || strings.Contains(question, "계속)") {
		issues = append(issues, issue.New(issue.QuestionContinuation))
	}
	if qaNumberRe.MatchString(question) {
		issues = append(issues, issue.New(issue.QuestionQANumber))
	}
	if vagueRefRe.MatchString(question) {
		issues = append(issues, issue.New(issue.QuestionVagueReference))
	}
	if nonsenseRe.MatchString(question) {
		issues = append(issues, issue.New(issue.QuestionNonsenseVerb))
	}

	if strings.Contains(question, "○○") || strings.Contains(question, "***") || strings.Contains(question, "□□") {
		issues = append(issues, issue.New(issue.QuestionPlaceholder))
	}
	if spacedRe.MatchString(question) {
		issues = append(issues, issue.New(issue.QuestionSpacedChars))
	}

	// A relation question must be answered with an actual relation, not a
	// concatenation of two topics.
	if relationRe.MatchString(question) {
		head := firstRunes(answer, e.AnswerHeadRunes)
		explained := false
		for _, p := range relationPhrases {
			if strings.Contains(head, p) {
				explained = true
				break
			}
		}
		if !explained {
			issues = append(issues, issue.New(issue.QuestionFakeRelation))
		}
	}

	if changeAskRe.MatchString(question) && pageText != "" && !changeRe.MatchString(pageText) {
		issues = append(issues, issue.New(issue.QuestionTemplateMismatch))
	}

	return issues
}

// CheckAnswerText evaluates answer-side rules independent of the corpus.
func (e *Engine) CheckAnswerText(answer string) []issue.Issue {
	if answer == "" {
		return []issue.Issue{issue.New(issue.AnswerEmpty)}
	}

	var issues []issue.Issue
	aLen := utf8.RuneCountInString(answer)
	if aLen < e.MinAnswerRunes {
		issues = append(issues, issue.New(issue.AnswerTooShort))
	}
	if htmlRe.MatchString(answer) {
		issues = append(issues, issue.New(issue.HTMLInAnswer))
	}
	if strings.HasPrefix(strings.TrimSpace(answer), "(계속)") {
		issues = append(issues, issue.New(issue.AnswerStartsContinuation))
	}
	if strings.Contains(answer, `\|`) || strings.Contains(answer, `\*`) {
		issues = append(issues, issue.New(issue.AnswerEscapedMarkdown))
	}

	// Fill-in blanks mean the answer pasted a form, whatever else it says.
	if strings.Contains(answer, "________") || strings.Contains(answer, "( )학교") || strings.Contains(answer, "[ ]") {
		issues = append(issues, issue.New(issue.FormContent))
	}

	hits := 0
	for _, s := range formSamples {
		if strings.Contains(answer, s) {
			hits++
		}
	}
	if hits >= e.FormSampleHits {
		issues = append(issues, issue.New(issue.AnswerFormTemplateData))
	}

	letters := len(alphaRe.FindAllString(answer, -1))
	if float64(letters)/float64(aLen) < e.LowContentRatio {
		issues = append(issues, issue.New(issue.AnswerLowContent))
	}
	if strings.Count(answer, "|") > 10 && strings.Count(answer, "---") > 3 {
		issues = append(issues, issue.New(issue.AnswerTableDump))
	}
	if truncated(answer) {
		issues = append(issues, issue.New(issue.AnswerTruncated))
	}

	return issues
}

// CheckSourceText flags source excerpts that are mostly formatting.
func (e *Engine) CheckSourceText(sourceText string) []issue.Issue {
	n := utf8.RuneCountInString(sourceText)
	if n == 0 {
		return nil
	}
	letters := len(alphaRe.FindAllString(sourceText, -1))
	if float64(letters)/float64(n) < e.SourceLowRatio {
		return []issue.Issue{issue.New(issue.SourceLowContent)}
	}
	return nil
}

// CheckTitle flags source titles that carry no meaning: bare numbers,
// one or two characters, or a label cut off at a colon.
func (e *Engine) CheckTitle(title string) []issue.Issue {
	if title == "" {
		return nil
	}
	if utf8.RuneCountInString(title) <= 2 || titleNumRe.MatchString(title) || strings.HasSuffix(title, ":") {
		return []issue.Issue{issue.New(issue.SourceTitleMeaningless)}
	}
	return nil
}

// CheckGrammar scans question and answer for noun+particle combinations
// that disagree with the noun's final consonant.
func (e *Engine) CheckGrammar(question, answer string) []issue.Issue {
	for _, noun := range grammarNouns {
		for _, bad := range wrongForms(noun) {
			if strings.Contains(question, bad) || strings.Contains(answer, bad) {
				return []issue.Issue{issue.Newf(issue.GrammarError, bad)}
			}
		}
	}
	return nil
}

// CorrectParticles rewrites wrong noun+particle combinations to their
// grammatical forms and reports how many replacements were made.
func CorrectParticles(text string) (string, int) {
	fixed := 0
	for _, noun := range grammarNouns {
		bad := wrongForms(noun)
		good := rightForms(noun)
		for i := range bad {
			if n := strings.Count(text, bad[i]); n > 0 {
				text = strings.ReplaceAll(text, bad[i], good[i])
				fixed += n
			}
		}
	}
	return text, fixed
}

var (
	formHeaderRe = regexp.MustCompile(`서식\s*[ⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩivx0-9]`)
	checkboxRe   = regexp.MustCompile(`□\s+[가-힣]`)
	sealLineRe   = regexp.MustCompile(`성\s*명\s*:.*\(인\)`)
	addresseeRe  = regexp.MustCompile(`[가-힣]+장?\s*귀\s*하`)
)

// PageIsForm detects blank-form pages. Forms carry checkbox rows, seal
// marks and an addressee line instead of prose, and entries generated from
// them are unanswerable.
func PageIsForm(pageText string) bool {
	if pageText == "" {
		return false
	}
	count := 0
	if formHeaderRe.MatchString(pageText) {
		count++
	}
	if checkboxRe.MatchString(pageText) {
		count++
	}
	if strings.Contains(pageText, "<center>") {
		count++
	}
	if strings.Contains(pageText, "(인)") {
		count++
	}
	if sealLineRe.MatchString(pageText) {
		count++
	}

	lines := strings.SplitN(pageText, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	if formHeaderRe.MatchString(strings.Join(lines, " ")) {
		count += 3
	}
	if strings.HasSuffix(strings.TrimSpace(pageText), "귀하") || addresseeRe.MatchString(pageText) {
		count++
	}
	return count >= 3
}

// countryMarkers identify pages that are country membership listings.
var countryMarkers = []string{"아포스티유", "가입국", "리스트", "뉴질랜드", "마샬군도"}

// PageIsReferenceTable detects lookup-table pages whose rows make no sense
// as standalone answers.
func PageIsReferenceTable(pageText string) bool {
	if pageText == "" {
		return false
	}
	hits := 0
	for _, m := range countryMarkers {
		if strings.Contains(pageText, m) {
			hits++
		}
	}
	return hits >= 2
}

func hasQuestionShape(question string) bool {
	q := strings.TrimRight(question, " \t\n")
	for _, e := range questionEndings {
		if strings.HasSuffix(q, e) {
			return true
		}
	}
	return false
}

// truncated reports whether the answer stops mid-sentence: the final word
// is not an accepted ending and the final rune is not closing punctuation.
func truncated(answer string) bool {
	a := strings.TrimRight(answer, " \t\n")
	if a == "" {
		return false
	}
	for _, e := range answerEndings {
		if strings.HasSuffix(a, e) {
			return false
		}
	}
	r, _ := utf8.DecodeLastRuneInString(a)
	return !endPunctRe.MatchString(string(r))
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
