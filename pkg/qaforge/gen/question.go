package gen

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/hangul"
)

// templates by content type. {t} is the topic; particle slots are
// resolved against the topic's final syllable.
var templates = map[string][]string{
	"definition": {
		"{t}{은는} 무엇인가요?",
		"{t}의 정의가 어떻게 되나요?",
		"{t}에 대해 구체적으로 설명해주세요.",
		"{t}{이가} 정확히 어떤 것을 의미하나요?",
		"{t}의 개념이 궁금합니다.",
		"{t}{이가} 무엇을 뜻하는 건가요?",
	},
	"condition": {
		"{t}의 조건은 무엇인가요?",
		"{t}{을를} 하려면 어떤 요건이 필요한가요?",
		"{t}의 자격 요건이 어떻게 되나요?",
		"어떤 경우에 {t}{이가} 가능한가요?",
		"{t}의 대상자는 누구인가요?",
		"{t}에 해당하려면 어떤 조건을 충족해야 하나요?",
		"{t} 신청 자격이 있는 사람은 누구인가요?",
		"{t}{을를} 받을 수 있는 자격이 궁금합니다.",
	},
	"procedure": {
		"{t}의 절차는 어떻게 되나요?",
		"{t}{을를} 신청하려면 어떻게 해야 하나요?",
		"{t} 신청 방법을 알려주세요.",
		"{t}{을를} 위해 필요한 서류는 무엇인가요?",
		"{t}{은는} 어떤 과정을 거치나요?",
		"{t}의 처리 절차가 궁금합니다.",
		"{t}{을를} 신청할 때 유의사항이 있나요?",
		"{t}의 처리 기한이 어떻게 되나요?",
	},
	"number": {
		"{t}의 기간은 얼마나 되나요?",
		"{t}{은는} 몇 년까지 가능한가요?",
		"{t}의 횟수 제한이 있나요?",
		"{t}{은는} 얼마나 인정되나요?",
		"{t} 기간은 어떻게 계산하나요?",
		"{t}의 일수는 어떻게 되나요?",
		"{t}에 관한 기간과 횟수를 알려주세요.",
	},
	"list": {
		"{t}에는 어떤 종류가 있나요?",
		"{t}에 해당하는 것들은 무엇인가요?",
		"{t}의 유형을 알려주세요.",
		"{t}에는 어떤 것들이 포함되나요?",
		"{t}의 구분이 어떻게 되나요?",
		"{t}{을를} 분류하면 어떻게 되나요?",
	},
	"restriction": {
		"{t}에서 금지되는 행위는 무엇인가요?",
		"{t} 관련 제한사항이 있나요?",
		"{t}{을를} 위반하면 어떻게 되나요?",
		"{t}에서 주의해야 할 점은 무엇인가요?",
		"{t}{과와} 관련하여 금지되는 사항을 알려주세요.",
		"{t}{이가} 제한되는 경우는 언제인가요?",
	},
	"effect": {
		"{t}의 효력은 어떻게 되나요?",
		"{t}하면 어떤 효과가 있나요?",
		"{t}{이가} 경력평정에 어떻게 반영되나요?",
		"{t}{이가} 승진에 미치는 영향은 무엇인가요?",
		"{t}의 승급 인정은 어떻게 되나요?",
		"{t}의 결과는 어떻게 처리되나요?",
	},
	"exception": {
		"{t}의 예외 사항이 있나요?",
		"{t}에서 제외되는 경우는 어떤 경우인가요?",
		"{t}에 특례가 적용되는 경우가 있나요?",
		"{t}{이가} 적용되지 않는 경우는 언제인가요?",
		"{t}의 단서 조항이 있나요?",
	},
	"discipline": {
		"{t}의 종류와 내용은 무엇인가요?",
		"{t}에 해당하는 사유는 무엇인가요?",
		"{t} 시 절차는 어떻게 되나요?",
		"{t}{을를} 감경받을 수 있는 경우가 있나요?",
		"{t}의 기준은 어떻게 되나요?",
		"{t}의 양정 기준이 궁금합니다.",
	},
	"compensation": {
		"{t}{은는} 어떻게 결정되나요?",
		"{t}의 산정 기준은 무엇인가요?",
		"{t}{은는} 얼마나 지급되나요?",
		"{t}{을를} 받을 수 있는 조건은 무엇인가요?",
		"{t}의 지급 방법이 어떻게 되나요?",
	},
	"evaluation": {
		"{t}{은는} 어떻게 이루어지나요?",
		"{t}의 기준은 무엇인가요?",
		"{t}의 방법을 알려주세요.",
		"{t} 시 고려사항은 무엇인가요?",
		"{t}의 점수는 어떻게 계산하나요?",
		"{t}{은는} 누가 하나요?",
	},
	"appointment": {
		"{t}의 요건은 무엇인가요?",
		"{t}{은는} 어떻게 진행되나요?",
		"{t}의 기준이 어떻게 되나요?",
		"{t} 대상자는 어떻게 선발하나요?",
		"{t}{은는} 누가 하나요?",
		"{t}의 원칙은 무엇인가요?",
	},
	"leave": {
		"{t}{은는} 얼마나 사용할 수 있나요?",
		"{t}의 신청 절차는 어떻게 되나요?",
		"{t} 중 보수는 어떻게 되나요?",
		"{t} 기간에 승급이 되나요?",
		"{t}의 사유는 어떤 것이 있나요?",
		"{t}{을를} 사용하려면 어떻게 해야 하나요?",
		"{t} 기간 중 신분은 어떻게 되나요?",
	},
	"general": {
		"{t}에 대해 알려주세요.",
		"{t}의 내용은 무엇인가요?",
		"{t}{은는} 어떻게 되나요?",
		"{t}에 대한 규정은 어떻게 되어 있나요?",
		"{t}{이가} 궁금합니다.",
		"{t}에 관한 주요 내용을 설명해주세요.",
	},
}

var situationTemplates = []string{
	"교사가 {sit} 어떻게 해야 하나요?",
	"{sit} 어떤 절차를 밟아야 하나요?",
	"{sit} 주의해야 할 점이 있나요?",
	"{sit} 어떻게 처리하나요?",
	"만약 {sit} 어떻게 되나요?",
	"{sit} 필요한 서류가 있나요?",
	"{sit} 관련 규정이 어떻게 되나요?",
}

var practicalTemplates = []string{
	"{t} 관련하여 자주 묻는 질문이 있나요?",
	"{t}에서 실무적으로 주의할 점은 무엇인가요?",
	"{t}의 법적 근거는 무엇인가요?",
	"{t}에 관한 판례나 사례가 있나요?",
}

var (
	hangulEnumDotRe   = regexp.MustCompile(`^[가나다라마바사아자차카타파하][).]\s*`)
	numEnumRe         = regexp.MustCompile(`^[0-9]+[).\s]+`)
	circledEnumRe     = regexp.MustCompile(`^[①②③④⑤⑥⑦⑧⑨⑩]\s*`)
	parenEnumRe       = regexp.MustCompile(`^\([가나다라마바사아자차카타파하0-9]+\)\s*`)
	lawParenRe        = regexp.MustCompile(`\s*\((?:[「『].*?[」』]|.*?제[0-9]+조.*?)\)\s*`)
	continuationTagRe = regexp.MustCompile(`\s*\(계속\)\s*`)
)

// cleanTopic turns a section title into a usable topic name, falling back
// through the parent titles when the title is pure numbering.
func cleanTopic(title string, parents []string) string {
	t := hangulEnumDotRe.ReplaceAllString(title, "")
	t = numEnumRe.ReplaceAllString(t, "")
	t = circledEnumRe.ReplaceAllString(t, "")
	t = parenEnumRe.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "**", "")
	t = lawParenRe.ReplaceAllString(t, "")
	t = continuationTagRe.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)

	if utf8.RuneCountInString(t) < 2 {
		for i := len(parents) - 1; i >= 0; i-- {
			if ct := cleanTopic(parents[i], nil); utf8.RuneCountInString(ct) >= 2 {
				return ct
			}
		}
	}
	return t
}

// question is a generated question with the content type that produced
// it.
type question struct {
	text  string
	qtype string
}

const (
	maxQuestionsPerSection = 8
	minQuestionRunes       = 15
)

// generateQuestions produces questions for a section: a couple per
// detected content type, plus practical, situation and key-term variants
// for richer sections.
func generateQuestions(s *Section, rng *rand.Rand) []question {
	topic := cleanTopic(s.Title, s.ParentTitles)
	if utf8.RuneCountInString(topic) < 2 || s.TextLen < 50 || s.IsForm {
		return nil
	}

	var out []question
	used := make(map[string]bool)

	types := s.Types
	if len(types) > 3 {
		types = types[:3]
	}
	for _, ctype := range types {
		tmpls, ok := templates[ctype]
		if !ok {
			tmpls = templates["general"]
		}
		var available []string
		for _, t := range tmpls {
			if !used[t] {
				available = append(available, t)
			}
		}
		perm := rng.Perm(len(available))
		if len(perm) > 2 {
			perm = perm[:2]
		}
		for _, idx := range perm {
			tmpl := available[idx]
			used[tmpl] = true
			out = append(out, question{fillTemplate(tmpl, topic), ctype})
		}
	}

	if s.TextLen > 200 {
		tmpl := practicalTemplates[rng.Intn(len(practicalTemplates))]
		out = append(out, question{fillTemplate(tmpl, topic), "practical"})
	}

	if s.TextLen > 100 {
		sits := extractSituations(s.Text)
		if len(sits) > 2 {
			sits = sits[:2]
		}
		for _, sit := range sits {
			tmpl := situationTemplates[rng.Intn(len(situationTemplates))]
			out = append(out, question{strings.ReplaceAll(tmpl, "{sit}", sit), "situation"})
		}
	}

	terms := s.KeyTerms
	if len(terms) > 2 {
		terms = terms[:2]
	}
	for _, term := range terms {
		ct := cleanTopic(term, nil)
		if ct == "" || ct == topic || utf8.RuneCountInString(ct) < 3 {
			continue
		}
		ctype := "general"
		if len(s.Types) > 0 {
			ctype = s.Types[0]
		}
		tmpls, ok := templates[ctype]
		if !ok {
			tmpls = templates["general"]
		}
		tmpl := tmpls[rng.Intn(len(tmpls))]
		out = append(out, question{fillTemplate(tmpl, ct), ctype})
	}

	nums := s.Numbers
	if len(nums) > 2 {
		nums = nums[:2]
	}
	for _, num := range nums {
		out = append(out, question{topic + "에서 " + num + "이라는 기준은 어떤 의미인가요?", "number"})
	}

	seen := make(map[string]bool)
	var unique []question
	for _, q := range out {
		text := strings.TrimSpace(q.text)
		if seen[text] || utf8.RuneCountInString(text) < minQuestionRunes {
			continue
		}
		seen[text] = true
		unique = append(unique, question{text, q.qtype})
		if len(unique) == maxQuestionsPerSection {
			break
		}
	}
	return unique
}

func fillTemplate(tmpl, topic string) string {
	return hangul.FillParticles(strings.ReplaceAll(tmpl, "{t}", topic), topic)
}

var situationRes = []*regexp.Regexp{
	regexp.MustCompile(`([가-힣\s·,]{8,50}(?:하는|한|된|하게\s*된|되는|받은|받는))\s*경우`),
	regexp.MustCompile(`([가-힣\s·,]{8,50}(?:하였을|하였더라도|하더라도))\s*때`),
	regexp.MustCompile(`([가-힣\s·,]{8,50}(?:으로|로)\s+인한)`),
}

var situationJunkRe = regexp.MustCompile(`^[·\-\s*>]+`)

// extractSituations pulls "~하는 경우" style phrases that can anchor a
// scenario question.
func extractSituations(text string) []string {
	var out []string
	for _, re := range situationRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			sit := strings.TrimSpace(situationJunkRe.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			n := utf8.RuneCountInString(sit)
			if n < 8 || n > 60 {
				continue
			}
			if !strings.HasSuffix(sit, "경우") && !strings.HasSuffix(sit, "때") && !strings.HasSuffix(sit, "경우에는") {
				sit += " 경우"
			}
			out = append(out, sit)
			if len(out) == 3 {
				return out
			}
		}
	}
	return out
}
