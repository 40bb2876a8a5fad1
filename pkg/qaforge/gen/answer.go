package gen

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cognidoc/qaforge/pkg/qaforge/hangul"
)

var intros = []string{
	"{t}에 대해 안내드립니다.",
	"{t}에 대해 설명드리겠습니다.",
	"{t}{을를} 안내드립니다.",
	"{t} 관련 사항을 설명드리겠습니다.",
	"{t}에 관해 안내드립니다.",
	"{t}의 내용을 설명드리겠습니다.",
}

const minAnswerRunes = 350

// buildAnswer assembles an intro, a structured body and a reference line
// into an answer. Thin answers are padded with classification context and
// the section's key figures.
func buildAnswer(s *Section, rng *rand.Rand) string {
	topic := cleanTopic(s.Title, s.ParentTitles)
	intro := hangul.FillParticles(strings.ReplaceAll(intros[rng.Intn(len(intros))], "{t}", topic), topic)
	body := buildBody(s)

	refSection := ""
	if refs := extractLawReferences(s.Text); len(refs) > 0 {
		if len(refs) > 4 {
			refs = refs[:4]
		}
		refSection = "\n\n**관련 근거:** " + strings.Join(refs, ", ")
	}

	answer := intro + "\n\n" + body + refSection

	if utf8.RuneCountInString(answer) < minAnswerRunes {
		if parents := cleanParents(s.ParentTitles); len(parents) > 0 {
			answer = intro + "\n\n**분류:** " + strings.Join(parents, " > ") + "\n\n" + body + refSection
		}
		if len(s.Numbers) > 0 && utf8.RuneCountInString(answer) < minAnswerRunes {
			nums := s.Numbers
			if len(nums) > 5 {
				nums = nums[:5]
			}
			answer += "\n\n**주요 수치:** " + strings.Join(nums, ", ")
		}
	}
	return answer
}

func cleanParents(parents []string) []string {
	var out []string
	for _, p := range parents {
		if c := cleanTopic(p, nil); c != "" {
			out = append(out, c)
		}
	}
	if len(out) > 3 {
		out = out[len(out)-3:]
	}
	return out
}

var (
	boldHeaderRe   = regexp.MustCompile(`^\*\*(.+?)\*\*\s*:?\s*(.*)`)
	hangulItemRe   = regexp.MustCompile(`^[-•]\s*\*\*([가나다라마바사아자])\)\*\*\s*(.*)`)
	parenItemRe    = regexp.MustCompile(`^\(([0-9]+|[가나다라마바사아자])\)\s*(.*)`)
	circledItemRe  = regexp.MustCompile(`^([①②③④⑤⑥⑦⑧⑨⑩])\s*(.*)`)
	bulletItemRe   = regexp.MustCompile(`^[-•]\s*(.*)`)
	blockquoteRe   = regexp.MustCompile(`^>\s*(.*)`)
	tableMarkupRe  = regexp.MustCompile(`^[-\s:|]+$`)
	quotePrefixRe  = regexp.MustCompile(`(?m)^>\s*`)
	tableSepLineRe = regexp.MustCompile(`^\|[\s\-:|]+\|$`)
)

// buildBody renders the section content as answer prose: tables become
// labeled item lists, enumerations become bullets, blockquotes become
// notes.
func buildBody(s *Section) string {
	var parts []string

	if s.HasTable && !s.IsForm {
		if t := tableToText(s.RawText); utf8.RuneCountInString(t) > 50 {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		var elements []string
		for _, line := range strings.Split(s.Text, "\n") {
			stripped := strings.TrimSpace(line)
			if utf8.RuneCountInString(stripped) < 3 {
				continue
			}
			if strings.HasPrefix(stripped, "|") || tableMarkupRe.MatchString(stripped) {
				continue
			}
			if m := boldHeaderRe.FindStringSubmatch(stripped); m != nil {
				header, content := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
				if content != "" {
					elements = append(elements, "**"+header+":** "+content)
				} else if utf8.RuneCountInString(header) > 3 {
					elements = append(elements, "**"+header+"**")
				}
				continue
			}
			if m := hangulItemRe.FindStringSubmatch(stripped); m != nil {
				elements = append(elements, "- **"+m[1]+")** "+m[2])
				continue
			}
			if m := parenItemRe.FindStringSubmatch(stripped); m != nil {
				elements = append(elements, "- ("+m[1]+") "+m[2])
				continue
			}
			if m := circledItemRe.FindStringSubmatch(stripped); m != nil {
				elements = append(elements, "- "+m[1]+" "+m[2])
				continue
			}
			if m := bulletItemRe.FindStringSubmatch(stripped); m != nil {
				elements = append(elements, "- "+m[1])
				continue
			}
			if m := blockquoteRe.FindStringSubmatch(stripped); m != nil {
				note := strings.TrimSpace(m[1])
				if utf8.RuneCountInString(note) > 5 && !strings.HasPrefix(note, "■") {
					elements = append(elements, "※ "+note)
				}
				continue
			}
			if utf8.RuneCountInString(stripped) > 10 {
				elements = append(elements, stripped)
			}
		}

		switch {
		case len(elements) > 3:
			parts = append(parts, "**핵심 내용:**\n"+elements[0])
			parts = append(parts, strings.Join(elements[1:], "\n"))
		case len(elements) > 0:
			parts = append(parts, strings.Join(elements, "\n"))
		default:
			clean := quotePrefixRe.ReplaceAllString(strings.ReplaceAll(s.Text, "**", ""), "")
			if utf8.RuneCountInString(clean) > 20 {
				parts = append(parts, firstRunes(clean, 600))
			}
		}
	}

	return strings.Join(parts, "\n\n")
}

// tableToText converts a markdown table into "label: values" items, the
// shape an answer can actually use.
func tableToText(rawText string) string {
	var tableLines []string
	for _, l := range strings.Split(rawText, "\n") {
		if l = strings.TrimSpace(l); strings.HasPrefix(l, "|") {
			tableLines = append(tableLines, l)
		}
	}
	if len(tableLines) < 2 {
		return ""
	}

	headers := splitCells(tableLines[0])
	if len(headers) == 0 {
		return ""
	}

	var rows [][]string
	for _, line := range tableLines[1:] {
		if tableSepLineRe.MatchString(line) {
			continue
		}
		if cells := splitCells(line); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) > 12 {
		rows = rows[:12]
	}

	var parts []string
	for _, row := range rows {
		if len(row) < 2 || len(headers) < 2 {
			continue
		}
		label := strings.ReplaceAll(strings.ReplaceAll(row[0], "<br>", " / "), "<br/>", " / ")
		if label == "" || label == "-" {
			continue
		}
		var b strings.Builder
		b.WriteString("**" + label + ":**")
		for i, cell := range row[1:] {
			c := strings.TrimSpace(strings.ReplaceAll(cell, "<br>", ", "))
			if c == "" || c == "-" {
				continue
			}
			if i+1 < len(headers) {
				b.WriteString("\n  - " + headers[i+1] + ": " + c)
			} else {
				b.WriteString("\n  - " + c)
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

var lawRefRe = regexp.MustCompile(`[「『](.+?)[」』]\s*(제[0-9]+조(?:의[0-9]+)?(?:제[0-9]+항)?)?`)

func extractLawReferences(text string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, m := range lawRefRe.FindAllStringSubmatch(text, -1) {
		ref := "「" + m[1] + "」"
		if m[2] != "" {
			ref += " " + m[2]
		}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

const (
	minSourceRunes = 80
	maxSourceRunes = 500
)

// sentenceEnds are the markers a truncated source is cut back to, so the
// excerpt never stops mid-sentence.
var sentenceEnds = []string{"다.", "다\n", "함.", "음.", "임.", "됨."}

// extractSource produces the verbatim excerpt cited by the entry. Long
// sections are truncated at a sentence boundary; very short ones are
// prefixed with their parent topic for context.
func extractSource(s *Section) string {
	text := strings.TrimSpace(quotePrefixRe.ReplaceAllString(s.Text, ""))

	if utf8.RuneCountInString(text) < minSourceRunes && len(s.ParentTitles) > 0 {
		if prefix := cleanTopic(s.ParentTitles[len(s.ParentTitles)-1], nil); prefix != "" {
			text = prefix + ": " + text
		}
	}

	if utf8.RuneCountInString(text) > maxSourceRunes {
		cut := firstRunes(text, maxSourceRunes)
		truncated := cut
		for _, marker := range sentenceEnds {
			idx := strings.LastIndex(cut, marker)
			if idx < 0 {
				continue
			}
			if utf8.RuneCountInString(cut[:idx]) > 200 {
				truncated = cut[:idx+len(marker)]
				break
			}
		}
		text = truncated
	}
	return strings.TrimSpace(text)
}

// domainTermRes are handbook vocabulary families always worth indexing.
var domainTermRes = []*regexp.Regexp{
	regexp.MustCompile(`교장|교감|교사|교원|교육감`),
	regexp.MustCompile(`임용|채용|전보|승진|휴직|복직|면직`),
	regexp.MustCompile(`징계|파면|해임|정직|감봉|견책`),
	regexp.MustCompile(`호봉|승급|보수|수당`),
	regexp.MustCompile(`연가|병가|공가|육아휴직`),
	regexp.MustCompile(`평정|평가|경력평정|가산점`),
}

const maxKeywords = 7

// extractKeywords gathers index terms: the topic, key terms, nearby
// parent topics and recognized domain vocabulary.
func extractKeywords(s *Section, topic string) []string {
	var kws []string
	seen := make(map[string]bool)
	add := func(t string) {
		n := utf8.RuneCountInString(t)
		if n >= 2 && n <= 15 && !seen[t] {
			seen[t] = true
			kws = append(kws, t)
		}
	}

	add(topic)
	terms := s.KeyTerms
	if len(terms) > 3 {
		terms = terms[:3]
	}
	for _, t := range terms {
		add(strings.TrimSpace(strings.NewReplacer("「", "", "」", "", "『", "", "』", "").Replace(t)))
	}
	parents := s.ParentTitles
	if len(parents) > 2 {
		parents = parents[len(parents)-2:]
	}
	for _, p := range parents {
		add(cleanTopic(p, nil))
	}
	head := firstRunes(s.Text, 300)
	for _, re := range domainTermRes {
		for _, m := range re.FindAllString(head, -1) {
			add(m)
		}
	}
	if len(kws) > maxKeywords {
		kws = kws[:maxKeywords]
	}
	return kws
}

// subcategory is the nearest meaningful title above the section.
func subcategory(s *Section, category string) string {
	titles := append(append([]string(nil), s.ParentTitles...), s.Title)
	for i := len(titles) - 1; i >= 0; i-- {
		c := cleanTopic(titles[i], nil)
		n := utf8.RuneCountInString(c)
		if n >= 2 && n <= 20 && c != category {
			return c
		}
	}
	return category
}
