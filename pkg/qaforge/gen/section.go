package gen

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Section is one logical unit of a handbook page: a heading (or bold
// pseudo-heading) plus the content lines under it, annotated with what
// kind of content it holds.
type Section struct {
	Title        string
	Level        int
	Page         int
	ParentTitles []string

	Text     string // cleaned content
	RawText  string // content with markup intact, for table parsing
	TextLen  int    // runes of Text
	Types    []string
	KeyTerms []string
	Numbers  []string
	HasTable bool
	IsForm   bool
}

var (
	pageHeaderRe = regexp.MustCompile(`^#\s+[0-9]+쪽\s*$`)
	separatorRe  = regexp.MustCompile(`^[\-=_]{3,}$`)
	headerRe     = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	boldTitleRe  = regexp.MustCompile(`^\*\*(.+?)\*\*\s*$`)
	tableSepRe   = regexp.MustCompile(`^\|[\-\s:|]+\|$`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	htmlFormRe   = regexp.MustCompile(`(?i)<(?:br|div|p |span|table|img|input)`)
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	tableRowRe   = regexp.MustCompile(`\|.*\|.*\|`)
)

// ParseSections splits page markdown into sections along headings and
// standalone bold lines, tracking the heading hierarchy for context.
func ParseSections(content string, page int) []*Section {
	if isFormContent(content) {
		content = cleanHTML(content)
	}

	var sections []*Section
	cur := &Section{Page: page}
	var curLines []string
	type stackEntry struct {
		level int
		title string
	}
	var stack []stackEntry

	flush := func() {
		if len(curLines) > 0 {
			sections = append(sections, finalize(cur, curLines))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || pageHeaderRe.MatchString(stripped) || separatorRe.MatchString(stripped) {
			continue
		}
		if len(htmlTagRe.FindAllString(stripped, 3)) > 2 {
			continue
		}

		if m := headerRe.FindStringSubmatch(stripped); m != nil {
			flush()
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parents := make([]string, len(stack))
			for i, s := range stack {
				parents[i] = s.title
			}
			stack = append(stack, stackEntry{level, title})
			cur = &Section{Title: title, Level: level, ParentTitles: parents, Page: page}
			curLines = nil
			continue
		}

		if m := boldTitleRe.FindStringSubmatch(stripped); m != nil && utf8.RuneCountInString(stripped) < 100 {
			flush()
			parents := append([]string(nil), cur.ParentTitles...)
			if cur.Title != "" {
				parents = append(parents, cur.Title)
			}
			cur = &Section{
				Title:        strings.TrimSpace(m[1]),
				Level:        cur.Level + 1,
				ParentTitles: parents,
				Page:         page,
			}
			curLines = nil
			continue
		}

		if !tableSepRe.MatchString(stripped) {
			curLines = append(curLines, stripped)
		}
	}
	flush()
	return sections
}

func finalize(s *Section, lines []string) *Section {
	s.RawText = strings.Join(lines, "\n")
	s.Text = cleanHTML(s.RawText)
	s.TextLen = utf8.RuneCountInString(s.Text)
	s.Types = detectContentTypes(s.Text, s.Title)
	s.KeyTerms = extractKeyTerms(s.Text, s.Title)
	s.Numbers = extractNumbers(s.Text)
	s.HasTable = tableRowRe.MatchString(s.RawText)
	s.IsForm = isFormContent(s.RawText)
	return s
}

// isFormContent detects text that is mostly a fill-in form rather than
// prose.
func isFormContent(text string) bool {
	htmlTags := len(htmlFormRe.FindAllString(text, -1))
	checkboxes := strings.Count(text, "[ ]") + strings.Count(text, "[✓]") + strings.Count(text, "[v]")
	formMarkers := strings.Count(text, "서식") + strings.Count(text, "별지") + strings.Count(text, "귀하")
	blanks := strings.Count(text, "________") + strings.Count(text, "( )학교")
	return htmlTags+checkboxes+formMarkers+blanks > 3 || htmlTags > 5
}

// cleanHTML drops markup from converted pages: line breaks become
// newlines, every other tag is removed and only text survives.
func cleanHTML(text string) string {
	text = brRe.ReplaceAllString(text, "\n")
	if htmlTagRe.MatchString(text) {
		if doc, err := html.Parse(strings.NewReader(text)); err == nil {
			var buf strings.Builder
			var walk func(*html.Node)
			walk = func(n *html.Node) {
				if n.Type == html.TextNode {
					buf.WriteString(n.Data)
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
			}
			walk(doc)
			text = buf.String()
		}
	}
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// contentChecks map content-type labels to the surface patterns that
// signal them. Order matters: the first three types drive template
// selection.
var contentChecks = []struct {
	ctype string
	re    *regexp.Regexp
}{
	{"definition", regexp.MustCompile(`이란|이라\s*함은|을\s*말한다|의미한다|뜻한다|정의`)},
	{"condition", regexp.MustCompile(`조건|요건|자격|해당하는\s*경우|대상[^자]|기준|충족`)},
	{"procedure", regexp.MustCompile(`절차|방법|신청|제출|신고|보고|처리|과정|순서|접수`)},
	{"number", regexp.MustCompile(`기간|일수|년|개월|시간|횟수|만원|퍼센트|%|평정점`)},
	{"list", regexp.MustCompile(`[①②③④⑤⑥⑦⑧⑨⑩]|\([가나다라마바]\)|종류|구분|유형`)},
	{"restriction", regexp.MustCompile(`금지|못한다|안\s*된다|위반|처벌|제한|불가`)},
	{"effect", regexp.MustCompile(`효력|효과|인정|산입|반영|적용`)},
	{"exception", regexp.MustCompile(`다만|단,|예외|제외|특례|불구하고`)},
	{"discipline", regexp.MustCompile(`감경|가중|징계|처분|면직|파면|해임|정직|감봉|견책`)},
	{"compensation", regexp.MustCompile(`보수|수당|급여|호봉|봉급|승급`)},
	{"evaluation", regexp.MustCompile(`평정|평가|성적|근무성적|경력평정|가산점`)},
	{"appointment", regexp.MustCompile(`전보|전직|승진|임용|채용|발령|배치`)},
	{"leave", regexp.MustCompile(`휴직|복직|휴가|연가|병가|공가|특별휴가`)},
}

func detectContentTypes(text, title string) []string {
	combined := firstRunes(title+" "+text, 500)
	var types []string
	for _, c := range contentChecks {
		if c.re.MatchString(combined) {
			types = append(types, c.ctype)
		}
	}
	if len(types) == 0 {
		return []string{"general"}
	}
	return types
}

var (
	boldTermRe  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	numPrefixRe = regexp.MustCompile(`^[0-9]+\)`)
	titleJunkRe = regexp.MustCompile(`[*#0-9)(.]`)
	lawTermRe   = regexp.MustCompile(`[「『](.+?)[」』]`)
	numberRe    = regexp.MustCompile(`[0-9]+(?:년|월|일|시간|명|회|%|퍼센트|만원|원)`)
)

func extractKeyTerms(text, title string) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	for _, m := range boldTermRe.FindAllStringSubmatch(text, -1) {
		t := strings.TrimSpace(m[1])
		n := utf8.RuneCountInString(t)
		if n >= 2 && n <= 30 && !strings.HasPrefix(t, "가)") && !numPrefixRe.MatchString(t) {
			add(t)
		}
	}
	if ct := titleJunkRe.ReplaceAllString(title, ""); utf8.RuneCountInString(strings.TrimSpace(ct)) >= 2 {
		add(ct)
	}
	for _, m := range lawTermRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	if len(terms) > 8 {
		terms = terms[:8]
	}
	return terms
}

func extractNumbers(text string) []string {
	return numberRe.FindAllString(text, -1)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
