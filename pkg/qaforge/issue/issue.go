// Package issue defines the closed taxonomy of findings raised against QA
// entries and the static severity of each kind.
package issue

import "strings"

// Kind identifies a finding. The set is closed: inspection, verification
// and recovery all draw from these constants.
type Kind string

const (
	// structural basics
	QuestionEmpty    Kind = "QUESTION_EMPTY"
	AnswerEmpty      Kind = "ANSWER_EMPTY"
	NoSources        Kind = "NO_SOURCES"
	QuestionTooShort Kind = "QUESTION_TOO_SHORT"
	AnswerTooShort   Kind = "ANSWER_TOO_SHORT"

	// grounding
	SourceMissing      Kind = "SOURCE_MISSING"
	SourceTextMismatch Kind = "SOURCE_TEXT_MISMATCH"
	SourceTextEmpty    Kind = "SOURCE_TEXT_EMPTY"

	// relevance
	AnswerQuestionDisconnect Kind = "ANSWER_QUESTION_DISCONNECT"
	AnswerTopicMismatch      Kind = "ANSWER_TOPIC_MISMATCH"
	QuestionTopicNotOnPage   Kind = "QUESTION_TOPIC_NOT_ON_PAGE"
	SourceTitleNotInPage     Kind = "SOURCE_TITLE_NOT_IN_PAGE"

	// markup leakage
	HTMLInAnswer          Kind = "HTML_IN_ANSWER"
	HTMLInQuestion        Kind = "HTML_IN_QUESTION"
	QuestionRawMarkdown   Kind = "QUESTION_RAW_MARKDOWN"
	AnswerEscapedMarkdown Kind = "ANSWER_ESCAPED_MARKDOWN"

	// form/placeholder artifacts
	FormContent            Kind = "FORM_CONTENT"
	ReferenceTable         Kind = "REFERENCE_TABLE"
	AnswerFormTemplateData Kind = "ANSWER_FORM_TEMPLATE_DATA"
	QuestionPlaceholder    Kind = "QUESTION_PLACEHOLDER"
	QuestionSpacedChars    Kind = "QUESTION_SPACED_CHARS"

	// question defects
	QuestionPastedContent    Kind = "QUESTION_PASTED_CONTENT"
	QuestionContinuation     Kind = "QUESTION_CONTINUATION"
	QuestionQANumber         Kind = "QUESTION_QA_NUMBER"
	QuestionVagueReference   Kind = "QUESTION_VAGUE_REFERENCE"
	QuestionNonsenseVerb     Kind = "QUESTION_NONSENSE_VERB"
	QuestionFakeRelation     Kind = "QUESTION_FAKE_RELATION"
	QuestionTemplateMismatch Kind = "QUESTION_TEMPLATE_MISMATCH"

	// answer defects
	AnswerStartsContinuation Kind = "ANSWER_STARTS_WITH_CONTINUATION"
	AnswerLowContent         Kind = "ANSWER_LOW_CONTENT"
	AnswerTableDump          Kind = "ANSWER_TABLE_DUMP"
	AnswerTruncated          Kind = "ANSWER_TRUNCATED"
	AnswerSourceCopy         Kind = "ANSWER_IS_JUST_SOURCE_COPY"

	// source defects
	SourceTitleMeaningless Kind = "SOURCE_TITLE_MEANINGLESS"
	SourceLowContent       Kind = "SOURCE_LOW_CONTENT"

	// linguistic defects
	GrammarError Kind = "GRAMMAR_ERROR"

	// cross-entry defects
	DuplicateAnswer Kind = "DUPLICATE_ANSWER"
)

// Severity partitions kinds into hard rejections and advisory findings.
type Severity int

const (
	Warning Severity = iota
	Critical
)

// severityByKind is the static kind to severity table. Severity is a pure
// function of kind and never depends on entry content.
var severityByKind = map[Kind]Severity{
	QuestionEmpty:    Critical,
	AnswerEmpty:      Critical,
	NoSources:        Critical,
	QuestionTooShort: Warning,
	AnswerTooShort:   Warning,

	SourceMissing:      Critical,
	SourceTextMismatch: Critical,
	SourceTextEmpty:    Critical,

	AnswerQuestionDisconnect: Critical,
	AnswerTopicMismatch:      Critical,
	QuestionTopicNotOnPage:   Critical,
	SourceTitleNotInPage:     Warning,

	HTMLInAnswer:          Critical,
	HTMLInQuestion:        Critical,
	QuestionRawMarkdown:   Critical,
	AnswerEscapedMarkdown: Critical,

	FormContent:            Critical,
	ReferenceTable:         Critical,
	AnswerFormTemplateData: Critical,
	QuestionPlaceholder:    Critical,
	QuestionSpacedChars:    Critical,

	QuestionPastedContent:    Critical,
	QuestionContinuation:     Critical,
	QuestionQANumber:         Critical,
	QuestionVagueReference:   Critical,
	QuestionNonsenseVerb:     Critical,
	QuestionFakeRelation:     Critical,
	QuestionTemplateMismatch: Warning,

	AnswerStartsContinuation: Critical,
	AnswerLowContent:         Critical,
	AnswerTableDump:          Critical,
	AnswerTruncated:          Warning,
	AnswerSourceCopy:         Warning,

	SourceTitleMeaningless: Critical,
	SourceLowContent:       Critical,

	GrammarError: Critical,

	DuplicateAnswer: Critical,
}

// SeverityOf returns the severity for a kind. Unknown kinds are treated as
// warnings so that a taxonomy gap never silently rejects entries.
func SeverityOf(k Kind) Severity {
	if s, ok := severityByKind[k]; ok {
		return s
	}
	return Warning
}

// Issue is one finding: a kind plus an optional free-text diagnostic such
// as a match ratio or the failing page number.
type Issue struct {
	Kind   Kind
	Detail string
}

// New builds an issue without detail.
func New(k Kind) Issue {
	return Issue{Kind: k}
}

// Newf builds an issue carrying a diagnostic detail string.
func Newf(k Kind, detail string) Issue {
	return Issue{Kind: k, Detail: detail}
}

// Critical reports whether the issue's kind is a hard rejection.
func (i Issue) Critical() bool {
	return SeverityOf(i.Kind) == Critical
}

// String renders "KIND" or "KIND:detail", the serialized form used in
// rejection_reasons annotations and reports.
func (i Issue) String() string {
	if i.Detail == "" {
		return string(i.Kind)
	}
	return string(i.Kind) + ":" + i.Detail
}

// Parse splits a serialized issue back into kind and detail.
func Parse(s string) Issue {
	kind, detail, found := strings.Cut(s, ":")
	if !found {
		return Issue{Kind: Kind(s)}
	}
	return Issue{Kind: Kind(kind), Detail: detail}
}

// Strings serializes a slice of issues.
func Strings(issues []Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}

// Split partitions issues into critical findings and warnings.
func Split(issues []Issue) (critical, warnings []Issue) {
	for _, is := range issues {
		if is.Critical() {
			critical = append(critical, is)
		} else {
			warnings = append(warnings, is)
		}
	}
	return critical, warnings
}
