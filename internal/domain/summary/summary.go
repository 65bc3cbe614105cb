package summary

import "strings"

// Summary is the optional narrative over the top-ranked items.
// Both fields are absent when summarization was skipped or failed.
type Summary struct {
	answer string
	report string
}

// New creates a Summary; blank fields are treated as absent.
func New(answer, report string) Summary {
	return Summary{answer: strings.TrimSpace(answer), report: strings.TrimSpace(report)}
}

// Empty returns a Summary with both fields absent.
func Empty() Summary { return Summary{} }

// Answer returns the short answer, if present.
func (s Summary) Answer() (string, bool) { return s.answer, s.answer != "" }

// Report returns the long-form report, if present.
func (s Summary) Report() (string, bool) { return s.report, s.report != "" }

// IsEmpty reports whether neither field is present.
func (s Summary) IsEmpty() bool { return s.answer == "" && s.report == "" }

// Completion is one summarizer response with its token usage.
type Completion struct {
	Answer       string
	Report       string
	PromptTokens int
	TotalTokens  int
}

// Summary converts the completion into a Summary.
func (c Completion) Summary() Summary { return New(c.Answer, c.Report) }
