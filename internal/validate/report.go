// report.go defines the validation report and its issue classification.
//
// Separated from validator.go so that consumers (CLI output, MCP tools, the
// publish gate) depend only on the report shape, not on how it is produced.
//
// Design: Errors and Warnings are plain ordered strings because that is what
// operators read. Issues carries the same findings in structured form for
// JSON output and tests; every message in Errors or Warnings has exactly one
// Issue.

package validate

import "fmt"

// Severity classifies an issue.
type Severity string

const (
	// SeverityError marks defects that break navigation. Any error blocks
	// publication.
	SeverityError Severity = "error"
	// SeverityWarning marks cosmetic or auxiliary defects.
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeMissingKey           = "missing-key"
	CodeMalformed            = "malformed"
	CodeNoSteps              = "no-steps"
	CodeEmptyID              = "empty-id"
	CodeDuplicateID          = "duplicate-id"
	CodeMalformedTransitions = "malformed-transitions"
	CodeCorruptText          = "corrupt-text"
	CodeMissingImage         = "missing-image"
	CodeMissingSupplementary = "missing-supplementary"
	CodeCheckFailed          = "check-failed"
	CodeMissingStart         = "missing-start"
	CodeDanglingTransition   = "dangling-transition"
	CodeMissingTarget        = "missing-target"
	CodeUnreachable          = "unreachable"
)

// Exit codes for command-line wrappers.
const (
	ExitOK         = 0
	ExitContent    = 1
	ExitStructural = 2
)

// Issue is a single finding.
type Issue struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Step       string   `json:"step,omitempty"`
	Field      string   `json:"field,omitempty"`
	Target     string   `json:"target,omitempty"`
	Matches    []string `json:"matches,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Message    string   `json:"message"`
}

// Report is the outcome of validating one document.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Issues   []Issue  `json:"issues"`

	// Structural is set when the document could not be modelled at all.
	Structural bool `json:"structural,omitempty"`
}

func newReport() *Report {
	return &Report{Errors: []string{}, Warnings: []string{}, Issues: []Issue{}}
}

// OK reports whether there are no errors. Warnings do not count.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// ExitCode maps the report onto the command-line convention: 0 when there
// are no errors, 2 for structural failures, 1 otherwise.
func (r *Report) ExitCode() int {
	switch {
	case r.Structural:
		return ExitStructural
	case len(r.Errors) > 0:
		return ExitContent
	default:
		return ExitOK
	}
}

// Count returns the number of issues with the given code.
func (r *Report) Count(code string) int {
	n := 0
	for _, is := range r.Issues {
		if is.Code == code {
			n++
		}
	}
	return n
}

func (r *Report) add(is Issue) {
	switch is.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, is.Message)
	default:
		is.Severity = SeverityWarning
		r.Warnings = append(r.Warnings, is.Message)
	}
	r.Issues = append(r.Issues, is)
}

func (r *Report) errorf(is Issue, format string, args ...any) {
	is.Severity = SeverityError
	is.Message = fmt.Sprintf(format, args...)
	r.add(is)
}

func (r *Report) warnf(is Issue, format string, args ...any) {
	is.Severity = SeverityWarning
	is.Message = fmt.Sprintf(format, args...)
	r.add(is)
}
