package jsxcss

import (
	"errors"

	"github.com/yacobolo/jsxcss/internal/extract"
)

// Issue represents a single extraction diagnostic in golangci-lint format
type Issue struct {
	FromLinter  string   `json:"FromLinter"`  // "jsxcss"
	Text        string   `json:"Text"`        // "spread of unknown shape; props before it are left to the runtime"
	Severity    string   `json:"Severity"`    // "warning", "error"
	SourceLines []string `json:"SourceLines"` // Lines of code with issue
	Pos         IssuePos `json:"Pos"`         // File location
}

// IssuePos specifies the exact location of an issue
type IssuePos struct {
	Filename string `json:"Filename"` // "src/components/Card.jsx"
	Line     int    `json:"Line"`     // 35
	Column   int    `json:"Column"`   // 15 (1-based)
}

// IssueSeverity constants
const (
	SeverityError   = string(extract.SeverityError)
	SeverityWarning = string(extract.SeverityWarning)
)

// LinterName is reported as Issue.FromLinter.
const LinterName = "jsxcss"

// IssueFromDiagnostic converts an extractor diagnostic.
func IssueFromDiagnostic(d extract.Diagnostic) Issue {
	issue := Issue{
		FromLinter: LinterName,
		Text:       d.Message,
		Severity:   string(d.Severity),
		Pos: IssuePos{
			Filename: d.Location.File,
			Line:     d.Location.Line,
			Column:   d.Location.Column,
		},
	}
	if d.Location.Snippet != "" {
		issue.SourceLines = []string{d.Location.Snippet}
	}
	return issue
}

// issueFromError reports a file that could not be extracted at all.
func issueFromError(file string, err error) Issue {
	issue := Issue{
		FromLinter: LinterName,
		Text:       err.Error(),
		Severity:   SeverityError,
		Pos:        IssuePos{Filename: file},
	}
	var syntaxErr *extract.SyntaxError
	if errors.As(err, &syntaxErr) {
		issue.Text = "syntax error, file left unchanged"
		issue.Pos.Line = syntaxErr.Location.Line
		issue.Pos.Column = syntaxErr.Location.Column
		if syntaxErr.Location.Snippet != "" {
			issue.SourceLines = []string{syntaxErr.Location.Snippet}
		}
	}
	return issue
}
