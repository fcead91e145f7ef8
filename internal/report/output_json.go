package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yacobolo/jsxcss"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Stats     JSONStats   `json:"stats"`
	Files     []JSONFile  `json:"files"`
	Issues    []JSONIssue `json:"issues"`
	Warnings  []string    `json:"warnings"`
}

// JSONSummary contains high-level counts
type JSONSummary struct {
	TotalIssues     int `json:"total_issues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	FilesDiscovered int `json:"files_discovered"`
	FilesScanned    int `json:"files_scanned"`
	FilesSkipped    int `json:"files_skipped"`
	FilesChanged    int `json:"files_changed"`
	FilesWritten    int `json:"files_written"`
}

// JSONStats contains element statistics
type JSONStats struct {
	Elements            int     `json:"elements"`
	Extracted           int     `json:"extracted"`
	Partial             int     `json:"partial"`
	Untouched           int     `json:"untouched"`
	Calls               int     `json:"calls"`
	Rules               int     `json:"rules"`
	ExtractedPercentage float64 `json:"extracted_percentage"`
}

// JSONFile describes one processed source file
type JSONFile struct {
	Path    string `json:"path"`
	Output  string `json:"output,omitempty"`
	CSS     string `json:"css,omitempty"`
	Changed bool   `json:"changed"`
	Rules   int    `json:"rules"`
}

// JSONIssue represents a single extraction issue
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Linter   string `json:"linter"`
	Source   string `json:"source,omitempty"` // Optional source line
}

// WriteJSON writes the run result as JSON
func WriteJSON(w io.Writer, result *jsxcss.ExtractRunResult) error {
	output := buildJSONOutput(result)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts ExtractRunResult to JSONOutput
func buildJSONOutput(result *jsxcss.ExtractRunResult) JSONOutput {
	errors := result.ErrorCount()

	jsonIssues := make([]JSONIssue, 0, len(result.Issues))
	for _, issue := range sortIssues(result.Issues) {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		jsonIssues = append(jsonIssues, JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Linter:   issue.FromLinter,
			Source:   source,
		})
	}

	files := make([]JSONFile, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, JSONFile{
			Path:    f.Path,
			Output:  f.OutputPath,
			CSS:     f.CSSPath,
			Changed: f.Changed,
			Rules:   f.Stats.Rules,
		})
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: time.Now().Format(time.RFC3339),
		Summary: JSONSummary{
			TotalIssues:     len(result.Issues),
			Errors:          errors,
			Warnings:        len(result.Issues) - errors,
			FilesDiscovered: result.FilesDiscovered,
			FilesScanned:    result.FilesScanned,
			FilesSkipped:    result.FilesSkipped,
			FilesChanged:    result.FilesChanged,
			FilesWritten:    result.FilesWritten,
		},
		Stats: JSONStats{
			Elements:            result.Stats.Elements,
			Extracted:           result.Stats.Extracted,
			Partial:             result.Stats.Partial,
			Untouched:           result.Stats.Untouched,
			Calls:               result.Stats.Calls,
			Rules:               result.Stats.Rules,
			ExtractedPercentage: extractedPercentage(result.Stats),
		},
		Files:    files,
		Issues:   jsonIssues,
		Warnings: warnings,
	}
}
