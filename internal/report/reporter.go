// Package report renders extraction results for terminals, CI logs and
// machines.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/yacobolo/jsxcss"
)

// Config controls how results are rendered.
type Config struct {
	UseColors       bool // Force colors (default: auto-detect)
	PrintLines      bool // Show source lines with issues
	PrintLinterName bool // Show (jsxcss) suffix
	MaxIssues       int  // 0 = unlimited
	MaxSameIssues   int  // 0 = unlimited
}

// Reporter prints issues in golangci-lint format
type Reporter struct {
	w               io.Writer
	useColors       bool
	printLines      bool
	printLinterName bool
	maxIssues       int
	maxSameIssues   int
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, config Config) *Reporter {
	return &Reporter{
		w:               w,
		useColors:       shouldUseColors(config),
		printLines:      config.PrintLines,
		printLinterName: config.PrintLinterName,
		maxIssues:       config.MaxIssues,
		maxSameIssues:   config.MaxSameIssues,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(config Config) bool {
	if config.UseColors {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}
	return false
}

// sortIssues orders a copy of issues by file, line and column.
func sortIssues(issues []jsxcss.Issue) []jsxcss.Issue {
	sorted := make([]jsxcss.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pos.Filename != sorted[j].Pos.Filename {
			return sorted[i].Pos.Filename < sorted[j].Pos.Filename
		}
		if sorted[i].Pos.Line != sorted[j].Pos.Line {
			return sorted[i].Pos.Line < sorted[j].Pos.Line
		}
		return sorted[i].Pos.Column < sorted[j].Pos.Column
	})
	return sorted
}

// PrintIssues outputs issues sorted by position. It returns how many
// issues were left out by the issue limits.
func (r *Reporter) PrintIssues(issues []jsxcss.Issue) int {
	limited, truncated := limitIssues(sortIssues(issues), r.maxIssues, r.maxSameIssues)
	for _, issue := range limited {
		r.printIssue(issue)
	}
	return truncated
}

// limitIssues applies max-issues and max-same-issues constraints
func limitIssues(issues []jsxcss.Issue, maxIssues, maxSame int) ([]jsxcss.Issue, int) {
	originalCount := len(issues)

	// Apply max-same-issues first so repeats do not crowd out other messages
	if maxSame > 0 {
		issues = deduplicateSameIssues(issues, maxSame)
	}
	if maxIssues > 0 && len(issues) > maxIssues {
		issues = issues[:maxIssues]
	}

	return issues, originalCount - len(issues)
}

// deduplicateSameIssues limits how many times the same message appears
func deduplicateSameIssues(issues []jsxcss.Issue, maxSame int) []jsxcss.Issue {
	messageCounts := make(map[string]int)
	var filtered []jsxcss.Issue
	for _, issue := range issues {
		if messageCounts[issue.Text] < maxSame {
			filtered = append(filtered, issue)
			messageCounts[issue.Text]++
		}
	}
	return filtered
}

// printIssue formats a single issue in golangci-lint style
func (r *Reporter) printIssue(issue jsxcss.Issue) {
	// Format: file:line:col: message (linter)
	location := fmt.Sprintf("%s:%d:%d:", issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column)

	linterSuffix := ""
	if r.printLinterName {
		linterSuffix = fmt.Sprintf(" (%s)", issue.FromLinter)
	}

	text := issue.Text
	if issue.Severity == jsxcss.SeverityError {
		text = RenderStyle(StyleRed, "error: ", r.useColors) + text
	}
	fmt.Fprintf(r.w, "%s %s%s\n",
		RenderStyle(StyleCyan, location, r.useColors),
		text,
		RenderStyle(StyleGray, linterSuffix, r.useColors))

	if r.printLines && len(issue.SourceLines) > 0 {
		for _, line := range issue.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}
		caret := buildCaretIndicator(issue.SourceLines[0], issue.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator creates the "^" indicator aligned with the column.
// Tabs in the prefix are kept so the caret lines up in any tab width.
func buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}
	prefix := sourceLine[:prefixLen]

	var padding strings.Builder
	for _, ch := range prefix {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}
	return padding.String() + "^"
}

// PrintSummary outputs the issue count summary
func (r *Reporter) PrintSummary(result *jsxcss.ExtractRunResult, truncated int) {
	totalIssues := len(result.Issues)
	errors := result.ErrorCount()
	warnings := totalIssues - errors

	fmt.Fprintln(r.w, "")

	var breakdown []string
	if errors > 0 && warnings > 0 {
		breakdown = append(breakdown,
			pluralizeCount(errors, "error", "errors")+", "+pluralizeCount(warnings, "warning", "warnings"))
	}
	if truncated > 0 {
		breakdown = append(breakdown, pluralizeCount(truncated, "issue", "issues")+" truncated")
	}
	if len(breakdown) > 0 {
		fmt.Fprintf(r.w, "%s (%s):\n", pluralizeCount(totalIssues, "issue", "issues"), strings.Join(breakdown, "; "))
	} else {
		fmt.Fprintf(r.w, "%s:\n", pluralizeCount(totalIssues, "issue", "issues"))
	}

	linterCounts := make(map[string]int)
	for _, issue := range result.Issues {
		linterCounts[issue.FromLinter]++
	}
	linters := make([]string, 0, len(linterCounts))
	for linter := range linterCounts {
		linters = append(linters, linter)
	}
	sort.Strings(linters)
	for _, linter := range linters {
		fmt.Fprintf(r.w, "* %s: %d\n", linter, linterCounts[linter])
	}

	if totalIssues > 0 {
		fmt.Fprintln(r.w, "")
		fmt.Fprintln(r.w, RenderStyle(StyleGray, "Hint: Run with --output-format full to see extraction statistics", r.useColors))
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
