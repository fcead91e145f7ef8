package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yacobolo/jsxcss"
)

// WriteMarkdown writes the run result as a Markdown report
func WriteMarkdown(w io.Writer, result *jsxcss.ExtractRunResult) error {
	bw := bufio.NewWriter(w)
	errors := result.ErrorCount()
	warnings := len(result.Issues) - errors
	coverage := extractedPercentage(result.Stats)

	fmt.Fprintln(bw, "# Style Extraction Report")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "## Executive Summary")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "| Metric | Value |")
	fmt.Fprintln(bw, "|--------|-------|")
	fmt.Fprintf(bw, "| **Status** | %s |\n", markdownStatus(errors, coverage))
	fmt.Fprintf(bw, "| **Total Issues** | %d (%d errors, %d warnings) |\n", len(result.Issues), errors, warnings)
	fmt.Fprintf(bw, "| **Files Scanned** | %d |\n", result.FilesScanned)
	fmt.Fprintf(bw, "| **Files Changed** | %d |\n", result.FilesChanged)
	fmt.Fprintf(bw, "| **Static Coverage** | %.1f%% |\n", coverage)
	fmt.Fprintf(bw, "| **CSS Rules** | %d |\n", result.Stats.Rules)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "## Elements")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "| Outcome | Count |")
	fmt.Fprintln(bw, "|---------|-------|")
	fmt.Fprintf(bw, "| Fully extracted | %d |\n", result.Stats.Extracted)
	fmt.Fprintf(bw, "| Partially extracted | %d |\n", result.Stats.Partial)
	fmt.Fprintf(bw, "| Left to runtime | %d |\n", result.Stats.Untouched)
	fmt.Fprintf(bw, "| css() calls | %d |\n", result.Stats.Calls)

	if len(result.Issues) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "## Issues")
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "| Location | Severity | Message |")
		fmt.Fprintln(bw, "|----------|----------|---------|")
		for _, issue := range sortIssues(result.Issues) {
			fmt.Fprintf(bw, "| `%s:%d:%d` | %s | %s |\n",
				issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column,
				issue.Severity, strings.ReplaceAll(issue.Text, "|", `\|`))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "## Warnings")
		fmt.Fprintln(bw)
		for _, warning := range result.Warnings {
			fmt.Fprintf(bw, "- %s\n", warning)
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "---")
	fmt.Fprintf(bw, "*Generated by %s*\n", jsxcss.LinterName)
	return bw.Flush()
}

// markdownStatus grades a run: errors always need attention, otherwise
// the static coverage decides.
func markdownStatus(errors int, coverage float64) string {
	switch {
	case errors > 0:
		return "🔴 Needs Attention"
	case coverage >= 80:
		return "🟢 Excellent"
	case coverage >= 50:
		return "🟡 Good Progress"
	}
	return "🔴 Needs Attention"
}
