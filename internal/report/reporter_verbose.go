package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yacobolo/jsxcss"
)

// VerboseReporter prints extraction statistics
type VerboseReporter struct {
	w         io.Writer
	useColors bool
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{
		w:         w,
		useColors: useColors,
	}
}

// PrintStatistics outputs file and element counts
func (r *VerboseReporter) PrintStatistics(result *jsxcss.ExtractRunResult) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Extraction Statistics", r.useColors))
	fmt.Fprintln(r.w, "---------------------")

	fmt.Fprintf(r.w, "Files Scanned:       %d\n", result.FilesScanned)
	fmt.Fprintf(r.w, "Files Skipped:       %d\n", result.FilesSkipped)
	fmt.Fprintf(r.w, "Files Changed:       %d\n", result.FilesChanged)
	fmt.Fprintf(r.w, "Files Written:       %d\n", result.FilesWritten)
	fmt.Fprintf(r.w, "Styled Elements:     %d\n", result.Stats.Elements)
	fmt.Fprintf(r.w, "Fully Extracted:     %d\n", result.Stats.Extracted)
	fmt.Fprintf(r.w, "Partially Extracted: %d\n", result.Stats.Partial)
	fmt.Fprintf(r.w, "Left to Runtime:     %d\n", result.Stats.Untouched)
	fmt.Fprintf(r.w, "css() Calls:         %d\n", result.Stats.Calls)
	fmt.Fprintf(r.w, "CSS Rules:           %d\n", result.Stats.Rules)
}

// PrintExtractionProgress shows the share of fully extracted elements
func (r *VerboseReporter) PrintExtractionProgress(result *jsxcss.ExtractRunResult) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Static Coverage", r.useColors))
	fmt.Fprintln(r.w, "---------------")
	printProgressBar(r.w, extractedPercentage(result.Stats))
}

// PrintFiles lists the files whose output changed
func (r *VerboseReporter) PrintFiles(result *jsxcss.ExtractRunResult) {
	var changed []jsxcss.FileResult
	for _, f := range result.Files {
		if f.Changed {
			changed = append(changed, f)
		}
	}
	if len(changed) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleGreen, "Changed Files", r.useColors))
	fmt.Fprintln(r.w, "-------------")
	for _, f := range changed {
		line := jsxcss.GetRelativePath(f.Path)
		if f.OutputPath != "" {
			line += " → " + jsxcss.GetRelativePath(f.OutputPath)
		}
		if f.CSSPath != "" {
			line += " (+" + jsxcss.GetRelativePath(f.CSSPath) + ")"
		}
		fmt.Fprintf(r.w, "%s  %d rule%s\n", line, f.Stats.Rules, pluralize(f.Stats.Rules))
	}
}

// PrintWarnings shows run-level warnings
func (r *VerboseReporter) PrintWarnings(result *jsxcss.ExtractRunResult) {
	if len(result.Warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, "Warnings", r.useColors))
	fmt.Fprintln(r.w, "-----------")

	for _, warning := range result.Warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}

// extractedPercentage is the share of styled elements that no longer need
// the runtime.
func extractedPercentage(stats jsxcss.Stats) float64 {
	if stats.Elements == 0 {
		return 100
	}
	return float64(stats.Extracted) / float64(stats.Elements) * 100
}

// printProgressBar renders a fixed-width bar
func printProgressBar(w io.Writer, percentage float64) {
	barWidth := 20
	filled := int(percentage / 100 * float64(barWidth))
	fmt.Fprintf(w, "[%s%s] %.1f%%\n",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
		percentage)
}

// pluralize returns "s" if count != 1
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
