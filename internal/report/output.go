package report

import (
	"fmt"
	"io"

	"github.com/yacobolo/jsxcss"
)

// Format is the report output format
type Format string

const (
	// FormatIssues prints issues in golangci-lint format (default)
	FormatIssues Format = "issues"
	// FormatSummary prints statistics only
	FormatSummary Format = "summary"
	// FormatFull prints issues, statistics and changed files
	FormatFull Format = "full"
	// FormatJSON prints a machine readable report
	FormatJSON Format = "json"
	// FormatMarkdown prints a report for pull request comments
	FormatMarkdown Format = "markdown"
)

// DetermineFormat selects the output format from the flag value.
// Unknown values fall back to FormatIssues.
func DetermineFormat(formatFlag string, quiet bool) Format {
	if quiet {
		return FormatIssues
	}
	switch formatFlag {
	case "summary":
		return FormatSummary
	case "full":
		return FormatFull
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	}
	return FormatIssues
}

// Write renders result in the given format.
func Write(w io.Writer, result *jsxcss.ExtractRunResult, format Format, config Config) error {
	switch format {
	case FormatSummary:
		verbose := NewVerboseReporter(w, shouldUseColors(config))
		verbose.PrintStatistics(result)
		verbose.PrintExtractionProgress(result)
		verbose.PrintWarnings(result)

	case FormatFull:
		reporter := NewReporter(w, config)
		truncated := reporter.PrintIssues(result.Issues)
		reporter.PrintSummary(result, truncated)

		verbose := NewVerboseReporter(w, reporter.UseColors())
		verbose.PrintStatistics(result)
		verbose.PrintExtractionProgress(result)
		verbose.PrintFiles(result)
		verbose.PrintWarnings(result)

	case FormatJSON:
		if err := WriteJSON(w, result); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}

	case FormatMarkdown:
		if err := WriteMarkdown(w, result); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}

	default:
		reporter := NewReporter(w, config)
		truncated := reporter.PrintIssues(result.Issues)
		reporter.PrintSummary(result, truncated)
	}
	return nil
}
