package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss"
	"github.com/yacobolo/jsxcss/internal/report"
)

// errExtractFailed signals a non-zero exit after the report was printed.
var errExtractFailed = errors.New("extraction reported errors")

var extractCmd = &cobra.Command{
	Use:     "extract",
	Aliases: []string{"x"},
	Short:   "Extract static styles from JSX sources",
	Long: `Rewrite jsxstyle elements whose props are known at build time into
plain elements with class names, and write the extracted CSS next to
each rewritten file.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("source", "src", "Source directory")
	f.StringSlice("include", jsxcss.DefaultIncludes, "Glob patterns for source files to include")
	f.String("output-dir", "", "Directory receiving rewritten sources (empty: report only)")
	f.StringSlice("modules", nil, "Import sources providing styling components (default: jsxstyle)")
	f.String("css-mode", "file", "How CSS is imported: file|inline|none")
	f.String("class-names", "hash", "Class name strategy: hash|counter")
	f.String("class-name-prop", "className", "Prop receiving class names")
	f.StringSlice("whitelist", nil, "Modules whose exports may be evaluated")
	f.StringSlice("media-query", nil, "Media query prefix as name=query (repeatable)")
	f.Bool("evaluate-vars", true, "Evaluate local const bindings")
	f.Bool("warnings-as-errors", false, "Report every warning as an error")
	f.Bool("pretty", false, "Format extracted rules over multiple lines")
	f.Bool("source-map", false, "Write source maps for rewritten files")
	f.Int("concurrency", 0, "Files processed in parallel (0 = GOMAXPROCS)")
	f.Bool("strict", false, "Exit 1 on any issue (CI mode)")
	f.String("output-format", "", "Output format: issues|summary|full|json|markdown")
	f.Int("max-issues", 0, "Max issues to show (0=unlimited)")
	f.Int("max-same-issues", 0, "Max repeated issues to show (0=unlimited)")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-linter-name", true, "Show (jsxcss) suffix on issues")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config, err := buildExtractConfig(log)
	if err != nil {
		return err
	}

	result, runErr := jsxcss.ExtractFiles(cmd.Context(), config)
	if result == nil {
		return fmt.Errorf("extraction failed: %w", runErr)
	}
	if runErr != nil {
		// Per-file failures are listed as warnings in the report.
		log.Warn("Some files were not written", zap.Error(runErr))
	}

	quiet := getBoolWithFallback("quiet", "quiet", false)
	outputFormat := getStringWithFallback("output-format", "extract.output-format", "")
	format := report.DetermineFormat(outputFormat, quiet)

	if !quiet {
		if err := report.Write(cmd.OutOrStdout(), result, format, buildReportConfig()); err != nil {
			return err
		}
	}

	// Exit code logic - "Soft Gate" approach
	strict := getBoolWithFallback("strict", "extract.strict", false)
	switch {
	case strict && len(result.Issues) > 0:
		return errExtractFailed
	case result.ErrorCount() > 0 || runErr != nil:
		return errExtractFailed
	}

	if !quiet && format == report.FormatIssues && config.OutputDir != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d files to %s\n", result.FilesWritten, config.OutputDir)
	}
	return nil
}
