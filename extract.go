package jsxcss

import (
	"context"

	"github.com/yacobolo/jsxcss/internal/extract"
)

type (
	// ExtractOptions configures ExtractStyles.
	ExtractOptions = extract.Options
	// ExtractResult is the rewritten source of one file and its CSS.
	ExtractResult = extract.Result
	// Stats counts what happened to the styling usages of a file.
	Stats = extract.Stats
	// Diagnostic is a recoverable extraction problem.
	Diagnostic = extract.Diagnostic
	// CSSMode selects how extracted CSS reaches the bundle.
	CSSMode = extract.CSSMode
	// ModuleLoader resolves the exports of whitelisted modules.
	ModuleLoader = extract.ModuleLoader
)

const (
	CSSFile   = extract.CSSFile
	CSSInline = extract.CSSInline
	CSSNone   = extract.CSSNone
)

// ExtractStyles rewrites the styling components of one source file.
// fileName is used for diagnostics, source comments and the CSS file name;
// the file is never read.
func ExtractStyles(ctx context.Context, src []byte, fileName string, opts ExtractOptions) (*ExtractResult, error) {
	return extract.Extract(ctx, src, fileName, opts)
}
