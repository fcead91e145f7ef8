// Package extract statically evaluates style props in JSX sources, moves
// the resulting CSS into a stylesheet and rewrites the elements to plain
// DOM elements carrying precomputed class names.
package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/style"
)

// ErrSyntax is returned for sources the parser cannot make sense of.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports where a source file failed to parse.
type SyntaxError struct {
	Location jsast.Location
}

func (e *SyntaxError) Error() string {
	return "syntax error at " + e.Location.String()
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// CSSMode selects how extracted CSS reaches the bundle.
type CSSMode string

const (
	// CSSFile imports a sibling stylesheet named by Result.CSSFileName.
	CSSFile CSSMode = "file"
	// CSSInline imports the stylesheet as a data URL.
	CSSInline CSSMode = "inline"
	// CSSNone returns the CSS without touching the imports.
	CSSNone CSSMode = "none"
)

// DefaultModules are the import sources whose exports are styling components.
var DefaultModules = []string{"jsxstyle"}

// CSSFileSuffix is appended to the source base name to name the stylesheet.
const CSSFileSuffix = "__jsxstyle.css"

// Severity of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic reports a construct that was left for the runtime.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location jsast.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// ModuleLoader resolves the static exports of a whitelisted module.
type ModuleLoader interface {
	Load(ctx context.Context, specifier, importer string) (style.Props, error)
}

// Options configures Extract. The zero value is usable.
type Options struct {
	// Modules lists import sources providing styling components.
	Modules []string
	// ClassNamePropKey defaults to "className".
	ClassNamePropKey string
	// ClassName maps a style key to a class name; defaults to the content hash.
	ClassName style.ClassNameFunc
	// MediaQueries are available as prop prefixes on every element.
	MediaQueries []style.MediaQuery
	CSSMode      CSSMode
	// WhitelistedModules are import sources whose exports may be evaluated.
	WhitelistedModules []string
	Loader             ModuleLoader
	// NoEvaluateVars treats local const bindings as dynamic.
	NoEvaluateVars bool
	// WarningsAsErrors reports every diagnostic as an error.
	WarningsAsErrors bool
	// Pretty formats extracted rules over multiple lines.
	Pretty bool
	// SourceMap requests a source map for the rewritten JS.
	SourceMap bool
	// Report receives every diagnostic as it is raised.
	Report func(Diagnostic)
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Modules) == 0 {
		o.Modules = DefaultModules
	}
	if o.ClassNamePropKey == "" {
		o.ClassNamePropKey = "className"
	}
	if o.ClassName == nil {
		o.ClassName = style.HashClassName
	}
	if o.CSSMode == "" {
		o.CSSMode = CSSFile
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Entry is one extracted rule, in stylesheet order.
type Entry struct {
	Key           string
	ClassName     string
	Rule          string
	SourceComment string
}

// Stats counts what happened to the styling usages of a file.
type Stats struct {
	// Elements is the number of styling component usages.
	Elements int
	// Extracted elements became plain DOM elements.
	Extracted int
	// Partial elements kept a runtime wrapper for their dynamic props.
	Partial int
	// Untouched elements were left as written.
	Untouched int
	// Calls is the number of css() calls replaced with a class string.
	Calls int
	// Rules is the number of distinct rules in the stylesheet.
	Rules int
}

// Add accumulates s2 into s.
func (s *Stats) Add(s2 Stats) {
	s.Elements += s2.Elements
	s.Extracted += s2.Extracted
	s.Partial += s2.Partial
	s.Untouched += s2.Untouched
	s.Calls += s2.Calls
	s.Rules += s2.Rules
}

// Result of extracting a single file.
type Result struct {
	JS          string
	CSS         string
	CSSFileName string
	// Map is a version 3 source map, set when Options.SourceMap is true.
	Map         string
	Entries     []Entry
	Stats       Stats
	Diagnostics []Diagnostic
}
