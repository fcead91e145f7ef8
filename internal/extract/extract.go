package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/sheet"
	"github.com/yacobolo/jsxcss/internal/style"
)

// BoxAlias is the local name used when a runtime wrapper import has to be
// injected.
const BoxAlias = "__jsxcss_Box"

type extractor struct {
	ctx      context.Context
	opts     Options
	src      []byte
	fileName string
	log      *zap.Logger

	ed    *editor
	scope *scope
	eval  *jsast.Evaluator

	// components maps local bindings to component names.
	components map[string]string
	// namespaces are default and namespace imports of styling modules.
	namespaces    map[string]bool
	styleModule   string
	boxBinding    string
	needBox       bool
	lastImportEnd uint32

	entries  []Entry
	seenKeys map[string]bool
	result   *Result
}

// Extract rewrites the styling component usages of one source file.
//
// Files without a styling import are returned unchanged with empty CSS.
// Problems with individual elements are reported as diagnostics and
// leave that element to the runtime; they never fail the file.
func Extract(ctx context.Context, src []byte, fileName string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger.Named("extract")

	tree, err := jsast.Parse(ctx, src, fileName)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &SyntaxError{Location: jsast.Locate(fileName, firstError(root), src)}
	}

	x := &extractor{
		ctx:        ctx,
		opts:       opts,
		src:        src,
		fileName:   fileName,
		log:        log,
		ed:         newEditor(src),
		scope:      newScope(src, !opts.NoEvaluateVars),
		components: make(map[string]string),
		namespaces: make(map[string]bool),
		seenKeys:   make(map[string]bool),
		result:     &Result{JS: string(src)},
	}
	x.eval = x.scope.eval
	x.collectImports(root)

	if len(x.components) == 0 && len(x.namespaces) == 0 {
		return x.result, nil
	}

	x.walk(root)
	if err := x.finish(); err != nil {
		return nil, err
	}
	log.Debug("Extracted styles",
		zap.String("file", fileName),
		zap.Int("elements", x.result.Stats.Elements),
		zap.Int("rules", x.result.Stats.Rules))
	return x.result, nil
}

func firstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	jsast.Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return root
	}
	return found
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (x *extractor) collectImports(root *sitter.Node) {
	for _, stmt := range jsast.NamedChildren(root) {
		if stmt.Type() != "import_statement" {
			continue
		}
		if end := stmt.EndByte(); end > x.lastImportEnd {
			x.lastImportEnd = end
		}
		sourceNode := stmt.ChildByFieldName("source")
		if sourceNode == nil {
			continue
		}
		source, err := jsast.Unquote(sourceNode.Content(x.src))
		if err != nil {
			continue
		}
		bindings := importBindings(stmt, x.src)

		switch {
		case contains(x.opts.Modules, source):
			if x.styleModule == "" {
				x.styleModule = source
			}
			for _, b := range bindings {
				switch {
				case b.namespace:
					x.namespaces[b.local] = true
					if x.boxBinding == "" {
						x.boxBinding = b.local + ".Box"
					}
				case isKnown(b.imported):
					x.components[b.local] = b.imported
					if b.imported == "Box" {
						x.boxBinding = b.local
					}
				}
			}
		case contains(x.opts.WhitelistedModules, source):
			x.bindModule(stmt, source, bindings)
		default:
			for _, b := range bindings {
				x.scope.imported[b.local] = true
			}
		}
	}
}

func (x *extractor) bindModule(stmt *sitter.Node, source string, bindings []importBinding) {
	for _, b := range bindings {
		x.scope.imported[b.local] = true
	}
	if x.opts.Loader == nil {
		x.report(SeverityWarning, stmt, "no module loader configured for whitelisted module %q", source)
		return
	}
	exports, err := x.opts.Loader.Load(x.ctx, source, x.fileName)
	if err != nil {
		x.report(SeverityWarning, stmt, "could not evaluate whitelisted module %q: %v", source, err)
		return
	}
	for _, b := range bindings {
		switch {
		case b.namespace && b.imported == "*":
			x.scope.modules[b.local] = exports
		case b.namespace:
			if v, ok := exports.Get("default"); ok {
				x.scope.modules[b.local] = v
			}
		default:
			if v, ok := exports.Get(b.imported); ok {
				x.scope.modules[b.local] = v
			}
		}
	}
}

type importBinding struct {
	local    string
	imported string
	// namespace marks default ("default") and namespace ("*") imports.
	namespace bool
}

func importBindings(stmt *sitter.Node, src []byte) []importBinding {
	var out []importBinding
	for _, clause := range jsast.NamedChildren(stmt) {
		if clause.Type() != "import_clause" {
			continue
		}
		for _, c := range jsast.NamedChildren(clause) {
			switch c.Type() {
			case "identifier":
				out = append(out, importBinding{local: c.Content(src), imported: "default", namespace: true})
			case "namespace_import":
				for _, id := range jsast.NamedChildren(c) {
					if id.Type() == "identifier" {
						out = append(out, importBinding{local: id.Content(src), imported: "*", namespace: true})
					}
				}
			case "named_imports":
				for _, spec := range jsast.NamedChildren(c) {
					if spec.Type() != "import_specifier" {
						continue
					}
					name := spec.ChildByFieldName("name")
					if name == nil {
						continue
					}
					imported := importName(name, src)
					local := imported
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = alias.Content(src)
					}
					out = append(out, importBinding{local: local, imported: imported})
				}
			}
		}
	}
	return out
}

func importName(n *sitter.Node, src []byte) string {
	if n.Type() == "string" {
		if s, err := jsast.Unquote(n.Content(src)); err == nil {
			return s
		}
	}
	return n.Content(src)
}

// resolveComponent maps a JSX name or callee to a styling component,
// following import bindings rather than literal names.
func (x *extractor) resolveComponent(name *sitter.Node) (string, bool) {
	text := name.Content(x.src)
	if c, ok := x.components[text]; ok && !x.scope.shadowed(text, name) {
		return c, true
	}
	if ns, member, ok := strings.Cut(text, "."); ok && x.namespaces[ns] && isKnown(member) && !x.scope.shadowed(ns, name) {
		return member, true
	}
	return "", false
}

// walk visits the tree post-order so nested rewrites exist before the
// enclosing element copies their text.
func (x *extractor) walk(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		x.walk(n.NamedChild(i))
	}
	switch n.Type() {
	case "jsx_element":
		open := n.ChildByFieldName("open_tag")
		if open == nil {
			open = childOfType(n, "jsx_opening_element")
		}
		closing := n.ChildByFieldName("close_tag")
		if closing == nil {
			closing = childOfType(n, "jsx_closing_element")
		}
		if open != nil {
			x.guard(open, func() { x.element(open, closing) })
		}
	case "jsx_self_closing_element":
		x.guard(n, func() { x.element(n, nil) })
	case "call_expression":
		x.guard(n, func() { x.call(n) })
	}
}

// guard runs one rewrite and turns a panic into an error diagnostic. The
// edits, rules and counters recorded by the failed rewrite are dropped so
// the node keeps its source text.
func (x *extractor) guard(n *sitter.Node, rewrite func()) {
	edits := len(x.ed.edits)
	consumed := make([]bool, edits)
	for i, ed := range x.ed.edits {
		consumed[i] = ed.consumed
	}
	entries := len(x.entries)
	stats := x.result.Stats
	needBox, boxBinding := x.needBox, x.boxBinding

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		x.ed.edits = x.ed.edits[:edits]
		for i, ed := range x.ed.edits {
			ed.consumed = consumed[i]
		}
		for _, e := range x.entries[entries:] {
			delete(x.seenKeys, e.Key)
		}
		x.entries = x.entries[:entries]
		x.result.Stats = stats
		x.needBox, x.boxBinding = needBox, boxBinding
		x.report(SeverityError, n, "internal error: %v; element left unchanged", r)
	}()
	rewrite()
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, c := range jsast.NamedChildren(n) {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func (x *extractor) report(sev Severity, node *sitter.Node, format string, args ...any) {
	if x.opts.WarningsAsErrors {
		sev = SeverityError
	}
	d := Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Location: jsast.Locate(x.fileName, node, x.src),
	}
	x.result.Diagnostics = append(x.result.Diagnostics, d)

	fields := []zap.Field{zap.String("location", d.Location.String()), zap.String("snippet", d.Location.Snippet)}
	if sev == SeverityError {
		x.log.Error(d.Message, fields...)
	} else {
		x.log.Warn(d.Message, fields...)
	}
	if x.opts.Report != nil {
		x.opts.Report(d)
	}
}

// classesFor runs the shared style pipeline over props, records the rules
// and returns the class names.
func (x *extractor) classesFor(props style.Props, mqs []style.MediaQuery, comment string) string {
	if len(props) == 0 {
		return ""
	}
	parsed, _ := style.Classify(props, x.opts.ClassNamePropKey, mqs)
	built := style.Build(parsed, nil, x.opts.ClassNamePropKey, style.BuildOptions{
		ClassName: x.opts.ClassName,
		Logger:    x.log,
	})
	for _, rule := range built.Rules {
		x.addRule(rule, comment)
	}
	return built.ClassNameString()
}

func (x *extractor) addRule(rule style.Rule, comment string) {
	if x.seenKeys[rule.Key] {
		return
	}
	x.seenKeys[rule.Key] = true
	if err := sheet.Validate(rule.Text); err != nil {
		x.log.Warn("Dropping invalid rule", zap.String("rule", rule.Text), zap.Error(err))
		return
	}
	text := rule.Text
	if x.opts.Pretty {
		text = sheet.Format(text)
	}
	x.entries = append(x.entries, Entry{
		Key:           rule.Key,
		ClassName:     rule.ClassName,
		Rule:          text,
		SourceComment: comment,
	})
}

func (x *extractor) finish() error {
	res := x.result
	res.Entries = x.entries
	res.Stats.Rules = len(x.entries)
	res.CSS = renderCSS(x.entries)

	var imports []string
	if x.needBox {
		imports = append(imports, fmt.Sprintf("import { Box as %s } from %s;", BoxAlias, quoteJS(x.styleModule)))
	}
	if res.CSS != "" {
		switch x.opts.CSSMode {
		case CSSFile:
			res.CSSFileName = CSSFileName(x.fileName)
			imports = append(imports, fmt.Sprintf("import %s;", quoteJS("./"+res.CSSFileName)))
		case CSSInline:
			url := "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte(res.CSS))
			imports = append(imports, fmt.Sprintf("import %s;", quoteJS(url)))
		}
	}
	if len(imports) > 0 {
		x.ed.insert(x.lastImportEnd, "\n"+strings.Join(imports, "\n"))
	}

	if !x.ed.changed() {
		return nil
	}
	chunks := x.ed.chunks()
	res.JS = joinChunks(chunks)
	if x.opts.SourceMap {
		m, err := buildSourceMap(chunks, x.src, filepath.ToSlash(x.fileName), path.Base(filepath.ToSlash(x.fileName)))
		if err != nil {
			return fmt.Errorf("source map for %s: %w", x.fileName, err)
		}
		res.Map = m
	}
	return nil
}

// CSSFileName names the stylesheet extracted from fileName.
func CSSFileName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + CSSFileSuffix
}

func renderCSS(entries []Entry) string {
	var b strings.Builder
	last := ""
	for _, e := range entries {
		if e.SourceComment != last {
			b.WriteString("/* ")
			b.WriteString(e.SourceComment)
			b.WriteString(" */\n")
			last = e.SourceComment
		}
		b.WriteString(e.Rule)
		b.WriteByte('\n')
	}
	return b.String()
}
