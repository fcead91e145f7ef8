package extract

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/style"
)

type attrKind int

const (
	attrStatic attrKind = iota
	attrDynamic
	// attrConditional is a ternary or && whose branches are static.
	attrConditional
)

type attr struct {
	name  string
	kind  attrKind
	value any
	bare  bool
	// node is the whole attribute, copied as written when it stays dynamic.
	node *sitter.Node
	expr *sitter.Node

	cond, cons, alt *sitter.Node
}

// element rewrites one styling component usage. open is the opening or
// self-closing element, closing is nil for self-closing elements.
func (x *extractor) element(open, closing *sitter.Node) {
	nameNode := open.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	component, ok := x.resolveComponent(nameNode)
	if !ok || component == CSSFunction {
		return
	}
	x.result.Stats.Elements++

	nodes := attributeNodes(open)

	// Props written before the last spread of unknown shape may be
	// overridden by it, so they are kept as written.
	last := -1
	flattened := make(map[nodeKey]style.Props)
	for i, n := range nodes {
		arg := spreadArgument(n)
		if arg == nil {
			continue
		}
		if props, ok := x.staticSpread(arg); ok {
			flattened[keyOf(n)] = props
			continue
		}
		last = i
	}

	items := x.readAttributes(nodes[last+1:], flattened)

	mqs := x.opts.MediaQueries
	for _, it := range items {
		if it.name != "mediaQueries" {
			continue
		}
		props, ok := it.value.(style.Props)
		if it.kind != attrStatic || !ok {
			x.report(SeverityWarning, it.node, "mediaQueries is not static; %s left to the runtime", component)
			x.result.Stats.Untouched++
			return
		}
		mqs = append(append([]style.MediaQuery(nil), mqs...), style.MediaQueriesFromProps(props)...)
	}

	// Copying text consumes nested rewrites, so it happens only once the
	// element is known to be rewritten.
	var out []string
	for _, n := range nodes[:last+1] {
		out = append(out, x.ed.slice(n.StartByte(), n.EndByte()))
	}
	partial := last >= 0

	line := int(open.StartPoint().Row) + 1
	comment := fmt.Sprintf("%s:%d (%s)", x.fileName, line, component)
	classKey := x.opts.ClassNamePropKey

	var (
		tag          = "div"
		tagExpr      bool
		tagVerbatim  bool
		staticStyle  = componentDefaults[component].Clone()
		staticClass  string
		conditionals []string
	)

	for _, it := range items {
		switch {
		case it.name == "mediaQueries":

		case it.name == "component":
			switch t, isExpr, ok := x.componentTag(it); {
			case ok:
				tag, tagExpr = t, isExpr
			default:
				x.report(SeverityWarning, it.node, "ambiguous component prop on %s; element keeps its runtime wrapper", component)
				partial = true
				tagVerbatim = true
				out = append(out, x.ed.slice(it.node.StartByte(), it.node.EndByte()))
			}

		case it.name == "props":
			props, ok := it.value.(style.Props)
			if it.kind != attrStatic || (!ok && it.value != nil) {
				x.report(SeverityWarning, it.node, "props of %s is not a static object; element keeps its runtime wrapper", component)
				partial = true
				out = append(out, x.verbatim(it))
				continue
			}
			for _, p := range props {
				if p.Key == classKey {
					if s, ok := p.Value.(string); ok {
						staticClass = joinClasses(staticClass, s)
					}
					continue
				}
				if p.Value == nil || p.Value == false {
					continue
				}
				out = append(out, renderAttribute(p.Key, p.Value, false))
			}

		case it.name == classKey:
			switch {
			case it.kind == attrStatic:
				if s, ok := it.value.(string); ok {
					staticClass = joinClasses(staticClass, s)
				} else if it.value != nil && it.value != false {
					staticClass = joinClasses(staticClass, jsast.ToString(it.value))
				}
			case it.expr != nil:
				conditionals = append(conditionals, "("+x.ed.slice(it.expr.StartByte(), it.expr.EndByte())+")")
			default:
				partial = true
				out = append(out, x.verbatim(it))
			}

		case style.IsPassthrough(it.name, classKey):
			if it.kind == attrStatic {
				out = append(out, renderAttribute(it.name, it.value, it.bare))
				continue
			}
			out = append(out, x.verbatim(it))

		default:
			switch it.kind {
			case attrStatic:
				staticStyle = append(staticStyle, style.Prop{Key: it.name, Value: it.value})
			case attrConditional:
				conditionals = append(conditionals, x.conditionalClass(it, mqs, comment))
			default:
				partial = true
				out = append(out, x.verbatim(it))
			}
		}
	}

	classes := joinClasses(staticClass, x.classesFor(staticStyle, mqs, comment))

	newTag := tag
	if partial {
		newTag = x.box()
		if !tagVerbatim && tag != "div" {
			if tagExpr {
				out = append(out, "component={"+tag+"}")
			} else {
				out = append(out, `component="`+tag+`"`)
			}
		}
		x.result.Stats.Partial++
	} else {
		x.result.Stats.Extracted++
	}

	if expr, isExpr := classExpression(classes, conditionals); isExpr {
		out = append(out, classKey+"={"+expr+"}")
	} else if classes != "" {
		out = append(out, classKey+"="+quoteAttr(classes))
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(newTag)
	for _, a := range out {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	if closing == nil {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	x.ed.replace(open.StartByte(), open.EndByte(), b.String())
	if closing != nil {
		x.ed.replace(closing.StartByte(), closing.EndByte(), "</"+newTag+">")
	}
}

func quoteAttr(s string) string {
	if strings.ContainsAny(s, "\"\n\r{}<>&") {
		return "{" + quoteJS(s) + "}"
	}
	return `"` + s + `"`
}

func renderAttribute(name string, v any, bare bool) string {
	if bare {
		return name
	}
	if !attrNameRe.MatchString(name) {
		return "{..." + literal(style.Props{{Key: name, Value: v}}) + "}"
	}
	return attribute(name, v)
}

// verbatim copies an attribute as written, with nested rewrites applied.
func (x *extractor) verbatim(it attr) string {
	return x.ed.slice(it.node.StartByte(), it.node.EndByte())
}

// componentTag resolves the element a component prop renders. Strings must
// be DOM tag names and expressions must be capitalised identifiers or
// member expressions, so the rewritten JSX means the same thing.
func (x *extractor) componentTag(it attr) (string, bool, bool) {
	if it.kind == attrStatic {
		s, ok := it.value.(string)
		if ok && tagNameRe.MatchString(s) {
			return s, false, true
		}
		return "", false, false
	}
	if it.kind != attrDynamic || it.expr == nil {
		return "", false, false
	}
	expr := jsast.Unwrap(it.expr)
	text := expr.Content(x.src)
	switch expr.Type() {
	case "identifier":
		if r := []rune(text); len(r) > 0 && unicode.IsUpper(r[0]) {
			return text, true, true
		}
	case "member_expression":
		if identifierRe.MatchString(strings.ReplaceAll(text, ".", "_")) {
			return text, true, true
		}
	}
	return "", false, false
}

func (x *extractor) box() string {
	if x.boxBinding == "" {
		x.boxBinding = BoxAlias
		x.needBox = true
	}
	return x.boxBinding
}

func attributeNodes(open *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range jsast.NamedChildren(open) {
		switch c.Type() {
		case "jsx_attribute", "jsx_expression":
			out = append(out, c)
		}
	}
	return out
}

// spreadArgument returns x for a {...x} attribute.
func spreadArgument(n *sitter.Node) *sitter.Node {
	if n.Type() != "jsx_expression" {
		return nil
	}
	for _, c := range jsast.NamedChildren(n) {
		if c.Type() == "spread_element" {
			return c.NamedChild(0)
		}
	}
	return nil
}

func (x *extractor) staticSpread(arg *sitter.Node) (style.Props, bool) {
	if !x.eval.CanEvaluate(arg) {
		x.report(SeverityWarning, arg, "spread of unknown shape; props before it are left to the runtime")
		return nil, false
	}
	v, err := x.eval.Evaluate(arg)
	if err != nil {
		x.report(SeverityWarning, arg, "could not evaluate spread: %v", err)
		return nil, false
	}
	switch t := v.(type) {
	case nil:
		return nil, true
	case style.Props:
		return t, true
	}
	x.report(SeverityWarning, arg, "unhandled spread target %s", jsast.ToString(v))
	return nil, false
}

func firstExpression(n *sitter.Node) *sitter.Node {
	for _, c := range jsast.NamedChildren(n) {
		if c.Type() != "comment" {
			return c
		}
	}
	return nil
}

func (x *extractor) readAttributes(nodes []*sitter.Node, flattened map[nodeKey]style.Props) []attr {
	var items []attr
	for _, n := range nodes {
		switch n.Type() {
		case "jsx_expression":
			for _, p := range flattened[keyOf(n)] {
				items = append(items, attr{name: p.Key, kind: attrStatic, value: p.Value, node: n})
			}
		case "jsx_attribute":
			items = append(items, x.readAttribute(n))
		}
	}

	// the last occurrence of a prop wins
	lastIndex := make(map[string]int, len(items))
	for i, it := range items {
		lastIndex[it.name] = i
	}
	out := items[:0]
	for i, it := range items {
		if lastIndex[it.name] == i {
			out = append(out, it)
		}
	}
	return out
}

func (x *extractor) readAttribute(n *sitter.Node) attr {
	nameNode := n.NamedChild(0)
	it := attr{name: nameNode.Content(x.src), node: n, kind: attrDynamic}
	if nameNode.Type() == "jsx_namespace_name" {
		return it
	}
	if n.NamedChildCount() < 2 {
		it.kind, it.value, it.bare = attrStatic, true, true
		return it
	}

	value := n.NamedChild(1)
	switch value.Type() {
	case "string":
		raw := value.Content(x.src)
		if len(raw) >= 2 {
			it.kind, it.value = attrStatic, html.UnescapeString(raw[1:len(raw)-1])
		}
	case "jsx_expression":
		expr := firstExpression(value)
		if expr == nil {
			return it
		}
		it.expr = expr
		if x.eval.CanEvaluate(expr) {
			v, err := x.eval.Evaluate(expr)
			if err != nil {
				x.report(SeverityWarning, expr, "could not evaluate %s: %v", it.name, err)
				return it
			}
			it.kind, it.value = attrStatic, v
			return it
		}
		if cond, cons, alt, ok := x.conditional(expr); ok {
			it.kind, it.cond, it.cons, it.alt = attrConditional, cond, cons, alt
		}
	}
	return it
}

// conditional matches `cond ? a : b` and `cond && a` where the branches
// are static and the condition is not.
func (x *extractor) conditional(expr *sitter.Node) (cond, cons, alt *sitter.Node, ok bool) {
	expr = jsast.Unwrap(expr)
	switch expr.Type() {
	case "ternary_expression":
		cond = expr.ChildByFieldName("condition")
		cons = expr.ChildByFieldName("consequence")
		alt = expr.ChildByFieldName("alternative")
		ok = cond != nil && x.eval.CanEvaluate(cons) && x.eval.CanEvaluate(alt)
	case "binary_expression":
		op := expr.ChildByFieldName("operator")
		if op == nil || op.Type() != "&&" {
			return nil, nil, nil, false
		}
		cond = expr.ChildByFieldName("left")
		cons = expr.ChildByFieldName("right")
		ok = cond != nil && x.eval.CanEvaluate(cons)
	}
	return cond, cons, alt, ok
}

// conditionalClass turns a conditional style prop into a class expression.
func (x *extractor) conditionalClass(it attr, mqs []style.MediaQuery, comment string) string {
	branch := func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		v, err := x.eval.Evaluate(n)
		if err != nil {
			x.report(SeverityWarning, n, "could not evaluate %s: %v", it.name, err)
			return ""
		}
		return x.classesFor(style.Props{{Key: it.name, Value: v}}, mqs, comment)
	}
	consClass := branch(it.cons)
	altClass := branch(it.alt)
	cond := x.ed.slice(it.cond.StartByte(), it.cond.EndByte())
	return "(" + cond + ") ? " + quoteJS(consClass) + " : " + quoteJS(altClass)
}

// call replaces css(...) with the class names of its static arguments.
func (x *extractor) call(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	if name, ok := x.resolveComponent(fn); !ok || name != CSSFunction {
		return
	}
	args := n.ChildByFieldName("arguments")
	var props style.Props
	for _, arg := range jsast.NamedChildren(args) {
		if arg.Type() == "comment" {
			continue
		}
		if !x.eval.CanEvaluate(arg) {
			x.report(SeverityWarning, arg, "css() argument is not static; call left to the runtime")
			return
		}
		v, err := x.eval.Evaluate(arg)
		if err != nil {
			x.report(SeverityWarning, arg, "could not evaluate css() argument: %v", err)
			return
		}
		switch t := v.(type) {
		case nil, bool:
		case style.Props:
			props = append(props, t...)
		default:
			x.report(SeverityWarning, arg, "css() argument is not an object")
			return
		}
	}
	line := int(n.StartPoint().Row) + 1
	classes := x.classesFor(props, x.opts.MediaQueries, fmt.Sprintf("%s:%d (css)", x.fileName, line))
	x.ed.replace(n.StartByte(), n.EndByte(), quoteJS(classes))
	x.result.Stats.Calls++
}
