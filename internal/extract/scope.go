package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/style"
)

type nodeKey struct{ start, end uint32 }

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte()}
}

type initializer struct {
	value any
	ok    bool
}

// scope resolves identifiers lexically: const bindings of every enclosing
// block (innermost wins), then whitelisted module imports. Parameters,
// let/var bindings, functions and classes shadow outer bindings and are
// never static.
type scope struct {
	src          []byte
	evaluateVars bool
	// modules holds bindings imported from whitelisted modules.
	modules map[string]any
	// imported names bound by any other import are dynamic.
	imported map[string]bool

	eval     *jsast.Evaluator
	memo     map[nodeKey]initializer
	visiting map[nodeKey]bool
}

func newScope(src []byte, evaluateVars bool) *scope {
	s := &scope{
		src:          src,
		evaluateVars: evaluateVars,
		modules:      make(map[string]any),
		imported:     make(map[string]bool),
		memo:         make(map[nodeKey]initializer),
		visiting:     make(map[nodeKey]bool),
	}
	s.eval = &jsast.Evaluator{Source: src, Namespace: s}
	return s
}

var functionTypes = map[string]bool{
	"function_declaration":           true,
	"function":                       true,
	"function_expression":            true,
	"arrow_function":                 true,
	"method_definition":              true,
	"generator_function":             true,
	"generator_function_declaration": true,
}

// Lookup implements jsast.Scope.
func (s *scope) Lookup(name string, at *sitter.Node) (any, bool) {
	if at == nil {
		return nil, false
	}
	for n := at.Parent(); n != nil; n = n.Parent() {
		switch {
		case n.Type() == "statement_block" || n.Type() == "program":
			if v, found, ok := s.lookupBlock(n, name); found {
				return v, ok
			}
		case s.bindsParam(n, name):
			return nil, false
		}
	}
	if v, ok := s.modules[name]; ok {
		return v, true
	}
	return nil, false
}

// shadowed reports whether a binding between at and the module scope
// hides the module-level name.
func (s *scope) shadowed(name string, at *sitter.Node) bool {
	for n := at.Parent(); n != nil && n.Type() != "program"; n = n.Parent() {
		if n.Type() == "statement_block" && s.declares(n, name) {
			return true
		}
		if s.bindsParam(n, name) {
			return true
		}
	}
	return false
}

// bindsParam reports whether n is a function, catch clause or for loop
// that binds name for its body.
func (s *scope) bindsParam(n *sitter.Node, name string) bool {
	switch {
	case functionTypes[n.Type()]:
		return declaresParam(n, name, s.src)
	case n.Type() == "catch_clause":
		p := n.ChildByFieldName("parameter")
		return p != nil && containsIdentifier(p, name, s.src)
	case n.Type() == "for_statement" || n.Type() == "for_in_statement":
		for _, field := range []string{"initializer", "left"} {
			if p := n.ChildByFieldName(field); p != nil && containsIdentifier(p, name, s.src) {
				return true
			}
		}
	}
	return false
}

func (s *scope) declares(block *sitter.Node, name string) bool {
	for _, c := range jsast.NamedChildren(block) {
		switch c.Type() {
		case "lexical_declaration", "variable_declaration":
			for _, d := range jsast.NamedChildren(c) {
				if d.Type() != "variable_declarator" {
					continue
				}
				if p := d.ChildByFieldName("name"); p != nil && containsIdentifier(p, name, s.src) {
					return true
				}
			}
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if n := c.ChildByFieldName("name"); n != nil && n.Content(s.src) == name {
				return true
			}
		}
	}
	return false
}

func (s *scope) lookupBlock(block *sitter.Node, name string) (any, bool, bool) {
	for _, c := range jsast.NamedChildren(block) {
		if c.Type() == "export_statement" {
			if d := c.ChildByFieldName("declaration"); d != nil {
				c = d
			}
		}
		switch c.Type() {
		case "lexical_declaration", "variable_declaration":
			isConst := c.ChildCount() > 0 && c.Child(0).Type() == "const"
			for _, d := range jsast.NamedChildren(c) {
				if d.Type() != "variable_declarator" {
					continue
				}
				pattern := d.ChildByFieldName("name")
				if pattern == nil || !containsIdentifier(pattern, name, s.src) {
					continue
				}
				if !isConst || !s.evaluateVars {
					return nil, true, false
				}
				init := s.initializer(d)
				if !init.ok {
					return nil, true, false
				}
				v, ok := s.destructure(pattern, name, init.value)
				return v, true, ok
			}
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if n := c.ChildByFieldName("name"); n != nil && n.Content(s.src) == name {
				return nil, true, false
			}
		}
	}
	if block.Type() == "program" && s.imported[name] {
		if _, whitelisted := s.modules[name]; !whitelisted {
			return nil, true, false
		}
	}
	return nil, false, false
}

func (s *scope) initializer(declarator *sitter.Node) initializer {
	k := keyOf(declarator)
	if init, ok := s.memo[k]; ok {
		return init
	}
	if s.visiting[k] {
		return initializer{}
	}
	s.visiting[k] = true
	defer delete(s.visiting, k)

	var init initializer
	if value := declarator.ChildByFieldName("value"); value != nil && s.eval.CanEvaluate(value) {
		if v, err := s.eval.Evaluate(value); err == nil {
			init = initializer{value: v, ok: true}
		}
	}
	s.memo[k] = init
	return init
}

// destructure picks the value bound to name by pattern.
func (s *scope) destructure(pattern *sitter.Node, name string, v any) (any, bool) {
	switch pattern.Type() {
	case "identifier":
		return v, pattern.Content(s.src) == name
	case "object_pattern":
		props, _ := v.(style.Props)
		for _, c := range jsast.NamedChildren(pattern) {
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				if c.Content(s.src) == name {
					got, _ := props.Get(name)
					return jsast.Normalize(got), props != nil
				}
			case "pair_pattern":
				value := c.ChildByFieldName("value")
				if value == nil || !containsIdentifier(value, name, s.src) {
					continue
				}
				key, err := s.eval.PropertyKey(c.ChildByFieldName("key"))
				if err != nil || props == nil {
					return nil, false
				}
				got, _ := props.Get(key)
				return s.destructure(value, name, jsast.Normalize(got))
			default:
				if containsIdentifier(c, name, s.src) {
					return nil, false
				}
			}
		}
	case "array_pattern":
		items, _ := v.([]any)
		for i, c := range jsast.NamedChildren(pattern) {
			if !containsIdentifier(c, name, s.src) {
				continue
			}
			if items == nil || i >= len(items) || c.Type() == "rest_pattern" {
				return nil, false
			}
			return s.destructure(c, name, items[i])
		}
	}
	return nil, false
}

func declaresParam(fn *sitter.Node, name string, src []byte) bool {
	if p := fn.ChildByFieldName("parameters"); p != nil && containsIdentifier(p, name, src) {
		return true
	}
	if p := fn.ChildByFieldName("parameter"); p != nil && containsIdentifier(p, name, src) {
		return true
	}
	if fn.Type() != "function_declaration" {
		if n := fn.ChildByFieldName("name"); n != nil && n.Content(src) == name {
			return true
		}
	}
	return false
}

// containsIdentifier reports whether a binding pattern declares name.
func containsIdentifier(n *sitter.Node, name string, src []byte) bool {
	found := false
	jsast.Walk(n, func(c *sitter.Node) bool {
		if found {
			return false
		}
		switch c.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			if c.Content(src) == name {
				found = true
			}
		}
		return !found
	})
	return found
}
