package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/style"
)

// ModuleExports statically evaluates the exports of a module: exported
// const bindings, export lists of local bindings and the default export.
// Exports that are not static are left out. Re-exports from other modules
// are not followed.
func ModuleExports(ctx context.Context, src []byte, fileName string) (style.Props, error) {
	tree, err := jsast.Parse(ctx, src, fileName)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &SyntaxError{Location: jsast.Locate(fileName, firstError(root), src)}
	}

	s := newScope(src, true)
	for _, stmt := range jsast.NamedChildren(root) {
		if stmt.Type() == "import_statement" {
			for _, b := range importBindings(stmt, src) {
				s.imported[b.local] = true
			}
		}
	}

	var exports style.Props
	for _, stmt := range jsast.NamedChildren(root) {
		if stmt.Type() != "export_statement" || stmt.ChildByFieldName("source") != nil {
			continue
		}
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			for _, name := range declaredNames(decl, src) {
				if v, ok := s.Lookup(name, decl); ok {
					exports = exports.Set(name, v)
				}
			}
			continue
		}
		if value := stmt.ChildByFieldName("value"); value != nil {
			if s.eval.CanEvaluate(value) {
				if v, err := s.eval.Evaluate(value); err == nil {
					exports = exports.Set("default", v)
				}
			}
			continue
		}
		for _, clause := range jsast.NamedChildren(stmt) {
			if clause.Type() != "export_clause" {
				continue
			}
			for _, spec := range jsast.NamedChildren(clause) {
				name := spec.ChildByFieldName("name")
				if spec.Type() != "export_specifier" || name == nil {
					continue
				}
				local := importName(name, src)
				exported := local
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					exported = importName(alias, src)
				}
				if v, ok := s.Lookup(local, clause); ok {
					exports = exports.Set(exported, v)
				}
			}
		}
	}
	return exports, nil
}

// declaredNames lists the names bound by a const declaration.
func declaredNames(decl *sitter.Node, src []byte) []string {
	if decl.Type() != "lexical_declaration" {
		return nil
	}
	var names []string
	for _, d := range jsast.NamedChildren(decl) {
		if d.Type() != "variable_declarator" {
			continue
		}
		pattern := d.ChildByFieldName("name")
		if pattern == nil {
			continue
		}
		jsast.Walk(pattern, func(n *sitter.Node) bool {
			switch n.Type() {
			case "identifier", "shorthand_property_identifier_pattern":
				names = append(names, n.Content(src))
				return false
			case "pair_pattern":
				if v := n.ChildByFieldName("value"); v != nil {
					jsast.Walk(v, func(c *sitter.Node) bool {
						if c.Type() == "identifier" || c.Type() == "shorthand_property_identifier_pattern" {
							names = append(names, c.Content(src))
							return false
						}
						return true
					})
				}
				return false
			}
			return true
		})
	}
	return names
}
