// Package jsast parses JavaScript and TypeScript sources with tree-sitter
// and statically evaluates the expressions style props are written in.
package jsast

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Language returns the grammar used for fileName. TypeScript sources are
// parsed with the TSX grammar, everything else with the JavaScript grammar
// (which includes JSX).
func Language(fileName string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Parse parses src with the grammar chosen by fileName's extension.
// The caller must Close the returned tree.
func Parse(ctx context.Context, src []byte, fileName string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language(fileName))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	return tree, nil
}

// Location is a 1-based source position with the offending line.
type Location struct {
	File    string
	Line    int
	Column  int
	Snippet string
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Locate converts a node position into a Location.
func Locate(fileName string, node *sitter.Node, src []byte) Location {
	if node == nil {
		return Location{File: fileName}
	}
	start := int(node.StartByte())
	point := node.StartPoint()
	return Location{
		File:    fileName,
		Line:    int(point.Row) + 1,
		Column:  int(point.Column) + 1,
		Snippet: lineAt(src, start),
	}
}

func lineAt(src []byte, idx int) string {
	if idx > len(src) {
		idx = len(src)
	}
	start := idx
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := idx
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return strings.TrimRight(string(src[start:end]), "\r")
}

// Content returns the source text of node.
func Content(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

// Walk visits node and its descendants depth-first, pre-order. Returning
// false from fn skips the node's children.
func Walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), fn)
	}
}

// NamedChildren lists the named children of node.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, node.NamedChild(i))
	}
	return out
}

// Unwrap strips parentheses and TypeScript-only wrappers (as, satisfies,
// non-null assertions) that do not change an expression's value.
func Unwrap(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			if node.NamedChildCount() == 0 {
				return node
			}
			node = node.NamedChild(0)
		default:
			return node
		}
	}
	return node
}
