package jsast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yacobolo/jsxcss/internal/style"
)

// ErrNotStatic is returned when an expression depends on runtime state.
var ErrNotStatic = errors.New("expression is not statically evaluable")

// Scope resolves identifiers to static values. at is the identifier node,
// so implementations can take block scoping into account.
type Scope interface {
	Lookup(name string, at *sitter.Node) (any, bool)
}

// Namespace is a flat Scope.
type Namespace map[string]any

// Lookup implements Scope.
func (n Namespace) Lookup(name string, _ *sitter.Node) (any, bool) {
	v, ok := n[name]
	return v, ok
}

// Evaluator computes the value of expression nodes without executing any
// code. Values are nil (null and undefined), float64, string, bool,
// style.Props for objects and []any for arrays.
type Evaluator struct {
	Source    []byte
	Namespace Scope
}

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "===": true, "!==": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "??": true,
}

var unaryOperators = map[string]bool{"-": true, "+": true, "!": true}

func (e *Evaluator) lookup(name string, at *sitter.Node) (any, bool) {
	if e.Namespace != nil {
		if v, ok := e.Namespace.Lookup(name, at); ok {
			return Normalize(v), true
		}
	}
	if name == "undefined" {
		return nil, true
	}
	return nil, false
}

func (e *Evaluator) text(node *sitter.Node) string {
	return node.Content(e.Source)
}

// CanEvaluate reports whether node's value is statically known.
func (e *Evaluator) CanEvaluate(node *sitter.Node) bool {
	node = Unwrap(node)
	if node == nil {
		return false
	}
	switch node.Type() {
	case "string", "true", "false", "null", "undefined":
		return true
	case "number":
		return !strings.HasSuffix(e.text(node), "n")
	case "template_string":
		for _, c := range NamedChildren(node) {
			if c.Type() == "template_substitution" && !e.CanEvaluate(c.NamedChild(0)) {
				return false
			}
		}
		return true
	case "identifier":
		_, ok := e.lookup(e.text(node), node)
		return ok
	case "member_expression":
		property := node.ChildByFieldName("property")
		return property != nil && property.Type() == "property_identifier" &&
			e.CanEvaluate(node.ChildByFieldName("object"))
	case "subscript_expression":
		return e.CanEvaluate(node.ChildByFieldName("object")) && e.CanEvaluate(node.ChildByFieldName("index"))
	case "binary_expression":
		op := node.ChildByFieldName("operator")
		return op != nil && binaryOperators[op.Type()] &&
			e.CanEvaluate(node.ChildByFieldName("left")) && e.CanEvaluate(node.ChildByFieldName("right"))
	case "unary_expression":
		op := node.ChildByFieldName("operator")
		return op != nil && unaryOperators[op.Type()] && e.CanEvaluate(node.ChildByFieldName("argument"))
	case "ternary_expression":
		return e.CanEvaluate(node.ChildByFieldName("condition")) &&
			e.CanEvaluate(node.ChildByFieldName("consequence")) &&
			e.CanEvaluate(node.ChildByFieldName("alternative"))
	case "object":
		for _, c := range NamedChildren(node) {
			switch c.Type() {
			case "comment":
			case "pair":
				if !e.canEvaluateKey(c.ChildByFieldName("key")) || !e.CanEvaluate(c.ChildByFieldName("value")) {
					return false
				}
			case "shorthand_property_identifier":
				if _, ok := e.lookup(e.text(c), c); !ok {
					return false
				}
			case "spread_element":
				if !e.CanEvaluate(c.NamedChild(0)) {
					return false
				}
			default:
				return false
			}
		}
		return true
	case "array":
		for _, c := range NamedChildren(node) {
			switch c.Type() {
			case "comment":
			case "spread_element":
				if !e.CanEvaluate(c.NamedChild(0)) {
					return false
				}
			default:
				if !e.CanEvaluate(c) {
					return false
				}
			}
		}
		return true
	}
	return false
}

func (e *Evaluator) canEvaluateKey(key *sitter.Node) bool {
	if key == nil {
		return false
	}
	switch key.Type() {
	case "property_identifier", "string", "number":
		return true
	case "computed_property_name":
		return e.CanEvaluate(key.NamedChild(0))
	}
	return false
}

// Evaluate computes the value of node.
func (e *Evaluator) Evaluate(node *sitter.Node) (any, error) {
	node = Unwrap(node)
	if node == nil {
		return nil, fmt.Errorf("%w: missing expression", ErrNotStatic)
	}
	switch node.Type() {
	case "string":
		return Unquote(e.text(node))
	case "number":
		return ParseNumber(e.text(node))
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	case "template_string":
		return e.evalTemplate(node)
	case "identifier":
		name := e.text(node)
		if v, ok := e.lookup(name, node); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: unknown identifier %q", ErrNotStatic, name)
	case "member_expression":
		return e.evalMember(node)
	case "subscript_expression":
		object, err := e.Evaluate(node.ChildByFieldName("object"))
		if err != nil {
			return nil, err
		}
		index, err := e.Evaluate(node.ChildByFieldName("index"))
		if err != nil {
			return nil, err
		}
		return access(object, index, isOptional(node))
	case "binary_expression":
		return e.evalBinary(node)
	case "unary_expression":
		return e.evalUnary(node)
	case "ternary_expression":
		cond, err := e.Evaluate(node.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return e.Evaluate(node.ChildByFieldName("consequence"))
		}
		return e.Evaluate(node.ChildByFieldName("alternative"))
	case "object":
		return e.evalObject(node)
	case "array":
		return e.evalArray(node)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotStatic, node.Type())
}

// PropertyKey returns the static name of an object key node.
func (e *Evaluator) PropertyKey(key *sitter.Node) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: missing key", ErrNotStatic)
	}
	switch key.Type() {
	case "property_identifier", "shorthand_property_identifier":
		return e.text(key), nil
	case "string":
		return Unquote(e.text(key))
	case "number":
		n, err := ParseNumber(e.text(key))
		if err != nil {
			return "", err
		}
		return style.FormatNumber(n), nil
	case "computed_property_name":
		v, err := e.Evaluate(key.NamedChild(0))
		if err != nil {
			return "", err
		}
		return ToString(v), nil
	}
	return "", fmt.Errorf("%w: key %s", ErrNotStatic, key.Type())
}

func (e *Evaluator) evalTemplate(node *sitter.Node) (any, error) {
	var b strings.Builder
	pos := node.StartByte() + 1
	end := node.EndByte() - 1
	for _, c := range NamedChildren(node) {
		if c.Type() != "template_substitution" {
			continue
		}
		if err := e.writeRaw(&b, pos, c.StartByte()); err != nil {
			return nil, err
		}
		v, err := e.Evaluate(c.NamedChild(0))
		if err != nil {
			return nil, err
		}
		b.WriteString(ToString(v))
		pos = c.EndByte()
	}
	if err := e.writeRaw(&b, pos, end); err != nil {
		return nil, err
	}
	return b.String(), nil
}

func (e *Evaluator) writeRaw(b *strings.Builder, from, to uint32) error {
	if to <= from {
		return nil
	}
	s, err := Unescape(string(e.Source[from:to]))
	if err != nil {
		return err
	}
	b.WriteString(s)
	return nil
}

func (e *Evaluator) evalMember(node *sitter.Node) (any, error) {
	object, err := e.Evaluate(node.ChildByFieldName("object"))
	if err != nil {
		return nil, err
	}
	property := node.ChildByFieldName("property")
	if property == nil || property.Type() != "property_identifier" {
		return nil, fmt.Errorf("%w: computed member", ErrNotStatic)
	}
	return access(object, e.text(property), isOptional(node))
}

func isOptional(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		t := node.Child(i).Type()
		if t == "optional_chain" || t == "?." {
			return true
		}
	}
	return false
}

func access(object, key any, optional bool) (any, error) {
	switch o := object.(type) {
	case nil:
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read property %q of null", ToString(key))
	case style.Props:
		v, _ := o.Get(ToString(key))
		return Normalize(v), nil
	case []any:
		if ToString(key) == "length" {
			return float64(len(o)), nil
		}
		if i, ok := arrayIndex(key, len(o)); ok {
			return Normalize(o[i]), nil
		}
		return nil, nil
	case string:
		units := utf16.Encode([]rune(o))
		if ToString(key) == "length" {
			return float64(len(units)), nil
		}
		if i, ok := arrayIndex(key, len(units)); ok {
			return string(utf16.Decode(units[i : i+1])), nil
		}
		return nil, nil
	}
	return nil, nil
}

// arrayIndex converts key to an index below length. The bound is checked
// on the float so huge constants never reach the int conversion.
func arrayIndex(key any, length int) (int, bool) {
	n := ToNumber(key)
	if n < 0 || n != math.Trunc(n) || n >= float64(length) {
		return 0, false
	}
	return int(n), true
}

func (e *Evaluator) evalBinary(node *sitter.Node) (any, error) {
	op := node.ChildByFieldName("operator")
	if op == nil || !binaryOperators[op.Type()] {
		return nil, fmt.Errorf("%w: operator", ErrNotStatic)
	}
	left, err := e.Evaluate(node.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	switch op.Type() {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
		return e.Evaluate(node.ChildByFieldName("right"))
	case "||":
		if Truthy(left) {
			return left, nil
		}
		return e.Evaluate(node.ChildByFieldName("right"))
	case "??":
		if left != nil {
			return left, nil
		}
		return e.Evaluate(node.ChildByFieldName("right"))
	}
	right, err := e.Evaluate(node.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	return Binary(op.Type(), left, right)
}

// Binary applies a non-short-circuiting binary operator.
func Binary(op string, left, right any) (any, error) {
	switch op {
	case "+":
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs || isObject(left) || isObject(right) {
			return ToString(left) + ToString(right), nil
		}
		return ToNumber(left) + ToNumber(right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "**":
		return math.Pow(ToNumber(left), ToNumber(right)), nil
	case "===":
		return strictEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(op, left, right), nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrNotStatic, op)
}

func (e *Evaluator) evalUnary(node *sitter.Node) (any, error) {
	op := node.ChildByFieldName("operator")
	if op == nil || !unaryOperators[op.Type()] {
		return nil, fmt.Errorf("%w: unary operator", ErrNotStatic)
	}
	v, err := e.Evaluate(node.ChildByFieldName("argument"))
	if err != nil {
		return nil, err
	}
	switch op.Type() {
	case "-":
		return -ToNumber(v), nil
	case "+":
		return ToNumber(v), nil
	default:
		return !Truthy(v), nil
	}
}

func (e *Evaluator) evalObject(node *sitter.Node) (any, error) {
	out := style.Props{}
	for _, c := range NamedChildren(node) {
		switch c.Type() {
		case "comment":
		case "pair":
			key, err := e.PropertyKey(c.ChildByFieldName("key"))
			if err != nil {
				return nil, err
			}
			v, err := e.Evaluate(c.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			out = out.Set(key, v)
		case "shorthand_property_identifier":
			name := e.text(c)
			v, ok := e.lookup(name, c)
			if !ok {
				return nil, fmt.Errorf("%w: unknown identifier %q", ErrNotStatic, name)
			}
			out = out.Set(name, v)
		case "spread_element":
			v, err := e.Evaluate(c.NamedChild(0))
			if err != nil {
				return nil, err
			}
			switch s := v.(type) {
			case nil:
			case style.Props:
				for _, p := range s {
					out = out.Set(p.Key, p.Value)
				}
			default:
				return nil, fmt.Errorf("%w: spread of %T", ErrNotStatic, v)
			}
		default:
			return nil, fmt.Errorf("%w: object member %s", ErrNotStatic, c.Type())
		}
	}
	return out, nil
}

func (e *Evaluator) evalArray(node *sitter.Node) (any, error) {
	out := []any{}
	for _, c := range NamedChildren(node) {
		switch c.Type() {
		case "comment":
		case "spread_element":
			v, err := e.Evaluate(c.NamedChild(0))
			if err != nil {
				return nil, err
			}
			items, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: spread of %T", ErrNotStatic, v)
			}
			out = append(out, items...)
		default:
			v, err := e.Evaluate(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// ParseNumber parses a JavaScript numeric literal. BigInt literals are
// rejected.
func ParseNumber(text string) (float64, error) {
	if strings.HasSuffix(text, "n") {
		return 0, fmt.Errorf("%w: bigint literal %s", ErrNotStatic, text)
	}
	clean := strings.ReplaceAll(text, "_", "")
	if len(clean) > 1 && clean[0] == '0' {
		switch clean[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			n, err := strconv.ParseUint(clean, 0, 64)
			if err != nil {
				return 0, fmt.Errorf("number %s: %w", text, err)
			}
			return float64(n), nil
		}
	}
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("number %s: %w", text, err)
	}
	return n, nil
}

// Normalize converts Go values handed in through a Scope into evaluator
// values. Maps become Props with sorted keys.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, style.Props, []any:
		return v
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(style.Props, 0, len(t))
		for _, k := range keys {
			out = append(out, style.Prop{Key: k, Value: Normalize(t[k])})
		}
		return out
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return Normalize(m)
	case fmt.Stringer:
		return t.String()
	}
	return v
}

// Truthy applies JavaScript truthiness.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	}
	return true
}

// ToString converts a value the way string concatenation does.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		switch {
		case math.IsNaN(t):
			return "NaN"
		case math.IsInf(t, 1):
			return "Infinity"
		case math.IsInf(t, -1):
			return "-Infinity"
		}
		return style.FormatNumber(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			if item != nil {
				parts[i] = ToString(item)
			}
		}
		return strings.Join(parts, ",")
	case style.Props:
		return "[object Object]"
	}
	return fmt.Sprint(v)
}

// ToNumber converts a value the way arithmetic operators do.
func ToNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return math.NaN()
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		n, err := ParseNumber(s)
		if err != nil {
			return math.NaN()
		}
		return n
	}
	return math.NaN()
}

func isObject(v any) bool {
	switch v.(type) {
	case style.Props, []any:
		return true
	}
	return false
}

func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isObject(a) || isObject(b) {
		return false
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa == sb
		}
	}
	return ToNumber(a) == ToNumber(b)
}

func compare(op string, a, b any) bool {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			switch op {
			case "<":
				return sa < sb
			case "<=":
				return sa <= sb
			case ">":
				return sa > sb
			default:
				return sa >= sb
			}
		}
	}
	x, y := ToNumber(a), ToNumber(b)
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	default:
		return x >= y
	}
}
