package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/yacobolo/jsxcss/internal/jsast"
	"github.com/yacobolo/jsxcss/internal/style"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	tagNameRe    = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	attrNameRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_:.-]*$`)
)

// quoteJS renders s as a double-quoted JavaScript string literal.
func quoteJS(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// encoding/json also escapes U+2028 and U+2029.
	return strings.TrimSuffix(buf.String(), "\n")
}

// literal renders an evaluator value as JavaScript source.
func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
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
	case string:
		return quoteJS(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = literal(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case style.Props:
		parts := make([]string, len(t))
		for i, p := range t {
			key := p.Key
			if !identifierRe.MatchString(key) {
				key = quoteJS(key)
			}
			parts[i] = key + ": " + literal(p.Value)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	switch n := jsast.Normalize(v).(type) {
	case nil, bool, float64, string, []any, style.Props:
		return literal(n)
	}
	return quoteJS(fmt.Sprint(v))
}

// attribute renders a static JSX attribute.
func attribute(name string, v any) string {
	if s, ok := v.(string); ok && !strings.ContainsAny(s, "\"\n\r{}<>&") {
		return name + `="` + s + `"`
	}
	if b, ok := v.(bool); ok && b {
		return name
	}
	return name + "={" + literal(v) + "}"
}

// classExpression joins static classes and conditional class expressions.
func classExpression(static string, conditionals []string) (string, bool) {
	if len(conditionals) == 0 {
		return static, false
	}
	parts := make([]string, 0, len(conditionals)+1)
	if static != "" {
		parts = append(parts, quoteJS(static))
	}
	parts = append(parts, conditionals...)
	return "[" + strings.Join(parts, ", ") + `].filter(Boolean).join(" ")`, true
}

func joinClasses(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
