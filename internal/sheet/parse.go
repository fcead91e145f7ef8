package sheet

import (
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// knownPseudo lists the pseudo-classes and pseudo-elements accepted in
// selectors. Anything else is rejected the way a browser's insertRule
// rejects it.
var knownPseudo = map[string]bool{
	// pseudo-classes
	"active": true, "any-link": true, "checked": true, "default": true,
	"defined": true, "dir": true, "disabled": true, "empty": true,
	"enabled": true, "first": true, "first-child": true, "first-of-type": true,
	"focus": true, "focus-visible": true, "focus-within": true, "has": true,
	"hover": true, "in-range": true, "indeterminate": true, "invalid": true,
	"is": true, "lang": true, "last-child": true, "last-of-type": true,
	"left": true, "link": true, "not": true, "nth-child": true,
	"nth-last-child": true, "nth-last-of-type": true, "nth-of-type": true,
	"only-child": true, "only-of-type": true, "optional": true,
	"out-of-range": true, "placeholder-shown": true, "read-only": true,
	"read-write": true, "required": true, "right": true, "root": true,
	"scope": true, "target": true, "valid": true, "visited": true,
	"where": true,
	// pseudo-elements
	"after": true, "backdrop": true, "before": true, "cue": true,
	"file-selector-button": true, "first-letter": true, "first-line": true,
	"marker": true, "placeholder": true, "selection": true,
}

// Validate parses rule and reports whether it is a well-formed stylesheet
// fragment containing at least one block.
func Validate(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return invalid("empty rule")
	}

	p := css.NewParser(parse.NewInputString(rule), false)
	blocks := 0
	depth := 0
	for {
		gt, tt, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return invalid("%v", err)
			}
			if blocks == 0 {
				return invalid("no rule block in %q", rule)
			}
			if depth != 0 {
				return invalid("unbalanced braces in %q", rule)
			}
			return nil
		case css.BeginAtRuleGrammar:
			blocks++
			depth++
		case css.BeginRulesetGrammar:
			if err := checkSelector(selectorTokens(tt, data, p.Values())); err != nil {
				return err
			}
			blocks++
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		case css.QualifiedRuleGrammar:
			return invalid("unexpected selector list %q", string(data))
		}
	}
}

func checkSelector(tokens []css.Token) error {
	for i := 0; i < len(tokens); i++ {
		if tokens[i].TokenType != css.ColonToken {
			continue
		}
		j := i + 1
		if j < len(tokens) && tokens[j].TokenType == css.ColonToken {
			j++
		}
		if j >= len(tokens) {
			return invalid("dangling colon in selector")
		}
		var name string
		switch tokens[j].TokenType {
		case css.IdentToken:
			name = string(tokens[j].Data)
		case css.FunctionToken:
			name = strings.TrimSuffix(string(tokens[j].Data), "(")
		default:
			return invalid("malformed pseudo selector")
		}
		if !knownPseudo[strings.ToLower(name)] {
			return invalid("unknown pseudo selector %q", name)
		}
		i = j
	}
	return nil
}

// Format pretty-prints rule with one declaration per line and two-space
// indentation. Rules that fail to parse are returned unchanged.
func Format(rule string) string {
	if Validate(rule) != nil {
		return rule
	}

	var b strings.Builder
	p := css.NewParser(parse.NewInputString(rule), false)
	depth := 0
	indent := func() {
		b.WriteString(strings.Repeat("  ", depth))
	}
	for {
		gt, tt, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return strings.TrimRight(b.String(), "\n")
		case css.BeginAtRuleGrammar:
			indent()
			b.WriteString(string(data))
			if prelude := tokenText(p.Values()); prelude != "" {
				b.WriteByte(' ')
				b.WriteString(prelude)
			}
			b.WriteString(" {\n")
			depth++
		case css.BeginRulesetGrammar:
			indent()
			b.WriteString(tokenText(selectorTokens(tt, data, p.Values())))
			b.WriteString(" {\n")
			depth++
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			indent()
			b.WriteString(string(data))
			b.WriteString(": ")
			b.WriteString(tokenText(p.Values()))
			b.WriteString(";\n")
		case css.AtRuleGrammar:
			indent()
			b.WriteString(string(data))
			if prelude := tokenText(p.Values()); prelude != "" {
				b.WriteByte(' ')
				b.WriteString(prelude)
			}
			b.WriteString(";\n")
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if depth > 0 {
				depth--
			}
			indent()
			b.WriteString("}\n")
		}
	}
}

// selectorTokens rebuilds a ruleset prelude: the parser hands out its first
// token separately from the buffered rest.
func selectorTokens(tt css.TokenType, data []byte, values []css.Token) []css.Token {
	tokens := make([]css.Token, 0, len(values)+1)
	if len(data) > 0 {
		tokens = append(tokens, css.Token{TokenType: tt, Data: data})
	}
	return append(tokens, values...)
}

func tokenText(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}
