package jsast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrBadEscape is returned for malformed escape sequences.
var ErrBadEscape = errors.New("malformed escape sequence")

// Unquote strips the quotes of a JavaScript string literal and resolves
// its escape sequences.
func Unquote(raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("string literal %q: too short", raw)
	}
	q := raw[0]
	if (q != '"' && q != '\'' && q != '`') || raw[len(raw)-1] != q {
		return "", fmt.Errorf("string literal %q: unbalanced quotes", raw)
	}
	return Unescape(raw[1 : len(raw)-1])
}

// Unescape resolves JavaScript escape sequences in s.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("%w: trailing backslash", ErrBadEscape)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// line continuation
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("%w: \\x", ErrBadEscape)
			}
			n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("%w: \\x%s", ErrBadEscape, s[i+1:i+3])
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, err := unicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			i += width
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1:], `\u`) {
				if low, w, err := unicodeEscape(s[i+3:]); err == nil {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + w
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// unicodeEscape decodes the part after "\u": either four hex digits or a
// braced code point.
func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("%w: \\u{", ErrBadEscape)
		}
		n, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, 0, fmt.Errorf("%w: \\u%s", ErrBadEscape, s[:end+1])
		}
		return rune(n), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("%w: \\u%s", ErrBadEscape, s)
	}
	n, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: \\u%s", ErrBadEscape, s[:4])
	}
	return rune(n), 4, nil
}
