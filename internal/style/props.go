// Package style turns bags of style properties into atomic CSS class rules.
//
// The package is shared by the runtime cache and the static extractor, so
// both produce identical class names and rule text for identical input.
package style

import "strings"

// Prop is a single key/value pair of a property bag.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered property bag. Enumeration order is significant:
// later entries override earlier entries that resolve to the same target.
type Props []Prop

// Get returns the value stored under key.
func (p Props) Get(key string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new entry.
func (p Props) Set(key string, value any) Props {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Prop{Key: key, Value: value})
}

// Delete removes every entry stored under key.
func (p Props) Delete(key string) Props {
	out := p[:0]
	for _, prop := range p {
		if prop.Key != key {
			out = append(out, prop)
		}
	}
	return out
}

// Keys lists the keys in enumeration order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, prop := range p {
		keys = append(keys, prop.Key)
	}
	return keys
}

// Clone returns a shallow copy.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	copy(out, p)
	return out
}

// MediaQuery names a media query usable as a property prefix ("sm" → "smColor").
type MediaQuery struct {
	Name  string
	Query string
}

// MediaQueriesFromProps converts an ordered name → query bag.
// Entries with non-string values are ignored.
func MediaQueriesFromProps(p Props) []MediaQuery {
	mqs := make([]MediaQuery, 0, len(p))
	for _, prop := range p {
		q, ok := prop.Value.(string)
		if !ok || q == "" {
			continue
		}
		mqs = append(mqs, MediaQuery{Name: prop.Key, Query: q})
	}
	return mqs
}

// Hyphenate converts a camelCase property name into its CSS form.
// Vendor prefixes keep their leading dash ("msFlex" → "-ms-flex",
// "WebkitFlex" → "-webkit-flex"). Custom properties are returned untouched.
func Hyphenate(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if i == 0 && strings.HasPrefix(name, "ms") && len(name) > 2 && name[2] >= 'A' && name[2] <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truthy reports whether a raw value takes part in styling.
// nil and false drop the property; 0 and "" are values in their own right.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	}
	return true
}
