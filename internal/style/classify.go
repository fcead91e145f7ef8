package style

import (
	"strings"
	"unicode"
)

// Kind tags the result of classifying a single property key.
type Kind int

const (
	// KindPassthrough keys are handed to the rendered component untouched.
	KindPassthrough Kind = iota
	// KindStyle keys become CSS declarations.
	KindStyle
)

// Classification is the resolved meaning of one input key.
type Classification struct {
	Kind Kind
	// Targets are the canonical camelCase property names the key writes to.
	// Axis shorthands expand to two targets.
	Targets       []string
	Pseudoclass   string
	Pseudoelement string
	MediaQuery    string
	// Specificity is the number of extra class repetitions, before the
	// media-query bonus applied by Build.
	Specificity int
}

// StyleProperty is one classified declaration candidate.
type StyleProperty struct {
	PropName      string
	PropValue     any
	Pseudoclass   string
	Pseudoelement string
	MediaQuery    string
	Specificity   int
}

// Parsed holds the style properties of a bag in resolution order.
type Parsed struct {
	props []StyleProperty
	index map[string]int
	// media lists media queries in first-registered order.
	media []string
}

// Len returns the number of resolved style properties.
func (p *Parsed) Len() int {
	if p == nil {
		return 0
	}
	return len(p.props)
}

// Properties returns the resolved properties in resolution order.
func (p *Parsed) Properties() []StyleProperty {
	if p == nil {
		return nil
	}
	out := make([]StyleProperty, len(p.props))
	copy(out, p.props)
	return out
}

// MediaQueries lists the media queries used by the bag in bucket order.
func (p *Parsed) MediaQueries() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.media...)
}

func (p *Parsed) put(sp StyleProperty) {
	k := targetKey(sp)
	if i, ok := p.index[k]; ok {
		p.props[i] = sp
		return
	}
	p.index[k] = len(p.props)
	p.props = append(p.props, sp)
}

func (p *Parsed) drop(sp StyleProperty) {
	k := targetKey(sp)
	i, ok := p.index[k]
	if !ok {
		return
	}
	p.props = append(p.props[:i], p.props[i+1:]...)
	delete(p.index, k)
	for key, j := range p.index {
		if j > i {
			p.index[key] = j - 1
		}
	}
}

func targetKey(sp StyleProperty) string {
	return sp.MediaQuery + "~" + sp.Pseudoclass + "~" + sp.Pseudoelement + "~" + sp.PropName
}

var passthrough = map[string]bool{
	"alt":          true,
	"checked":      true,
	"children":     true,
	"component":    true,
	"disabled":     true,
	"htmlFor":      true,
	"rel":          true,
	"role":         true,
	"href":         true,
	"id":           true,
	"key":          true,
	"mediaQueries": true,
	"name":         true,
	"placeholder":  true,
	"props":        true,
	"ref":          true,
	"src":          true,
	"style":        true,
	"tabIndex":     true,
	"title":        true,
	"type":         true,
	"value":        true,
}

var pseudoclasses = map[string]string{
	"active":        "active",
	"checked":       "checked",
	"default":       "default",
	"disabled":      "disabled",
	"empty":         "empty",
	"enabled":       "enabled",
	"firstChild":    "first-child",
	"firstOfType":   "first-of-type",
	"focus":         "focus",
	"focusVisible":  "focus-visible",
	"focusWithin":   "focus-within",
	"hover":         "hover",
	"indeterminate": "indeterminate",
	"invalid":       "invalid",
	"lastChild":     "last-child",
	"lastOfType":    "last-of-type",
	"link":          "link",
	"onlyChild":     "only-child",
	"optional":      "optional",
	"readOnly":      "read-only",
	"required":      "required",
	"target":        "target",
	"valid":         "valid",
	"visited":       "visited",
}

var pseudoelements = map[string]string{
	"after":       "after",
	"before":      "before",
	"firstLetter": "first-letter",
	"firstLine":   "first-line",
	"placeholder": "placeholder",
	"selection":   "selection",
}

// doubleSpecificity lists shorthand families whose longhands and pseudo
// variants need extra class repetitions to win over the shorthand.
var doubleSpecificity = []string{"margin", "padding", "background", "font", "flex", "animation"}

var axes = map[string][2]string{
	"marginH":  {"marginLeft", "marginRight"},
	"marginV":  {"marginTop", "marginBottom"},
	"paddingH": {"paddingLeft", "paddingRight"},
	"paddingV": {"paddingTop", "paddingBottom"},
}

// IsPassthrough reports whether key is handed to the component untouched.
func IsPassthrough(key, classNamePropKey string) bool {
	if key == classNamePropKey || passthrough[key] {
		return true
	}
	if len(key) > 2 && strings.HasPrefix(key, "on") && unicode.IsUpper(rune(key[2])) {
		return true
	}
	// data-*, aria-* and other hyphenated attributes are never camelCase CSS.
	return strings.Contains(key, "-") && !strings.HasPrefix(key, "--")
}

// ClassifyKey resolves a single key. It never looks at the value, so the
// static extractor can classify attributes whose values are dynamic.
func ClassifyKey(key, classNamePropKey string, mqs []MediaQuery) Classification {
	if IsPassthrough(key, classNamePropKey) {
		return Classification{Kind: KindPassthrough}
	}

	c := Classification{Kind: KindStyle}
	name := key

	if len(mqs) > 0 {
		if prefix, rest, ok := matchPrefix(name, func(p string) bool { return findMediaQuery(mqs, p) != "" }); ok {
			c.MediaQuery = findMediaQuery(mqs, prefix)
			name = rest
		}
	}
	if prefix, rest, ok := matchPrefix(name, func(p string) bool { return pseudoelements[p] != "" }); ok {
		c.Pseudoelement = pseudoelements[prefix]
		name = rest
	}
	if prefix, rest, ok := matchPrefix(name, func(p string) bool { return pseudoclasses[p] != "" }); ok {
		c.Pseudoclass = pseudoclasses[prefix]
		name = rest
	}

	if pair, ok := axes[name]; ok {
		c.Targets = []string{pair[0], pair[1]}
	} else {
		c.Targets = []string{name}
	}

	family := familyOf(c.Targets[0])
	if family != "" {
		if c.Targets[0] != family {
			c.Specificity++
		}
		if c.Pseudoelement != "" {
			c.Specificity++
		}
		if c.Pseudoclass != "" {
			c.Specificity++
		}
	}
	return c
}

// matchPrefix finds the longest prefix of name ending at a capital-letter
// boundary that satisfies ok, and returns the remainder with its first
// letter lowered.
func matchPrefix(name string, ok func(string) bool) (string, string, bool) {
	best := -1
	for i := 1; i < len(name); i++ {
		if name[i] < 'A' || name[i] > 'Z' {
			continue
		}
		if ok(name[:i]) {
			best = i
		}
	}
	if best < 0 {
		return "", name, false
	}
	rest := strings.ToLower(name[best:best+1]) + name[best+1:]
	return name[:best], rest, true
}

func findMediaQuery(mqs []MediaQuery, name string) string {
	for _, mq := range mqs {
		if mq.Name == name {
			return mq.Query
		}
	}
	return ""
}

func familyOf(propName string) string {
	for _, f := range doubleSpecificity {
		if propName == f {
			return f
		}
		if strings.HasPrefix(propName, f) && len(propName) > len(f) && propName[len(f)] >= 'A' && propName[len(f)] <= 'Z' {
			return f
		}
	}
	return ""
}

// Classify splits props into resolved style properties and component props.
//
// Keys are processed in enumeration order; a later key that resolves to an
// already-seen target replaces its value in place. nil and false values are
// dropped, and clear any earlier value for the same target.
func Classify(props Props, classNamePropKey string, mqs []MediaQuery) (*Parsed, Props) {
	parsed := &Parsed{index: make(map[string]int)}
	var componentProps Props

	if v, ok := props.Get("mediaQueries"); ok {
		if nested, ok := v.(Props); ok {
			mqs = append(append([]MediaQuery(nil), mqs...), MediaQueriesFromProps(nested)...)
		}
	}

	for _, prop := range props {
		if strings.HasPrefix(prop.Key, "@media ") {
			if nested, ok := prop.Value.(Props); ok {
				query := strings.TrimSpace(strings.TrimPrefix(prop.Key, "@media "))
				parsed.classifyInto(nested, classNamePropKey, mqs, query)
				continue
			}
		}
		c := ClassifyKey(prop.Key, classNamePropKey, mqs)
		if c.Kind == KindPassthrough {
			if prop.Key == "mediaQueries" {
				continue
			}
			componentProps = append(componentProps, prop)
			continue
		}
		parsed.apply(c, prop.Value)
	}

	parsed.orderMedia(mqs)
	return parsed, componentProps
}

func (p *Parsed) classifyInto(props Props, classNamePropKey string, mqs []MediaQuery, query string) {
	for _, prop := range props {
		c := ClassifyKey(prop.Key, classNamePropKey, nil)
		if c.Kind == KindPassthrough {
			continue
		}
		c.MediaQuery = query
		p.apply(c, prop.Value)
	}
}

func (p *Parsed) apply(c Classification, value any) {
	for _, target := range c.Targets {
		sp := StyleProperty{
			PropName:      target,
			PropValue:     value,
			Pseudoclass:   c.Pseudoclass,
			Pseudoelement: c.Pseudoelement,
			MediaQuery:    c.MediaQuery,
			Specificity:   c.Specificity,
		}
		if !truthy(value) {
			p.drop(sp)
			continue
		}
		p.put(sp)
		if sp.MediaQuery != "" && !containsString(p.media, sp.MediaQuery) {
			p.media = append(p.media, sp.MediaQuery)
		}
	}
}

// orderMedia sorts media buckets by registration order of the named media
// queries; inline @media blocks keep their first-seen position after them.
func (p *Parsed) orderMedia(mqs []MediaQuery) {
	if len(p.media) < 2 {
		return
	}
	ordered := make([]string, 0, len(p.media))
	for _, mq := range mqs {
		if containsString(p.media, mq.Query) && !containsString(ordered, mq.Query) {
			ordered = append(ordered, mq.Query)
		}
	}
	for _, q := range p.media {
		if !containsString(ordered, q) {
			ordered = append(ordered, q)
		}
	}
	p.media = ordered
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
