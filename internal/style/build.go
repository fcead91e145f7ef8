package style

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// MaxSpecificity caps the number of extra class repetitions in a selector.
const MaxSpecificity = 4

// mediaQueryBonus is added to media-queried rules so they outrank the
// un-queried rule for the same property. The value matches long-standing
// browser output and must not be re-derived.
const mediaQueryBonus = 2

// ClassNameFunc maps a style key to a class name.
type ClassNameFunc func(key string) string

// BuildOptions configures Build.
type BuildOptions struct {
	// ClassName defaults to HashClassName.
	ClassName ClassNameFunc
	Logger    *zap.Logger
}

// Rule is one CSS rule produced for a style key.
type Rule struct {
	Key       string
	ClassName string
	Text      string
	Keyframes bool
}

// Result is the outcome of Build.
type Result struct {
	Props      Props
	ClassNames []string
	Rules      []Rule
}

// ClassNameString joins the generated class names.
func (r Result) ClassNameString() string {
	return strings.Join(r.ClassNames, " ")
}

type declaration struct {
	prop      StyleProperty
	cssName   string
	value     string
	key       string
	bucket    int
	keyframes *Rule
}

// Build turns classified properties into class names and CSS rules and
// merges the class names into componentProps under classNamePropKey.
func Build(parsed *Parsed, componentProps Props, classNamePropKey string, opts BuildOptions) Result {
	if opts.ClassName == nil {
		opts.ClassName = HashClassName
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	result := Result{Props: componentProps.Clone()}
	seen := make(map[string]bool)

	for _, d := range resolve(parsed, log) {
		if d.keyframes != nil && !seen[d.keyframes.Key] {
			seen[d.keyframes.Key] = true
			result.Rules = append(result.Rules, *d.keyframes)
		}
		className := opts.ClassName(d.key)
		if className == "" || seen[d.key] {
			continue
		}
		seen[d.key] = true
		result.ClassNames = append(result.ClassNames, className)
		result.Rules = append(result.Rules, Rule{
			Key:       d.key,
			ClassName: className,
			Text:      ruleText(d, className),
		})
	}

	result.Props = MergeClassName(result.Props, classNamePropKey, result.ClassNameString())
	return result
}

// MergeClassName appends classes to the string under classNamePropKey.
func MergeClassName(props Props, classNamePropKey, classes string) Props {
	if classes == "" {
		return props
	}
	if existing, ok := props.Get(classNamePropKey); ok {
		if s, ok := existing.(string); ok && strings.TrimSpace(s) != "" {
			classes = strings.TrimSpace(s) + " " + classes
		}
	}
	return props.Set(classNamePropKey, classes)
}

// Key returns the canonical cache key of the whole bag. Semantically
// identical bags produce identical keys.
func (p *Parsed) Key() string {
	var b strings.Builder
	for _, d := range resolve(p, zap.NewNop()) {
		b.WriteString(d.key)
		b.WriteByte(';')
	}
	return b.String()
}

// resolve serializes every property and orders the declarations by bucket:
// base, pseudo-class, pseudo-element, then media queries in registration
// order. Insertion order is kept within a bucket.
func resolve(parsed *Parsed, log *zap.Logger) []declaration {
	if parsed.Len() == 0 {
		return nil
	}
	decls := make([]declaration, 0, len(parsed.props))
	for _, sp := range parsed.props {
		d := declaration{prop: sp, cssName: Hyphenate(sp.PropName)}

		if sp.PropName == "animation" {
			if frames, ok := sp.PropValue.(Props); ok {
				kf := buildKeyframes(frames, log)
				if kf == nil {
					continue
				}
				d.keyframes = kf
				d.cssName = "animation-name"
				d.value = kf.ClassName
			}
		}
		if d.keyframes == nil {
			value, err := Value(sp.PropName, sp.PropValue)
			if err != nil {
				log.Warn("Skipping style property", zap.String("prop", sp.PropName), zap.Error(err))
				continue
			}
			if value == "" {
				continue
			}
			d.value = value
		}

		d.key = declarationKey(sp, d.cssName, d.value)
		d.bucket = bucketOf(sp, parsed.media)
		decls = append(decls, d)
	}
	sort.SliceStable(decls, func(i, j int) bool { return decls[i].bucket < decls[j].bucket })
	return decls
}

func declarationKey(sp StyleProperty, cssName, value string) string {
	var b strings.Builder
	if sp.MediaQuery != "" {
		b.WriteString("@media ")
		b.WriteString(sp.MediaQuery)
		b.WriteByte('~')
	}
	if sp.Pseudoclass != "" {
		b.WriteByte(':')
		b.WriteString(sp.Pseudoclass)
		b.WriteByte('~')
	}
	if sp.Pseudoelement != "" {
		b.WriteString("::")
		b.WriteString(sp.Pseudoelement)
		b.WriteByte('~')
	}
	b.WriteString(cssName)
	b.WriteByte(':')
	b.WriteString(value)
	return b.String()
}

func bucketOf(sp StyleProperty, media []string) int {
	if sp.MediaQuery != "" {
		for i, q := range media {
			if q == sp.MediaQuery {
				return 3 + i
			}
		}
		return 3 + len(media)
	}
	if sp.Pseudoelement != "" {
		return 2
	}
	if sp.Pseudoclass != "" {
		return 1
	}
	return 0
}

// Selector builds the repeated-class selector for a declaration.
func Selector(className string, specificity int, pseudoclass, pseudoelement string) string {
	if specificity > MaxSpecificity {
		specificity = MaxSpecificity
	}
	if specificity < 0 {
		specificity = 0
	}
	var b strings.Builder
	for i := 0; i <= specificity; i++ {
		b.WriteByte('.')
		b.WriteString(className)
	}
	if pseudoclass != "" {
		b.WriteByte(':')
		b.WriteString(pseudoclass)
	}
	if pseudoelement != "" {
		b.WriteString("::")
		b.WriteString(pseudoelement)
	}
	return b.String()
}

func ruleText(d declaration, className string) string {
	specificity := d.prop.Specificity
	if d.prop.MediaQuery != "" {
		specificity += mediaQueryBonus
	}
	rule := Selector(className, specificity, d.prop.Pseudoclass, d.prop.Pseudoelement) +
		" { " + d.cssName + ":" + d.value + "; }"
	if d.prop.MediaQuery != "" {
		return "@media " + d.prop.MediaQuery + " { " + rule + " }"
	}
	return rule
}

// buildKeyframes compiles an animation frame map into a @keyframes rule
// named after the hash of its body. Frames with pseudo or media prefixed
// properties, and empty frames, are skipped with a diagnostic. nil means
// no frame survived.
func buildKeyframes(frames Props, log *zap.Logger) *Rule {
	var body strings.Builder
	for _, frame := range frames {
		styles, ok := frame.Value.(Props)
		if !ok {
			log.Error("Animation frame is not a style object", zap.String("frame", frame.Key))
			continue
		}
		decls, ok := frameDeclarations(frame.Key, styles, log)
		if !ok {
			continue
		}
		if decls == "" {
			log.Warn("Skipping empty animation frame", zap.String("frame", frame.Key))
			continue
		}
		if body.Len() > 0 {
			body.WriteByte(' ')
		}
		body.WriteString(frame.Key)
		body.WriteString(" { ")
		body.WriteString(decls)
		body.WriteString("}")
	}
	if body.Len() == 0 {
		log.Error("Animation has no valid frames")
		return nil
	}
	name := HashClassName(body.String())
	key := "@keyframes " + body.String()
	return &Rule{
		Key:       key,
		ClassName: name,
		Text:      "@keyframes " + name + " { " + body.String() + " }",
		Keyframes: true,
	}
}

func frameDeclarations(frameKey string, styles Props, log *zap.Logger) (string, bool) {
	var b strings.Builder
	for _, prop := range styles {
		if strings.HasPrefix(prop.Key, "@") {
			log.Error("Media queries are not allowed in animation frames",
				zap.String("frame", frameKey), zap.String("prop", prop.Key))
			return "", false
		}
		c := ClassifyKey(prop.Key, "", nil)
		if c.Kind == KindPassthrough {
			continue
		}
		if c.Pseudoclass != "" || c.Pseudoelement != "" {
			log.Error("Pseudo-prefixed properties are not allowed in animation frames",
				zap.String("frame", frameKey), zap.String("prop", prop.Key))
			return "", false
		}
		if !truthy(prop.Value) {
			continue
		}
		for _, target := range c.Targets {
			value, err := Value(target, prop.Value)
			if err != nil {
				log.Warn("Skipping animation frame property", zap.String("frame", frameKey), zap.Error(err))
				continue
			}
			if value == "" {
				continue
			}
			b.WriteString(Hyphenate(target))
			b.WriteByte(':')
			b.WriteString(value)
			b.WriteString("; ")
		}
	}
	return b.String(), true
}
