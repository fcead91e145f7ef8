package jsxcss

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yacobolo/jsxcss/internal/style"
)

var (
	// ErrVariantsBuilt is returned when a builder is used after Build.
	ErrVariantsBuilt = errors.New("jsxcss: variants already built")
	// ErrUnknownVariantProperty is returned when a variant sets a property the default variant lacks.
	ErrUnknownVariantProperty = errors.New("jsxcss: variant sets a property missing from default")
	// ErrDuplicateVariant is returned when a variant name is taken.
	ErrDuplicateVariant = errors.New("jsxcss: duplicate variant")
	// ErrMissingDefault is returned when a variant set has no default values.
	ErrMissingDefault = errors.New("jsxcss: variants need a default")
)

const (
	// DefaultVariant names the baseline variant.
	DefaultVariant = "default"
	// DefaultNamespace prefixes custom property and class names.
	DefaultNamespace = "jsxstyle"
)

// Variant options that are not custom properties.
const (
	variantMediaQuery  = "mediaQuery"
	variantColorScheme = "colorScheme"
)

var namespaceRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// BuildVariantsOptions configures Build.
type BuildVariantsOptions struct {
	// Namespace defaults to DefaultNamespace.
	Namespace string
	// Mangle replaces property names with short generated names.
	Mangle bool
	// Selector is the element carrying the properties. Defaults to ":root".
	Selector string
}

// CustomProperty is one property of the default variant.
type CustomProperty struct {
	// Prop is the camelCase name it was declared with.
	Prop  string
	Name  string
	Value string
	// Var references the property: var(--name).
	Var string
}

// VariantInfo describes how a variant is activated.
type VariantInfo struct {
	ClassName  string
	MediaQuery string
}

// CustomProperties is the output of a variant build.
type CustomProperties struct {
	Properties []CustomProperty
	// Styles are CSS rules: the baseline first, then one rule per variant
	// and one @media rule per variant with a media query.
	Styles   []string
	Variants map[string]VariantInfo
	// Order lists variant names, default first.
	Order []string
}

// Var returns the var() reference for prop.
func (cp *CustomProperties) Var(prop string) (string, bool) {
	for _, p := range cp.Properties {
		if p.Prop == prop {
			return p.Var, true
		}
	}
	return "", false
}

// CSS joins Styles.
func (cp *CustomProperties) CSS() string {
	if len(cp.Styles) == 0 {
		return ""
	}
	return strings.Join(cp.Styles, "\n") + "\n"
}

type variant struct {
	name  string
	props style.Props
}

// VariantBuilder collects variants until Build is called.
type VariantBuilder struct {
	defaults style.Props
	variants []variant
	built    bool
	err      error
}

// MakeCustomProperties starts a variant set from its default values.
func MakeCustomProperties(defaults Props) *VariantBuilder {
	b := &VariantBuilder{defaults: defaults}
	if defaults == nil {
		b.err = ErrMissingDefault
	}
	return b
}

// AddVariant registers a named set of overrides. Errors are reported by
// Build.
func (b *VariantBuilder) AddVariant(name string, props Props) *VariantBuilder {
	if b.err != nil {
		return b
	}
	if b.built {
		b.err = ErrVariantsBuilt
		return b
	}
	if name == DefaultVariant {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateVariant, name)
		return b
	}
	for _, v := range b.variants {
		if v.name == name {
			b.err = fmt.Errorf("%w: %q", ErrDuplicateVariant, name)
			return b
		}
	}
	for _, p := range props {
		if p.Key == variantMediaQuery || p.Key == variantColorScheme {
			continue
		}
		if _, ok := b.defaults.Get(p.Key); !ok {
			b.err = fmt.Errorf("%w: %s.%s", ErrUnknownVariantProperty, name, p.Key)
			return b
		}
	}
	b.variants = append(b.variants, variant{name: name, props: props})
	return b
}

// Build emits the custom properties. It may be called once.
func (b *VariantBuilder) Build(opts BuildVariantsOptions) (*CustomProperties, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, ErrVariantsBuilt
	}
	b.built = true

	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if !namespaceRe.MatchString(opts.Namespace) {
		return nil, fmt.Errorf("jsxcss: invalid variant namespace %q", opts.Namespace)
	}
	if opts.Selector == "" {
		opts.Selector = ":root"
	}

	cp := &CustomProperties{Variants: make(map[string]VariantInfo)}
	names := make(map[string]string)
	for _, p := range b.defaults {
		if p.Key == variantMediaQuery || p.Key == variantColorScheme {
			continue
		}
		value, err := style.Value(p.Key, p.Value)
		if err != nil {
			return nil, fmt.Errorf("default.%s: %w", p.Key, err)
		}
		if value == "" {
			continue
		}
		name := "--" + opts.Namespace + "-" + strings.TrimPrefix(style.Hyphenate(p.Key), "-")
		if opts.Mangle {
			name = "--" + opts.Namespace + strconv.FormatInt(int64(len(cp.Properties)), 36)
		}
		names[p.Key] = name
		cp.Properties = append(cp.Properties, CustomProperty{
			Prop:  p.Key,
			Name:  name,
			Value: value,
			Var:   "var(" + name + ")",
		})
	}

	all := append([]variant{{name: DefaultVariant, props: b.defaults}}, b.variants...)
	for i, v := range all {
		decls, err := variantDeclarations(v, names)
		if err != nil {
			return nil, err
		}
		info := VariantInfo{ClassName: opts.Namespace + "-" + v.name}
		if opts.Mangle {
			info.ClassName = opts.Namespace + "_" + strconv.FormatInt(int64(i), 36)
		}
		if mq, ok := v.props.Get(variantMediaQuery); ok {
			if s, ok := mq.(string); ok {
				info.MediaQuery = s
			}
		}
		cp.Variants[v.name] = info
		cp.Order = append(cp.Order, v.name)

		if v.name == DefaultVariant {
			cp.Styles = append(cp.Styles, opts.Selector+" { "+decls+"}")
		}
		cp.Styles = append(cp.Styles, opts.Selector+"."+info.ClassName+" { "+decls+"}")
		if info.MediaQuery != "" {
			cp.Styles = append(cp.Styles, "@media "+info.MediaQuery+" { "+opts.Selector+" { "+decls+"} }")
		}
	}
	return cp, nil
}

// variantDeclarations renders only the properties v sets.
func variantDeclarations(v variant, names map[string]string) (string, error) {
	var b strings.Builder
	for _, p := range v.props {
		if p.Key == variantMediaQuery {
			continue
		}
		value, err := style.Value(p.Key, p.Value)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", v.name, p.Key, err)
		}
		if value == "" {
			continue
		}
		name := names[p.Key]
		if p.Key == variantColorScheme {
			name = "color-scheme"
		}
		if name == "" {
			continue
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(value)
		b.WriteString("; ")
	}
	return b.String(), nil
}

// LoadVariantsYAML reads a variant set from a YAML mapping of variant name
// to property mapping. Key order is kept and a default variant is required.
//
//	default:
//	  color: black
//	  background: white
//	dark:
//	  mediaQuery: "screen and (prefers-color-scheme: dark)"
//	  colorScheme: dark
//	  color: white
func LoadVariantsYAML(r io.Reader) (*VariantBuilder, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingDefault
		}
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("variants: line %d: expected a mapping", root.Line)
	}

	var defaults Props
	var others []variant
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		props, err := yamlProps(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", name, err)
		}
		if name == DefaultVariant {
			defaults = props
			continue
		}
		others = append(others, variant{name: name, props: props})
	}
	if defaults == nil {
		return nil, ErrMissingDefault
	}

	b := MakeCustomProperties(defaults)
	for _, v := range others {
		b.AddVariant(v.name, v.props)
	}
	return b, b.err
}

func yamlProps(n *yaml.Node) (Props, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	props := make(Props, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s must be a scalar", value.Line, key.Value)
		}
		var v any
		if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", value.Line, err)
		}
		props = append(props, Prop{Key: key.Value, Value: v})
	}
	return props, nil
}
