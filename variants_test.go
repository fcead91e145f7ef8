package jsxcss

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const darkQuery = "screen and (prefers-color-scheme: dark)"

func themeBuilder() *VariantBuilder {
	return MakeCustomProperties(Props{
		{Key: "color", Value: "black"},
		{Key: "padding", Value: 4},
	}).AddVariant("dark", Props{
		{Key: "mediaQuery", Value: darkQuery},
		{Key: "colorScheme", Value: "dark"},
		{Key: "color", Value: "white"},
	})
}

func TestVariants_Build(t *testing.T) {
	cp, err := themeBuilder().Build(BuildVariantsOptions{})
	require.NoError(t, err)

	assert.Equal(t, []CustomProperty{
		{Prop: "color", Name: "--jsxstyle-color", Value: "black", Var: "var(--jsxstyle-color)"},
		{Prop: "padding", Name: "--jsxstyle-padding", Value: "4px", Var: "var(--jsxstyle-padding)"},
	}, cp.Properties)
	assert.Equal(t, []string{
		":root { --jsxstyle-color:black; --jsxstyle-padding:4px; }",
		":root.jsxstyle-default { --jsxstyle-color:black; --jsxstyle-padding:4px; }",
		":root.jsxstyle-dark { color-scheme:dark; --jsxstyle-color:white; }",
		"@media " + darkQuery + " { :root { color-scheme:dark; --jsxstyle-color:white; } }",
	}, cp.Styles)
	assert.Equal(t, map[string]VariantInfo{
		"default": {ClassName: "jsxstyle-default"},
		"dark":    {ClassName: "jsxstyle-dark", MediaQuery: darkQuery},
	}, cp.Variants)
	assert.Equal(t, []string{"default", "dark"}, cp.Order)

	ref, ok := cp.Var("color")
	assert.True(t, ok)
	assert.Equal(t, "var(--jsxstyle-color)", ref)
	_, ok = cp.Var("margin")
	assert.False(t, ok)
	assert.True(t, strings.HasSuffix(cp.CSS(), "} }\n"))
}

func TestVariants_Options(t *testing.T) {
	cp, err := themeBuilder().Build(BuildVariantsOptions{Namespace: "theme", Mangle: true, Selector: "html"})
	require.NoError(t, err)

	assert.Equal(t, "--theme0", cp.Properties[0].Name)
	assert.Equal(t, "--theme1", cp.Properties[1].Name)
	assert.Equal(t, "theme_1", cp.Variants["dark"].ClassName)
	assert.Equal(t, "html { --theme0:black; --theme1:4px; }", cp.Styles[0])
	assert.Equal(t, "html.theme_1 { color-scheme:dark; --theme0:white; }", cp.Styles[2])
}

func TestVariants_Errors(t *testing.T) {
	defaults := Props{{Key: "color", Value: "black"}}
	tests := []struct {
		name    string
		builder func() *VariantBuilder
		wantErr error
	}{
		{
			name:    "missing default",
			builder: func() *VariantBuilder { return MakeCustomProperties(nil) },
			wantErr: ErrMissingDefault,
		},
		{
			name: "unknown property",
			builder: func() *VariantBuilder {
				return MakeCustomProperties(defaults).AddVariant("dark", Props{{Key: "margin", Value: 1}})
			},
			wantErr: ErrUnknownVariantProperty,
		},
		{
			name: "duplicate variant",
			builder: func() *VariantBuilder {
				return MakeCustomProperties(defaults).
					AddVariant("dark", Props{{Key: "color", Value: "white"}}).
					AddVariant("dark", Props{{Key: "color", Value: "gray"}})
			},
			wantErr: ErrDuplicateVariant,
		},
		{
			name: "variant named default",
			builder: func() *VariantBuilder {
				return MakeCustomProperties(defaults).AddVariant("default", Props{{Key: "color", Value: "white"}})
			},
			wantErr: ErrDuplicateVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder().Build(BuildVariantsOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVariants_BuildOnce(t *testing.T) {
	b := themeBuilder()
	_, err := b.Build(BuildVariantsOptions{})
	require.NoError(t, err)

	_, err = b.Build(BuildVariantsOptions{})
	assert.ErrorIs(t, err, ErrVariantsBuilt)
	_, err = b.AddVariant("light", Props{{Key: "color", Value: "black"}}).Build(BuildVariantsOptions{})
	assert.ErrorIs(t, err, ErrVariantsBuilt)
}

func TestLoadVariantsYAML(t *testing.T) {
	doc := `
dark:
  mediaQuery: "screen and (prefers-color-scheme: dark)"
  colorScheme: dark
  color: white
default:
  color: black
  padding: 4
`
	b, err := LoadVariantsYAML(strings.NewReader(doc))
	require.NoError(t, err)
	got, err := b.Build(BuildVariantsOptions{})
	require.NoError(t, err)

	want, err := themeBuilder().Build(BuildVariantsOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, darkQuery, got.Variants["dark"].MediaQuery)

	t.Run("missing default", func(t *testing.T) {
		_, err := LoadVariantsYAML(strings.NewReader("dark:\n  color: white\n"))
		assert.ErrorIs(t, err, ErrMissingDefault)
	})

	t.Run("nested values", func(t *testing.T) {
		_, err := LoadVariantsYAML(strings.NewReader("default:\n  color:\n    - red\n"))
		assert.Error(t, err)
	})
}
