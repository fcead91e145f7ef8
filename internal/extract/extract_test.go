package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/jsxcss/internal/style"
)

var h = style.HashClassName

func extract(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	res, err := Extract(context.Background(), []byte(src), "app.jsx", opts)
	require.NoError(t, err)
	return res
}

// body drops the import lines so assertions focus on the rewritten JSX.
func body(js string) string {
	var lines []string
	for _, line := range strings.Split(js, "\n") {
		if !strings.HasPrefix(line, "import ") {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func TestExtract_StaticElements(t *testing.T) {
	red := h("color:red")
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "block collapses to div",
			src:  "import { Block } from \"jsxstyle\";\n<Block color=\"red\">hi</Block>;",
			want: `<div className="` + h("display:block") + " " + red + `">hi</div>;`,
		},
		{
			name: "self closing inline",
			src:  "import { Inline } from \"jsxstyle\";\n<Inline color=\"red\" />;",
			want: `<div className="_1lvn9cc ` + red + `" />;`,
		},
		{
			name: "passthrough props and className",
			src:  "import { Box } from \"jsxstyle\";\n<Box className=\"a\" id=\"x\" color=\"red\" />;",
			want: `<div id="x" className="a ` + red + `" />;`,
		},
		{
			name: "aliased import",
			src:  "import { Box as B } from \"jsxstyle\";\n<B color=\"red\" />;",
			want: `<div className="` + red + `" />;`,
		},
		{
			name: "namespace import",
			src:  "import * as js from \"jsxstyle\";\n<js.Box color=\"red\" />;",
			want: `<div className="` + red + `" />;`,
		},
		{
			name: "const binding",
			src:  "import { Box } from \"jsxstyle\";\nconst c = \"red\";\n<Box color={c} />;",
			want: "const c = \"red\";\n" + `<div className="` + red + `" />;`,
		},
		{
			name: "static spread",
			src:  "import { Box } from \"jsxstyle\";\n<Box {...{ color: \"red\" }} />;",
			want: `<div className="` + red + `" />;`,
		},
		{
			name: "component tag",
			src:  "import { Box } from \"jsxstyle\";\n<Box component=\"span\" color=\"red\">x</Box>;",
			want: `<span className="` + red + `">x</span>;`,
		},
		{
			name: "last prop wins",
			src:  "import { Box } from \"jsxstyle\";\n<Box color=\"blue\" color=\"red\" />;",
			want: `<div className="` + red + `" />;`,
		},
		{
			name: "nested elements",
			src:  "import { Block, Inline } from \"jsxstyle\";\n<Block><Inline color=\"red\" /></Block>;",
			want: `<div className="` + h("display:block") + `"><div className="_1lvn9cc ` + red + `" /></div>;`,
		},
		{
			name: "css call",
			src:  "import { css } from \"jsxstyle\";\nconst cls = css({ color: \"red\" });",
			want: `const cls = "` + red + `";`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extract(t, tt.src, Options{})
			assert.Equal(t, tt.want, body(res.JS))
			assert.Empty(t, res.Diagnostics)
			assert.NotEmpty(t, res.CSS)
		})
	}
}

func TestExtract_Stats(t *testing.T) {
	src := "import { Box, css } from \"jsxstyle\";\n" +
		"const A = (p) => <Box color=\"red\"><Box color={p.c} /></Box>;\n" +
		"const cls = css({ margin: 1 });\n"
	res := extract(t, src, Options{})
	assert.Equal(t, Stats{Elements: 2, Extracted: 1, Partial: 1, Calls: 1, Rules: 2}, res.Stats)
}

func TestExtract_PartialElement(t *testing.T) {
	t.Run("injects Box import", func(t *testing.T) {
		src := "import { Block } from \"jsxstyle\";\nconst A = ({ c }) => <Block color={c} margin={2} />;"
		res := extract(t, src, Options{})

		assert.Contains(t, res.JS, `import { Box as __jsxcss_Box } from "jsxstyle";`)
		assert.Contains(t, res.JS,
			`<__jsxcss_Box color={c} className="`+h("display:block")+" "+h("margin:2px")+`" />`)
		assert.Equal(t, 1, res.Stats.Partial)
	})

	t.Run("uses existing Box binding", func(t *testing.T) {
		src := "import { Box, Row } from \"jsxstyle\";\nconst A = ({ c }) => <Row color={c} component=\"ul\">x</Row>;"
		res := extract(t, src, Options{})

		assert.NotContains(t, res.JS, BoxAlias)
		assert.Contains(t, res.JS, `<Box color={c} component="ul" className="`+
			h("display:flex")+" "+h("flex-direction:row")+`">x</Box>`)
	})

	t.Run("props before unknown spread stay", func(t *testing.T) {
		src := "import { Box } from \"jsxstyle\";\nconst A = (rest) => <Box color=\"red\" {...rest} margin={1} />;"
		res := extract(t, src, Options{})

		assert.Contains(t, res.JS, `<Box color="red" {...rest} className="`+h("margin:1px")+`" />`)
		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "spread")
		assert.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
	})

	t.Run("ambiguous component", func(t *testing.T) {
		src := "import { Box } from \"jsxstyle\";\nconst A = (p) => <Box component={p.tag || \"div\"} color=\"red\" />;"
		res := extract(t, src, Options{})

		assert.Contains(t, res.JS, `<Box component={p.tag || "div"} className="`+h("color:red")+`" />`)
		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "ambiguous")
	})
}

func TestExtract_Conditionals(t *testing.T) {
	red, blue := h("color:red"), h("color:blue")
	tests := []struct {
		name string
		attr string
		want string
	}{
		{
			name: "ternary",
			attr: `color={on ? "red" : "blue"}`,
			want: `className={[(on) ? "` + red + `" : "` + blue + `"].filter(Boolean).join(" ")}`,
		},
		{
			name: "and",
			attr: `color={on && "red"}`,
			want: `className={[(on) ? "` + red + `" : ""].filter(Boolean).join(" ")}`,
		},
		{
			name: "dynamic className",
			attr: `className={on}`,
			want: `className={[(on)].filter(Boolean).join(" ")}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "import { Box } from \"jsxstyle\";\nconst A = (on) => <Box " + tt.attr + " />;"
			res := extract(t, src, Options{})
			assert.Contains(t, res.JS, "<div "+tt.want+" />")
			assert.Equal(t, 1, res.Stats.Extracted)
		})
	}
}

func TestExtract_Untouched(t *testing.T) {
	t.Run("no styling import", func(t *testing.T) {
		src := "import React from \"react\";\nconst A = () => <Box color=\"red\" />;\n"
		res := extract(t, src, Options{})
		assert.Equal(t, src, res.JS)
		assert.Empty(t, res.CSS)
	})

	t.Run("idempotent", func(t *testing.T) {
		src := "import { Block } from \"jsxstyle\";\nconst A = () => <Block color=\"red\" />;\n"
		first := extract(t, src, Options{CSSMode: CSSNone})
		second := extract(t, first.JS, Options{CSSMode: CSSNone})
		assert.Equal(t, first.JS, second.JS)
		assert.Empty(t, second.CSS)
	})

	t.Run("dynamic media queries", func(t *testing.T) {
		src := "import { Box } from \"jsxstyle\";\nconst A = (mq) => <Box mediaQueries={mq} smColor=\"red\" />;\n"
		res := extract(t, src, Options{})
		assert.Equal(t, src, res.JS)
		assert.Equal(t, 1, res.Stats.Untouched)
	})

	t.Run("dynamic css call", func(t *testing.T) {
		src := "import { css } from \"jsxstyle\";\nconst f = (c) => css({ color: c });\n"
		res := extract(t, src, Options{})
		assert.Equal(t, src, res.JS)
		require.Len(t, res.Diagnostics, 1)
	})
}

func TestExtract_FailureIsolation(t *testing.T) {
	red := h("color:red")
	tests := []struct {
		name        string
		bad         string
		wantBad     string
		diagnostics int
	}{
		{
			name:        "unknown spread",
			bad:         `<Block {...p} />`,
			wantBad:     `<__jsxcss_Box {...p} className="` + h("display:block") + `" />`,
			diagnostics: 1,
		},
		{
			name:        "failed evaluation",
			bad:         `<Block margin={xs[5].top} />`,
			wantBad:     `<__jsxcss_Box margin={xs[5].top} className="` + h("display:block") + `" />`,
			diagnostics: 1,
		},
		{
			name:    "out of range constant index",
			bad:     `<Block margin={xs[1e20]} />`,
			wantBad: `<div className="` + h("display:block") + `" />`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "import { Block } from \"jsxstyle\";\nconst xs = [1, 2];\n" +
				"const A = (p) => " + tt.bad + ";\n" +
				"const B = () => <Block color=\"red\" />;\n"
			res := extract(t, src, Options{})

			assert.Contains(t, res.JS, tt.wantBad)
			assert.Contains(t, res.JS, `<div className="`+h("display:block")+" "+red+`" />`)
			assert.Contains(t, res.CSS, "."+red+" { color:red; }")
			assert.Len(t, res.Diagnostics, tt.diagnostics)
		})
	}
}

func TestExtract_RecoversFromPanic(t *testing.T) {
	className := func(key string) string {
		if strings.Contains(key, "blue") {
			panic("no class for " + key)
		}
		return h(key)
	}
	src := "import { Box } from \"jsxstyle\";\n" +
		"const A = () => <Box color=\"blue\" margin={1} />;\n" +
		"const B = () => <Box color=\"red\" />;\n"
	res := extract(t, src, Options{ClassName: className})

	assert.Contains(t, res.JS, `<Box color="blue" margin={1} />`)
	assert.Contains(t, res.JS, `<div className="`+h("color:red")+`" />`)
	assert.Equal(t, 1, res.Stats.Rules)
	assert.NotContains(t, res.CSS, h("margin:1px"))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, SeverityError, res.Diagnostics[0].Severity)
	assert.Contains(t, res.Diagnostics[0].Message, "no class for color:blue")
	assert.Equal(t, 2, res.Diagnostics[0].Location.Line)
}

func TestExtract_ShadowedComponent(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "destructured parameter",
			src:  "import { Block } from \"jsxstyle\";\nconst A = ({ Block }) => <Block color=\"red\" />;\n",
		},
		{
			name: "local const",
			src:  "import { Block } from \"jsxstyle\";\nfunction A() {\n  const Block = \"span\";\n  return <Block color=\"red\" />;\n}\n",
		},
		{
			name: "shadowed namespace",
			src:  "import * as js from \"jsxstyle\";\nconst A = (js) => <js.Box color=\"red\" />;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extract(t, tt.src, Options{})
			assert.Equal(t, tt.src, res.JS)
			assert.Empty(t, res.CSS)
			assert.Zero(t, res.Stats.Elements)
		})
	}
}

func TestExtract_SyntaxError(t *testing.T) {
	_, err := Extract(context.Background(), []byte("import { Box } from \"jsxstyle\";\n<Box color=\"red\" </Box>"), "bad.jsx", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
	assert.Contains(t, err.Error(), "bad.jsx:")
}

func TestExtract_CSSModes(t *testing.T) {
	src := "import { Box } from \"jsxstyle\";\n<Box color=\"red\" />;"

	t.Run("file", func(t *testing.T) {
		res := extract(t, src, Options{})
		assert.Equal(t, "app__jsxstyle.css", res.CSSFileName)
		assert.Contains(t, res.JS, "import \"./app__jsxstyle.css\";")
		assert.Equal(t, "/* app.jsx:2 (Box) */\n._1jvcvsh { color:red; }\n", res.CSS)
	})

	t.Run("inline", func(t *testing.T) {
		res := extract(t, src, Options{CSSMode: CSSInline})
		assert.Empty(t, res.CSSFileName)
		assert.Contains(t, res.JS, "import \"data:text/css;base64,")
	})

	t.Run("none", func(t *testing.T) {
		res := extract(t, src, Options{CSSMode: CSSNone})
		assert.Empty(t, res.CSSFileName)
		assert.NotContains(t, res.JS, "import \"")
		assert.NotEmpty(t, res.CSS)
	})

	t.Run("pretty", func(t *testing.T) {
		res := extract(t, src, Options{Pretty: true})
		assert.Contains(t, res.CSS, "._1jvcvsh {\n  color: red;\n}\n")
	})
}

func TestExtract_MediaQueries(t *testing.T) {
	mqs := []style.MediaQuery{{Name: "sm", Query: "screen and (max-width: 640px)"}}

	t.Run("option", func(t *testing.T) {
		res := extract(t, "import { Box } from \"jsxstyle\";\n<Box smColor=\"red\" />;", Options{MediaQueries: mqs})
		assert.Contains(t, res.CSS, "@media screen and (max-width: 640px) { ")
		assert.Equal(t, 1, res.Stats.Extracted)
	})

	t.Run("prop", func(t *testing.T) {
		res := extract(t, "import { Box } from \"jsxstyle\";\n<Box mediaQueries={{ lg: \"print\" }} lgColor=\"red\" />;", Options{})
		assert.Contains(t, res.CSS, "@media print { ")
		assert.NotContains(t, res.JS, "mediaQueries")
	})
}

func TestExtract_SourceMap(t *testing.T) {
	res := extract(t, "import { Box } from \"jsxstyle\";\n<Box color=\"red\" />;", Options{SourceMap: true})
	require.NotEmpty(t, res.Map)

	var m struct {
		Version  int      `json:"version"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Map), &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, []string{"app.jsx"}, m.Sources)
	assert.Equal(t, strings.Count(res.JS, "\n"), strings.Count(m.Mappings, ";"))
}

func TestExtract_WarningsAsErrors(t *testing.T) {
	var reported []Diagnostic
	src := "import { Box } from \"jsxstyle\";\nconst A = (r) => <Box {...r} />;"
	res := extract(t, src, Options{
		WarningsAsErrors: true,
		Report:           func(d Diagnostic) { reported = append(reported, d) },
	})
	require.Len(t, reported, 1)
	assert.Equal(t, SeverityError, reported[0].Severity)
	assert.Equal(t, 2, reported[0].Location.Line)
	assert.Equal(t, reported, res.Diagnostics)
}

func TestExtract_TypeScript(t *testing.T) {
	src := "import { Box } from \"jsxstyle\";\nconst A = (): JSX.Element => <Box color={\"red\" as const} />;"
	res, err := Extract(context.Background(), []byte(src), "app.tsx", Options{})
	require.NoError(t, err)
	assert.Contains(t, res.JS, `<div className="_1jvcvsh" />`)
}

type fakeLoader map[string]style.Props

func (f fakeLoader) Load(_ context.Context, specifier, _ string) (style.Props, error) {
	exports, ok := f[specifier]
	if !ok {
		return nil, errors.New("not found")
	}
	return exports, nil
}

func TestExtract_WhitelistedModules(t *testing.T) {
	loader := fakeLoader{"./theme": {
		{Key: "theme", Value: style.Props{{Key: "primary", Value: "red"}}},
	}}
	src := "import { Box } from \"jsxstyle\";\nimport { theme } from \"./theme\";\n<Box color={theme.primary} />;"

	t.Run("whitelisted", func(t *testing.T) {
		res := extract(t, src, Options{WhitelistedModules: []string{"./theme"}, Loader: loader})
		assert.Contains(t, res.JS, `<div className="_1jvcvsh" />`)
	})

	t.Run("not whitelisted", func(t *testing.T) {
		res := extract(t, src, Options{Loader: loader})
		assert.Contains(t, res.JS, `<Box color={theme.primary} />`)
		assert.NotContains(t, res.JS, BoxAlias)
		assert.Empty(t, res.CSS)
		assert.Equal(t, 1, res.Stats.Partial)
	})
}

func TestModuleExports(t *testing.T) {
	src := `import { x } from "y";
const local = 4;
export const primary = "red";
export const space = local * 2;
export const dyn = x;
export { local as gap };
export default { primary };
`
	exports, err := ModuleExports(context.Background(), []byte(src), "theme.js")
	require.NoError(t, err)
	assert.Equal(t, style.Props{
		{Key: "primary", Value: "red"},
		{Key: "space", Value: 8.0},
		{Key: "gap", Value: 4.0},
		{Key: "default", Value: style.Props{{Key: "primary", Value: "red"}}},
	}, exports)
}
