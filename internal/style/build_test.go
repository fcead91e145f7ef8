package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func build(props Props, mqs []MediaQuery, opts BuildOptions) Result {
	parsed, componentProps := Classify(props, "className", mqs)
	return Build(parsed, componentProps, "className", opts)
}

func ruleTexts(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Text)
	}
	return out
}

func TestBuild_AppendsToExistingClassName(t *testing.T) {
	result := build(Props{
		{Key: "display", Value: "inline"},
		{Key: "color", Value: "red"},
		{Key: "className", Value: "bla"},
	}, nil, BuildOptions{})

	className, ok := result.Props.Get("className")
	require.True(t, ok)
	assert.Equal(t, "bla _1lvn9cc _1jvcvsh", className)
	assert.Equal(t, []string{
		"._1lvn9cc { display:inline; }",
		"._1jvcvsh { color:red; }",
	}, ruleTexts(result.Rules))
}

func TestBuild_EmptyBag(t *testing.T) {
	result := build(Props{{Key: "onClick", Value: "fn"}}, nil, BuildOptions{})

	assert.Empty(t, result.Rules)
	assert.Empty(t, result.ClassNames)
	_, ok := result.Props.Get("className")
	assert.False(t, ok)
}

func TestBuild_Pseudoclass(t *testing.T) {
	result := build(Props{
		{Key: "color", Value: "red"},
		{Key: "hoverColor", Value: "blue"},
	}, nil, BuildOptions{})

	base := HashClassName("color:red")
	hover := HashClassName(":hover~color:blue")
	assert.Equal(t, []string{base, hover}, result.ClassNames)
	assert.Equal(t, []string{
		"." + base + " { color:red; }",
		"." + hover + ":hover { color:blue; }",
	}, ruleTexts(result.Rules))
}

func TestBuild_Specificity(t *testing.T) {
	t.Run("longhand outranks shorthand", func(t *testing.T) {
		result := build(Props{
			{Key: "margin", Value: 4},
			{Key: "marginH", Value: 1},
			{Key: "marginLeft", Value: 2},
		}, nil, BuildOptions{})

		margin := HashClassName("margin:4px")
		left := HashClassName("margin-left:2px")
		right := HashClassName("margin-right:1px")
		assert.Equal(t, []string{
			"." + margin + " { margin:4px; }",
			"." + left + "." + left + " { margin-left:2px; }",
			"." + right + "." + right + " { margin-right:1px; }",
		}, ruleTexts(result.Rules))
	})

	t.Run("media query bonus", func(t *testing.T) {
		result := build(Props{
			{Key: "color", Value: "green"},
			{Key: "lgColor", Value: "red"},
			{Key: "smColor", Value: "blue"},
		}, testMediaQueries, BuildOptions{})

		sm := HashClassName("@media screen and (max-width: 640px)~color:blue")
		lg := HashClassName("@media screen and (min-width: 1024px)~color:red")
		assert.Equal(t, []string{
			"." + HashClassName("color:green") + " { color:green; }",
			"@media screen and (max-width: 640px) { ." + sm + "." + sm + "." + sm + " { color:blue; } }",
			"@media screen and (min-width: 1024px) { ." + lg + "." + lg + "." + lg + " { color:red; } }",
		}, ruleTexts(result.Rules))
	})

	t.Run("clamped", func(t *testing.T) {
		assert.Equal(t, ".a.a.a.a.a:hover", Selector("a", 9, "hover", ""))
		assert.Equal(t, ".a::before", Selector("a", 0, "", "before"))
	})
}

func TestBuild_BucketOrder(t *testing.T) {
	result := build(Props{
		{Key: "smColor", Value: "blue"},
		{Key: "beforeColor", Value: "gray"},
		{Key: "hoverColor", Value: "red"},
		{Key: "color", Value: "black"},
	}, testMediaQueries, BuildOptions{})

	var order []string
	for _, r := range result.Rules {
		order = append(order, r.Key)
	}
	assert.Equal(t, []string{
		"color:black",
		":hover~color:red",
		"::before~color:gray",
		"@media screen and (max-width: 640px)~color:blue",
	}, order)
}

func TestBuild_Keyframes(t *testing.T) {
	result := build(Props{
		{Key: "animation", Value: Props{
			{Key: "from", Value: Props{{Key: "opacity", Value: 0}, {Key: "padding", Value: 5}}},
			{Key: "to", Value: Props{{Key: "opacity", Value: 1}}},
		}},
	}, nil, BuildOptions{})

	body := "from { opacity:0; padding:5px; } to { opacity:1; }"
	name := HashClassName(body)
	class := HashClassName("animation-name:" + name)

	require.Len(t, result.Rules, 2)
	assert.True(t, result.Rules[0].Keyframes)
	assert.Equal(t, "@keyframes "+name+" { "+body+" }", result.Rules[0].Text)
	assert.Equal(t, "."+class+" { animation-name:"+name+"; }", result.Rules[1].Text)
	assert.Equal(t, []string{class}, result.ClassNames)
}

func TestBuild_KeyframesRejectsPseudoFrames(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	result := build(Props{
		{Key: "animation", Value: Props{
			{Key: "from", Value: Props{{Key: "hoverColor", Value: "red"}}},
			{Key: "50%", Value: Props{}},
			{Key: "to", Value: Props{{Key: "color", Value: "blue"}}},
		}},
	}, nil, BuildOptions{Logger: zap.New(core)})

	require.Len(t, result.Rules, 2)
	assert.Equal(t, "@keyframes "+HashClassName("to { color:blue; }")+" { to { color:blue; } }", result.Rules[0].Text)
	assert.Equal(t, 1, logs.FilterMessage("Pseudo-prefixed properties are not allowed in animation frames").Len())
	assert.Equal(t, 1, logs.FilterMessage("Skipping empty animation frame").Len())
}

func TestBuild_CustomClassName(t *testing.T) {
	var keys []string
	result := build(Props{{Key: "color", Value: "red"}}, nil, BuildOptions{
		ClassName: func(key string) string {
			keys = append(keys, key)
			return "x" + strings.ToUpper(key[:1])
		},
	})

	assert.Equal(t, []string{"color:red"}, keys)
	assert.Equal(t, []string{".xC { color:red; }"}, ruleTexts(result.Rules))
}

func TestParsedKey_Deterministic(t *testing.T) {
	a, _ := Classify(Props{{Key: "marginH", Value: 1}, {Key: "color", Value: "red"}}, "className", nil)
	b, _ := Classify(Props{{Key: "marginLeft", Value: 1}, {Key: "marginRight", Value: 1}, {Key: "color", Value: "red"}}, "className", nil)

	assert.Equal(t, "margin-left:1px;margin-right:1px;color:red;", a.Key())
	assert.Equal(t, a.Key(), b.Key())
}
