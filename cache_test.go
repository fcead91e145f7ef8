package jsxcss

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetComponentProps(t *testing.T) {
	cache := NewCache()
	props := cache.GetComponentProps(Props{
		{Key: "display", Value: "inline"},
		{Key: "color", Value: "red"},
		{Key: "className", Value: "bla"},
	}, "")

	className, ok := props.Get("className")
	require.True(t, ok)
	assert.Equal(t, "bla _1lvn9cc _1jvcvsh", className)
	assert.Equal(t, []string{
		"._1lvn9cc { display:inline; }",
		"._1jvcvsh { color:red; }",
	}, cache.Rules())
}

func TestCache_NilProps(t *testing.T) {
	assert.Nil(t, NewCache().GetComponentProps(nil, "className"))
}

func TestCache_PassthroughProps(t *testing.T) {
	cache := NewCache()
	props := cache.GetComponentProps(Props{
		{Key: "id", Value: "main"},
		{Key: "onClick", Value: "handler"},
		{Key: "color", Value: "red"},
	}, "class")

	assert.Equal(t, Props{
		{Key: "id", Value: "main"},
		{Key: "onClick", Value: "handler"},
		{Key: "class", Value: "_1jvcvsh"},
	}, props)
}

func TestCache_EmitsEachRuleOnce(t *testing.T) {
	var inserted []string
	cache := NewCache(WithOnInsertRule(func(rule, _ string) bool {
		inserted = append(inserted, rule)
		return true
	}))

	bag := Props{{Key: "color", Value: "red"}, {Key: "hoverColor", Value: "green"}}
	first := cache.GetComponentProps(bag, "")
	second := cache.GetComponentProps(bag, "")
	cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")

	assert.Equal(t, first, second)
	require.Len(t, inserted, 2)
	assert.Equal(t, "._1jvcvsh { color:red; }", inserted[0])
	assert.True(t, strings.HasSuffix(inserted[1], ":hover { color:green; }"), inserted[1])
	assert.Len(t, cache.Rules(), 2)
}

func TestCache_OnInsertRuleFalseSkipsSheet(t *testing.T) {
	var keys []string
	cache := NewCache(WithOnInsertRule(func(_, key string) bool {
		keys = append(keys, key)
		return false
	}))

	props := cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
	className, _ := props.Get("className")
	assert.Equal(t, "_1jvcvsh", className)
	assert.Equal(t, []string{"color:red"}, keys)
	assert.Empty(t, cache.Rules())
	assert.Empty(t, cache.CSS())
}

func TestCache_InjectOptions(t *testing.T) {
	t.Run("once", func(t *testing.T) {
		cache := NewCache()
		require.NoError(t, cache.InjectOptions(CacheOptions{Strategy: StrategyCounter}))
		assert.ErrorIs(t, cache.InjectOptions(CacheOptions{}), ErrOptionsInjected)
	})

	t.Run("before first use", func(t *testing.T) {
		cache := NewCache()
		cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
		assert.ErrorIs(t, cache.InjectOptions(CacheOptions{}), ErrCacheInUse)
	})

	t.Run("applies strategy", func(t *testing.T) {
		cache := NewCache()
		require.NoError(t, cache.InjectOptions(CacheOptions{Strategy: StrategyCounter}))
		props := cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
		className, _ := props.Get("className")
		assert.Equal(t, "_x0", className)
	})
}

func TestCache_CounterStrategy(t *testing.T) {
	cache := NewCache(WithStrategy(StrategyCounter))

	classOf := func(props Props) any {
		v, _ := cache.GetComponentProps(props, "").Get("className")
		return v
	}
	assert.Equal(t, "_x0", classOf(Props{{Key: "color", Value: "red"}}))
	assert.Equal(t, "_x1", classOf(Props{{Key: "color", Value: "blue"}}))
	assert.Equal(t, "_x0", classOf(Props{{Key: "color", Value: "red"}}))
	assert.Equal(t, "_x0 _x2", classOf(Props{{Key: "color", Value: "red"}, {Key: "margin", Value: 1}}))

	cache.Reset()
	assert.Empty(t, cache.Rules())
	assert.Equal(t, "_x0", classOf(Props{{Key: "color", Value: "blue"}}))
}

func TestCache_Flush(t *testing.T) {
	cache := NewCache()
	cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
	assert.Equal(t, "._1jvcvsh { color:red; }\n", cache.Flush())
	assert.Empty(t, cache.Flush())

	cache.GetComponentProps(Props{{Key: "display", Value: "inline"}}, "")
	assert.Equal(t, "._1lvn9cc { display:inline; }\n", cache.Flush())
	assert.Equal(t, "._1jvcvsh { color:red; }\n._1lvn9cc { display:inline; }\n", cache.CSS())
}

func TestCache_Pretty(t *testing.T) {
	cache := NewCache(WithPretty())
	cache.GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
	assert.Equal(t, []string{"._1jvcvsh {\n  color: red;\n}"}, cache.Rules())
}

// Request scoped caches rendering conflicting styles at the same time must
// each flush only their own rules.
func TestCache_ConcurrentIsolation(t *testing.T) {
	colors := []string{"red", "blue", "green", "purple"}
	flushed := make([]string, len(colors))

	var wg sync.WaitGroup
	for i, color := range colors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache := NewCache(WithStrategy(StrategyCounter))
			for j := 0; j < 50; j++ {
				cache.GetComponentProps(Props{{Key: "color", Value: color}}, "")
			}
			flushed[i] = cache.Flush()
		}()
	}
	wg.Wait()

	for i, color := range colors {
		assert.Equal(t, "._x0 { color:"+color+"; }\n", flushed[i])
	}
}

func TestDefaultCache(t *testing.T) {
	assert.Same(t, DefaultCache(), DefaultCache())

	props := GetComponentProps(Props{{Key: "color", Value: "red"}}, "")
	className, _ := props.Get("className")
	assert.Equal(t, "_1jvcvsh", className)
	assert.ErrorIs(t, InjectOptions(CacheOptions{}), ErrCacheInUse)

	Reset()
	assert.Empty(t, DefaultCache().Rules())
}
