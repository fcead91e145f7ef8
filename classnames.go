package jsxcss

import (
	"strconv"

	"github.com/yacobolo/jsxcss/internal/style"
)

// ClassNameFunc maps a style key to a class name.
type ClassNameFunc = style.ClassNameFunc

// Strategy creates a class name function. Caches call it once on creation
// and again on every Reset, so stateful strategies restart with the cache.
type Strategy func() ClassNameFunc

// HashClassNames derives class names from the style key, so identical
// styles share a class name across caches, processes and builds.
func HashClassNames() ClassNameFunc {
	return style.HashClassName
}

// StrategyCounter numbers class names in first-use order: _x0, _x1, ...
// Names are only unique within one cache.
func StrategyCounter() ClassNameFunc {
	n := int64(0)
	return func(string) string {
		name := "_x" + strconv.FormatInt(n, 36)
		n++
		return name
	}
}
