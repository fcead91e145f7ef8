package extract

import "github.com/yacobolo/jsxcss/internal/style"

// CSSFunction is the style function replaced by a class name string.
const CSSFunction = "css"

// componentDefaults are the style props each styling component applies
// before the props written at the call site.
var componentDefaults = map[string]style.Props{
	"Box":         nil,
	"Block":       {{Key: "display", Value: "block"}},
	"Inline":      {{Key: "display", Value: "inline"}},
	"InlineBlock": {{Key: "display", Value: "inline-block"}},
	"Row":         {{Key: "display", Value: "flex"}, {Key: "flexDirection", Value: "row"}},
	"Col":         {{Key: "display", Value: "flex"}, {Key: "flexDirection", Value: "column"}},
	"InlineRow":   {{Key: "display", Value: "inline-flex"}, {Key: "flexDirection", Value: "row"}},
	"InlineCol":   {{Key: "display", Value: "inline-flex"}, {Key: "flexDirection", Value: "column"}},
	"Grid":        {{Key: "display", Value: "grid"}},
}

func isKnown(name string) bool {
	if name == CSSFunction {
		return true
	}
	_, ok := componentDefaults[name]
	return ok
}

// Components lists the component names the extractor understands.
func Components() []string {
	return []string{"Box", "Block", "Inline", "InlineBlock", "Row", "Col", "InlineRow", "InlineCol", "Grid"}
}
