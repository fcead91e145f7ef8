package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotStringable is returned by Value for values that have no string form.
var ErrNotStringable = errors.New("style value has no string representation")

// unitless lists properties whose numeric values are emitted without "px".
var unitless = map[string]bool{
	"animationIterationCount": true,
	"aspectRatio":             true,
	"borderImageOutset":       true,
	"borderImageSlice":        true,
	"borderImageWidth":        true,
	"boxFlex":                 true,
	"boxFlexGroup":            true,
	"boxOrdinalGroup":         true,
	"columnCount":             true,
	"columns":                 true,
	"flex":                    true,
	"flexGrow":                true,
	"flexPositive":            true,
	"flexShrink":              true,
	"flexNegative":            true,
	"flexOrder":               true,
	"gridArea":                true,
	"gridRow":                 true,
	"gridRowEnd":              true,
	"gridRowSpan":             true,
	"gridRowStart":            true,
	"gridColumn":              true,
	"gridColumnEnd":           true,
	"gridColumnSpan":          true,
	"gridColumnStart":         true,
	"fontWeight":              true,
	"lineClamp":               true,
	"lineHeight":              true,
	"opacity":                 true,
	"order":                   true,
	"orphans":                 true,
	"scale":                   true,
	"tabSize":                 true,
	"widows":                  true,
	"zIndex":                  true,
	"zoom":                    true,

	// SVG
	"fillOpacity":      true,
	"floodOpacity":     true,
	"stopOpacity":      true,
	"strokeDasharray":  true,
	"strokeDashoffset": true,
	"strokeMiterlimit": true,
	"strokeOpacity":    true,
	"strokeWidth":      true,
}

var vendorPrefixes = []string{"Webkit", "ms", "Moz", "O"}

func init() {
	base := make([]string, 0, len(unitless))
	for name := range unitless {
		base = append(base, name)
	}
	for _, name := range base {
		for _, prefix := range vendorPrefixes {
			unitless[prefix+strings.ToUpper(name[:1])+name[1:]] = true
		}
	}
}

// IsUnitless reports whether numbers for propName are emitted without a unit.
func IsUnitless(propName string) bool {
	return unitless[propName]
}

// Value converts a raw value into CSS value text.
//
// It returns "" for nil, booleans and empty strings; callers skip empty
// results. Numbers strictly between -1 and 1 (other than 0) become
// percentages rounded to four decimals, other non-zero numbers get "px"
// unless the property is unitless.
func Value(propName string, v any) (string, error) {
	switch t := v.(type) {
	case nil, bool:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case fmt.Stringer:
		return strings.TrimSpace(t.String()), nil
	}

	n, ok := toFloat(v)
	if !ok {
		return "", fmt.Errorf("%s: %w (%T)", propName, ErrNotStringable, v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", nil
	}
	if n == 0 {
		return "0", nil
	}
	if n > -1 && n < 1 {
		// Math.round semantics: halves round towards +Inf.
		pct := math.Floor(n*1e6+0.5) / 1e4
		return FormatNumber(pct) + "%", nil
	}
	if strings.HasPrefix(propName, "--") || IsUnitless(propName) {
		return FormatNumber(n), nil
	}
	return FormatNumber(n) + "px", nil
}

// FormatNumber prints a float the way JavaScript's Number#toString does for
// the magnitudes that occur in style values.
func FormatNumber(n float64) string {
	abs := math.Abs(n)
	if n == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
