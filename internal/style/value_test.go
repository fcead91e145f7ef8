package style

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name     string
		propName string
		value    any
		want     string
	}{
		{name: "nil", propName: "color", value: nil, want: ""},
		{name: "true", propName: "color", value: true, want: ""},
		{name: "false", propName: "color", value: false, want: ""},
		{name: "empty string", propName: "color", value: "", want: ""},
		{name: "string is trimmed", propName: "color", value: "  red ", want: "red"},
		{name: "zero", propName: "width", value: 0, want: "0"},
		{name: "integer gets px", propName: "width", value: 10, want: "10px"},
		{name: "negative integer gets px", propName: "marginLeft", value: -2, want: "-2px"},
		{name: "float gets px", propName: "width", value: 1.5, want: "1.5px"},
		{name: "half becomes percentage", propName: "width", value: 0.5, want: "50%"},
		{name: "third is rounded to four decimals", propName: "width", value: 1.0 / 3.0, want: "33.3333%"},
		{name: "negative fraction", propName: "marginTop", value: -0.5, want: "-50%"},
		{name: "rounding", propName: "width", value: 0.123456789, want: "12.3457%"},
		{name: "unitless", propName: "zIndex", value: 2, want: "2"},
		{name: "unitless flex", propName: "flex", value: 1, want: "1"},
		{name: "vendor prefixed unitless", propName: "WebkitFlex", value: 2, want: "2"},
		{name: "ms prefixed unitless", propName: "msFlexGrow", value: 3, want: "3"},
		{name: "custom property", propName: "--gap", value: 4, want: "4"},
		{name: "float32", propName: "height", value: float32(2), want: "2px"},
		{name: "uint8", propName: "height", value: uint8(7), want: "7px"},
		{name: "stringer", propName: "transitionDuration", value: 1500 * time.Millisecond, want: "1.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.propName, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_NotStringable(t *testing.T) {
	got, err := Value("color", struct{ R, G, B int }{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotStringable))
	assert.Equal(t, "", got)

	got, err = Value("color", Props{{Key: "a", Value: 1}})
	require.ErrorIs(t, err, ErrNotStringable)
	assert.Equal(t, "", got)
}

func TestHyphenate(t *testing.T) {
	tests := map[string]string{
		"color":           "color",
		"backgroundColor": "background-color",
		"WebkitFlex":      "-webkit-flex",
		"MozAppearance":   "-moz-appearance",
		"msFlexGrow":      "-ms-flex-grow",
		"--brandColor":    "--brandColor",
		"marginLeft":      "margin-left",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Hyphenate(in))
		})
	}
}

func TestHashClassName(t *testing.T) {
	assert.Equal(t, "_1lvn9cc", HashClassName("display:inline"))
	assert.Equal(t, "_1jvcvsh", HashClassName("color:red"))
	assert.Equal(t, HashClassName("color:red"), HashClassName("color:red"))
	assert.NotEqual(t, HashClassName("color:red"), HashClassName("color:blue"))
}
