// Package jsxcss turns bags of style props into atomic CSS classes, at
// runtime through a Cache and at build time by rewriting JSX sources.
//
// # Runtime
//
// Convert style props into class names with a request scoped cache:
//
//	cache := jsxcss.NewCache()
//	props := cache.GetComponentProps(jsxcss.Props{
//		{Key: "color", Value: "red"},
//		{Key: "hoverColor", Value: "green"},
//	}, "className")
//	css := cache.Flush()
//
// # Static extraction
//
// Rewrite styling components into plain elements with precomputed classes:
//
//	res, err := jsxcss.ExtractStyles(ctx, src, "app.jsx", jsxcss.ExtractOptions{})
//	// res.JS, res.CSS, res.CSSFileName
//
// Whole source trees are handled by ExtractFiles.
//
// # Variants
//
// Generate custom properties with switchable variants:
//
//	cp, err := jsxcss.MakeCustomProperties(defaults).
//		AddVariant("dark", dark).
//		Build(jsxcss.BuildVariantsOptions{Namespace: "theme"})
//
// # CLI Tool
//
// jsxcss also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/jsxcss/cmd/jsxcss@latest
package jsxcss

import "github.com/yacobolo/jsxcss/internal/style"

// Props is an ordered bag of props. Order matters: later entries win over
// earlier ones resolving to the same CSS property.
type Props = style.Props

// Prop is one entry of Props.
type Prop = style.Prop

// MediaQuery names a media query usable as a prop prefix.
type MediaQuery = style.MediaQuery
