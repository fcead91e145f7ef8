package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss"
)

var variantsCmd = &cobra.Command{
	Use:   "variants FILE",
	Short: "Generate CSS custom properties from a variants file",
	Long: `Read a YAML file of named variants and print the CSS custom properties
for them. The default variant sets the baseline values; every other
variant overrides some of them and may carry a mediaQuery.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runVariants,
}

func init() {
	f := variantsCmd.Flags()
	f.String("namespace", jsxcss.DefaultNamespace, "Prefix of custom property and class names")
	f.Bool("mangle", false, "Use short generated property names")
	f.String("selector", ":root", "Element carrying the properties")
	f.String("out", "", "Write CSS to this file instead of stdout")
	f.String("format", "css", "Output format: css|json")
}

func runVariants(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening variants file: %w", err)
	}
	defer in.Close()

	builder, err := jsxcss.LoadVariantsYAML(in)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	cp, err := builder.Build(jsxcss.BuildVariantsOptions{
		Namespace: getStringWithFallback("namespace", "variants.namespace", jsxcss.DefaultNamespace),
		Mangle:    getBoolWithFallback("mangle", "variants.mangle", false),
		Selector:  getStringWithFallback("selector", "variants.selector", ":root"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	log.Debug("Built variants",
		zap.Int("properties", len(cp.Properties)),
		zap.Strings("variants", cp.Order))

	var w io.Writer = cmd.OutOrStdout()
	if out := getStringWithFallback("out", "variants.out", ""); out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer file.Close()
		w = file
	}

	switch format := getStringWithFallback("format", "variants.format", "css"); format {
	case "css":
		_, err = io.WriteString(w, cp.CSS())
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(cp)
	default:
		return fmt.Errorf("invalid variants format %q (want css or json)", format)
	}
	if err != nil {
		return fmt.Errorf("writing variants: %w", err)
	}
	return nil
}
