package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yacobolo/jsxcss"
	"github.com/yacobolo/jsxcss/internal/report"
)

const defaultConfigPath = ".jsxcss.yaml"

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	flags := cmd.Flags()
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (JSXCSS_* prefix)
	if err := k.Load(env.Provider("JSXCSS_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envKey maps environment variables to config keys:
//
//	JSXCSS_EXTRACT_OUTPUT_DIR -> extract.output-dir
//	JSXCSS_VERBOSE            -> verbose
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "JSXCSS_"))
	for _, section := range []string{"extract", "variants"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + strings.ReplaceAll(rest, "_", "-")
		}
	}
	return strings.ReplaceAll(key, "_", "-")
}

// buildExtractConfig constructs the library's ExtractConfig from koanf state.
func buildExtractConfig(log *zap.Logger) (jsxcss.ExtractConfig, error) {
	config := jsxcss.ExtractConfig{
		SourceDir:          getStringWithFallback("source", "extract.source", "src"),
		Includes:           getStringsWithFallback("include", "extract.include", jsxcss.DefaultIncludes),
		OutputDir:          getStringWithFallback("output-dir", "extract.output-dir", ""),
		Modules:            getStringsWithFallback("modules", "extract.modules", nil),
		CSSMode:            jsxcss.CSSMode(getStringWithFallback("css-mode", "extract.css-mode", string(jsxcss.CSSFile))),
		ClassNames:         getStringWithFallback("class-names", "extract.class-names", "hash"),
		ClassNamePropKey:   getStringWithFallback("class-name-prop", "extract.class-name-prop", "className"),
		WhitelistedModules: getStringsWithFallback("whitelist", "extract.whitelisted-modules", nil),
		Aliases:            k.StringMap("extract.aliases"),
		NoEvaluateVars:     !getBoolWithFallback("evaluate-vars", "extract.evaluate-vars", true),
		WarningsAsErrors:   getBoolWithFallback("warnings-as-errors", "extract.warnings-as-errors", false),
		Pretty:             getBoolWithFallback("pretty", "extract.pretty", false),
		SourceMap:          getBoolWithFallback("source-map", "extract.source-map", false),
		Concurrency:        getIntWithFallback("concurrency", "extract.concurrency", 0),
		Logger:             log,
	}

	switch config.CSSMode {
	case jsxcss.CSSFile, jsxcss.CSSInline, jsxcss.CSSNone:
	default:
		return config, fmt.Errorf("invalid css mode %q (want file, inline or none)", config.CSSMode)
	}

	mqs, err := parseMediaQueries(getStringsWithFallback("media-query", "extract.media-queries", nil))
	if err != nil {
		return config, err
	}
	config.MediaQueries = mqs
	return config, nil
}

// parseMediaQueries reads "name=query" entries, keeping their order.
func parseMediaQueries(entries []string) ([]jsxcss.MediaQuery, error) {
	var mqs []jsxcss.MediaQuery
	for _, entry := range entries {
		name, query, ok := strings.Cut(entry, "=")
		name, query = strings.TrimSpace(name), strings.TrimSpace(query)
		if !ok || name == "" || query == "" {
			return nil, fmt.Errorf("invalid media query %q (want name=query)", entry)
		}
		mqs = append(mqs, jsxcss.MediaQuery{Name: name, Query: query})
	}
	return mqs, nil
}

// buildReportConfig constructs the reporter configuration from koanf state.
func buildReportConfig() report.Config {
	return report.Config{
		UseColors:       getBoolWithFallback("color", "color", false),
		PrintLines:      getBoolWithFallback("print-lines", "extract.print-lines", true),
		PrintLinterName: getBoolWithFallback("print-linter-name", "extract.print-linter-name", true),
		MaxIssues:       getIntWithFallback("max-issues", "extract.max-issues", 0),
		MaxSameIssues:   getIntWithFallback("max-same-issues", "extract.max-same-issues", 0),
	}
}

// newLogger returns a development logger in verbose mode and a no-op
// logger otherwise.
func newLogger() (*zap.Logger, error) {
	if !getBoolWithFallback("verbose", "verbose", false) {
		return zap.NewNop(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
