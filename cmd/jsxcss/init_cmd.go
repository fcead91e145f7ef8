package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .jsxcss.yaml config file",
	Long:  `Create a .jsxcss.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigPath)
		}

		if err := os.WriteFile(defaultConfigPath, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Created "+defaultConfigPath)
		return nil
	},
}

const defaultConfig = `# jsxcss configuration

# Shared settings
verbose: false

# Extraction settings
extract:
  source: src
  output-dir: build/src
  include:
    - "**/*.{js,jsx,mjs,ts,tsx}"
  modules:
    - jsxstyle
  css-mode: file           # file | inline | none
  class-names: hash        # hash | counter
  class-name-prop: className
  media-queries:
    - "sm=screen and (min-width: 640px)"
    - "lg=screen and (min-width: 1024px)"
  whitelisted-modules: []
  aliases: {}
  evaluate-vars: true
  warnings-as-errors: false
  pretty: false
  source-map: false
  concurrency: 0           # 0 = GOMAXPROCS
  strict: false
  output-format: issues    # issues | summary | full | json | markdown
  max-issues: 0            # 0 = unlimited
  max-same-issues: 0       # 0 = unlimited
  print-lines: true
  print-linter-name: true

# Variant settings
variants:
  namespace: jsxstyle
  mangle: false
  selector: ":root"
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
