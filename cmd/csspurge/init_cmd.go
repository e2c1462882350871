package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .csspurge.yaml config file",
	Long: `Create a .csspurge.yaml configuration file in the current directory with
sensible defaults. With --vocabulary-stub an empty csspurge.vocabulary.yaml
is written as well.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stub, _ := cmd.Flags().GetBool("vocabulary-stub")

		if err := writeNew(".csspurge.yaml", defaultConfig, force); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Created .csspurge.yaml")

		if stub {
			if err := writeNew("csspurge.vocabulary.yaml", vocabularyStub, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created csspurge.vocabulary.yaml")
		}
		return nil
	},
}

func writeNew(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

const defaultConfig = `# csspurge configuration
# Precedence: flags > CSSPURGE_* environment > this file > defaults

# Framework vocabulary (default: csspurge.vocabulary.yaml, .yml, .json
# or csspurge.classes.txt in the working directory)
# vocabulary: csspurge.vocabulary.yaml
debug: false
output-format: text        # text | verbose | json

log:
  level: warn              # debug | info | warn | error
  format: console          # console | json

purge:
  css:
    - "dist/**/*.css"
  content: []              # added to the vocabulary's content globs
  skip: []
  out-dir: ""              # empty = rewrite in place
  safelist: []             # "/regex/" or exact class
  safelist-greedy: []      # regular expressions tested against whole selectors
  blocklist: []
  legacy: false            # purge every unused selector, not only utilities
  dry-run: false
  strict: false
  max-literal-length: 100000 # 0 = unlimited
  bracket-depth: 3
  concurrency: 0           # 0 = GOMAXPROCS

watch:
  debounce: 300ms
`

const vocabularyStub = `# Utility classes generated by your CSS framework.
separator: ":"
content:
  - "src/**/*.{html,js,jsx,ts,tsx,svelte,vue}"
classes: []
safelist: []
blocklist: []
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
	initCmd.Flags().Bool("vocabulary-stub", false, "Also write an empty csspurge.vocabulary.yaml")
}
