package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yacobolo/csspurge"
	"github.com/yacobolo/csspurge/internal/logger"
	"github.com/yacobolo/csspurge/internal/report"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge unused utility classes from stylesheets",
	Long: `Scan the configured content for class tokens and rewrite each stylesheet
without the utility rules that never appear. Stylesheets that cannot be
parsed are left untouched and reported.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runPurge,
}

func init() {
	addPurgeFlags(purgeCmd.Flags())
}

// runPurge is shared between `csspurge` and `csspurge purge`.
func runPurge(cmd *cobra.Command, _ []string) error {
	config := buildPurgeConfig()

	log, err := logger.New(buildLoggerConfig())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	result, err := csspurge.Purge(cmd.Context(), config, log)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if !getBool("quiet", false) {
		if err := writeResult(cmd, result); err != nil {
			return err
		}
	}

	if getBool("purge.strict", false) {
		if n := skippedCount(result); n > 0 {
			return fmt.Errorf("%d stylesheet(s) could not be purged", n)
		}
	}
	return nil
}

func writeResult(cmd *cobra.Command, result *csspurge.Result) error {
	format := csspurge.DetermineOutputFormat(getString("output-format", ""))
	opts := csspurge.OutputOptions{
		Colors: report.ShouldUseColors(getBool("color", false)),
		Limit:  getInt("max-items", 20),
	}
	return csspurge.WriteOutput(cmd.OutOrStdout(), result, format, opts)
}

func skippedCount(result *csspurge.Result) int {
	n := 0
	for _, s := range result.Stylesheets {
		if s.Skipped {
			n++
		}
	}
	return n
}
