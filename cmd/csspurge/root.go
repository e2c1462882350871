package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "csspurge",
	Short: "Remove unused utility classes from generated stylesheets",
	Long: `Scan application sources for class tokens and rewrite each stylesheet
without the utility rules that are never used. Hand-written base styles
are kept as they are.`,
	// Default behavior: run purge when no subcommand is given.
	// We must call loadConfig here because PreRunE of purgeCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runPurge(cmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", ".csspurge.yaml", "Config file path")
	pf.String("vocabulary", "", "Framework vocabulary file (default: discovered in the working directory)")
	pf.Bool("debug", false, "Include the intermediate purge state in JSON output")
	pf.Bool("quiet", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("log-level", "warn", "Log level: debug|info|warn|error")
	pf.String("log-format", "console", "Log format: console|json")

	addPurgeFlags(rootCmd.Flags())

	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
