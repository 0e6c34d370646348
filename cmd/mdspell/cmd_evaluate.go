package main

import (
	"github.com/spboyer/mdspell/internal/evaluate"
	"github.com/spf13/cobra"
)

func newEvaluateCommand(root *rootOptions) *cobra.Command {
	var junitPath string

	cmd := &cobra.Command{
		Use:   "evaluate [results-log]",
		Short: "Evaluate an existing results log",
		Long: `Evaluate an existing results log without contacting the review service.

The log defaults to results.path from the config file. The exit code matches
a full run: 1 when any file has a spelling issue or the log cannot be read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			path := cfg.Results.Path
			if len(args) == 1 {
				path = args[0]
			}
			if cmd.Flags().Changed("junit") {
				cfg.Report.JUnit = junitPath
			}

			outcome := evaluate.FileOrFailSafe(path)

			return report(cmd.OutOrStdout(), cfg, outcome)
		},
	}

	cmd.Flags().StringVar(&junitPath, "junit", "", "Write a JUnit XML report to this path")

	return cmd
}
