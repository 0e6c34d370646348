package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spboyer/mdspell/internal/projectconfig"
	"github.com/spboyer/mdspell/internal/wizard"
	"github.com/spf13/cobra"
)

// runWizard is replaced in tests.
var runWizard = wizard.Run

func newInitCommand(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create " + projectconfig.FileName + " interactively",
		Long: `Create a project config file by answering a few questions.

Writes ` + projectconfig.FileName + ` in the current directory, or to --config when given.
An existing file is only replaced with --force; its values seed the answers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if path == "" {
				path = projectconfig.FileName
			}

			seed := projectconfig.New()
			if _, err := os.Stat(path); err == nil {
				if !force {
					return fmt.Errorf("%s already exists (use --force to replace it)", path)
				}
				if existing, err := projectconfig.LoadFile(path); err == nil {
					seed = existing
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			answers, err := runWizard(cmd.InOrStdin(), cmd.OutOrStdout(), wizard.AnswersFrom(seed))
			if err != nil {
				return err
			}

			cfg, err := answers.Config()
			if err != nil {
				return fmt.Errorf("invalid answers: %w", err)
			}

			if err := projectconfig.Save(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", path) //nolint:errcheck

			if env := cfg.Review.CredentialEnv(); env != "" {
				if _, ok := os.LookupEnv(env); !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "   Set %s (or add it to .env) before running mdspell.\n", env) //nolint:errcheck
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")

	return cmd
}
