package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spboyer/mdspell/internal/models"
	"github.com/spboyer/mdspell/internal/pipeline"
	"github.com/spboyer/mdspell/internal/projectconfig"
	"github.com/spboyer/mdspell/internal/reporting"
	"github.com/spboyer/mdspell/internal/results"
	"github.com/spboyer/mdspell/internal/review"
	"github.com/spboyer/mdspell/internal/spinner"
	"github.com/spboyer/mdspell/internal/utils"
	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool

	engine string
	model  string
	output string
	junit  string
	keep   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mdspell [flags] <file>...",
		Short: "mdspell - proofread markdown files with a language model",
		Long: `mdspell sends each markdown file to a language model for a spelling and
grammar review, appends every reply to a results log, and fails when any
reply reports a spelling issue.

Grammar-only findings are reported but never fail the run, so mdspell can
gate a CI pipeline on spelling alone.

Use -- before the files when one is named like a subcommand (init, evaluate).`,
		Example: `  mdspell README.md docs/*.md
  mdspell --engine copilot --junit spelling.xml README.md
  mdspell evaluate results.txt
  mdspell -- init evaluate.md`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the config file (default: nearest "+projectconfig.FileName+")")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (overrides LOG_LEVEL)")

	cmd.Flags().StringVar(&opts.engine, "engine", "", "Review engine: openai, copilot or mock")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model to review with")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Results log path (default: "+projectconfig.DefaultResultsPath+")")
	cmd.Flags().StringVar(&opts.junit, "junit", "", "Write a JUnit XML report to this path")
	cmd.Flags().BoolVar(&opts.keep, "keep", false, "Append to an existing results log instead of starting fresh")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr(), opts.debug)
	}

	// Add subcommands
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newInitCommand(opts))

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

func configureLogging(w io.Writer, debug bool) {
	level, ok := utils.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if debug {
		level = slog.LevelDebug
	}

	utils.ConfigureLogging(w, level)

	if v := os.Getenv("LOG_LEVEL"); !ok && v != "" {
		fmt.Fprintf(w, "warning: unrecognized LOG_LEVEL %q, using ERROR\n", v) //nolint:errcheck
	}
}

// loadConfig reads --config when given, otherwise the nearest project config.
func loadConfig(opts *rootOptions) (*projectconfig.ProjectConfig, error) {
	if opts.configPath != "" {
		return projectconfig.LoadFile(opts.configPath)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	return projectconfig.Load(wd)
}

// applyFlags overlays flags the user actually set onto cfg.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *projectconfig.ProjectConfig) error {
	flags := cmd.Flags()

	if flags.Changed("engine") && opts.engine != cfg.Review.Engine {
		cfg.Review.Engine = opts.engine
		if cfg.Review.Model == projectconfig.DefaultOpenAIModel {
			// the OpenAI default means nothing to the other engines
			cfg.Review.Model = ""
		}
		if opts.engine == projectconfig.EngineOpenAI && cfg.Review.Model == "" {
			cfg.Review.Model = projectconfig.DefaultOpenAIModel
		}
	}
	if flags.Changed("model") {
		cfg.Review.Model = opts.model
	}
	if flags.Changed("output") {
		cfg.Results.Path = opts.output
	}
	if flags.Changed("junit") {
		cfg.Report.JUnit = opts.junit
	}
	if flags.Changed("keep") {
		cfg.Results.Fresh = utils.Ptr(!opts.keep)
	}

	return cfg.Validate()
}

func runReview(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()

	if len(args) == 0 {
		return fmt.Errorf("%w: pass at least one markdown file", pipeline.ErrNoInputFiles)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := applyFlags(cmd, opts, cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	apiKey, err := cfg.Review.Credential(os.LookupEnv)
	if err != nil {
		slog.Log(ctx, utils.LevelCritical, "Cannot review without a credential", "engine", cfg.Review.Engine, "error", err)
		return err
	}

	reviewer, err := review.New(&cfg.Review, apiKey)
	if err != nil {
		return fmt.Errorf("creating %s reviewer: %w", cfg.Review.Engine, err)
	}

	defer func() {
		if err := reviewer.Close(); err != nil {
			slog.Warn("Failed to close reviewer", "error", err)
		}
	}()

	runner := pipeline.NewRunner(reviewer, results.NewStore(cfg.Results.Path), pipeline.Options{
		Fresh:    cfg.FreshResults(),
		Progress: progressFor(cmd.ErrOrStderr()),
	})

	outcome, err := runner.Run(ctx, args)
	if err != nil {
		return err
	}

	return report(cmd.OutOrStdout(), cfg, outcome)
}

// progressFor returns a spinner hook when w is a terminal.
func progressFor(w io.Writer) func(string) func() {
	f, ok := w.(*os.File)
	if !ok || !spinner.Enabled(f) {
		return nil
	}

	return func(file string) func() {
		return spinner.Start(f, "Reviewing "+file+"...")
	}
}

// report prints the summary, writes the JUnit report when configured, and
// turns a failing outcome into an [IssuesFoundError].
func report(w io.Writer, cfg *projectconfig.ProjectConfig, outcome *models.RunOutcome) error {
	reporting.WriteSummary(w, outcome)

	if cfg.Report.JUnit != "" {
		info := reporting.RunInfo{Engine: cfg.Review.Engine, Model: cfg.Review.Model}
		if err := reporting.WriteJUnitXML(outcome, info, cfg.Report.JUnit); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
		slog.Info("Wrote JUnit report", "path", cfg.Report.JUnit)
	}

	if outcome.ShouldFail {
		return &IssuesFoundError{
			Files:     outcome.BlockingFiles(),
			EvalError: outcome.EvalError,
		}
	}

	return nil
}
