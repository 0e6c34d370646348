// Package wizard collects .mdspell.yaml settings interactively.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/mdspell/internal/projectconfig"
	"github.com/spboyer/mdspell/internal/utils"
	"golang.org/x/term"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	Engine      string
	Model       string
	ResultsPath string
	Fresh       bool
	JUnit       string

	// base carries the settings the form does not ask about.
	base *projectconfig.ProjectConfig
}

// AnswersFrom seeds the wizard from an existing configuration so re-running
// init keeps the current values as defaults.
func AnswersFrom(cfg *projectconfig.ProjectConfig) Answers {
	return Answers{
		Engine:      cfg.Review.Engine,
		Model:       cfg.Review.Model,
		ResultsPath: cfg.Results.Path,
		Fresh:       cfg.FreshResults(),
		JUnit:       cfg.Report.JUnit,
		base:        cfg,
	}
}

// Run runs an interactive huh form seeded with initial.
func Run(in io.Reader, out io.Writer, initial Answers) (*Answers, error) {
	a := initial

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Review engine").
				Description("Service that proofreads your files").
				Options(
					huh.NewOption("OpenAI (OPENAI_API_KEY)", projectconfig.EngineOpenAI),
					huh.NewOption("GitHub Copilot (GITHUB_TOKEN)", projectconfig.EngineCopilot),
					huh.NewOption("Mock (offline, always clean)", projectconfig.EngineMock),
				).
				Value(&a.Engine),
			huh.NewInput().
				Title("Model").
				Description("Leave blank for the engine's default").
				Placeholder(projectconfig.DefaultOpenAIModel).
				Value(&a.Model),
			huh.NewInput().
				Title("Results log").
				Description("Where review replies are appended").
				Placeholder(projectconfig.DefaultResultsPath).
				Value(&a.ResultsPath).
				Validate(validateResultsPath),
			huh.NewConfirm().
				Title("Start each run with an empty results log?").
				Value(&a.Fresh),
			huh.NewInput().
				Title("JUnit report").
				Description("Path for a JUnit XML report, blank to disable").
				Value(&a.JUnit),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., CI, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &a, nil
}

// Config overlays the answers onto the configuration they were seeded from,
// or onto the defaults, and validates the result.
func (a *Answers) Config() (*projectconfig.ProjectConfig, error) {
	cfg := projectconfig.New()
	if a.base != nil {
		*cfg = *a.base
	}

	if engine := strings.TrimSpace(a.Engine); engine != "" && engine != cfg.Review.Engine {
		cfg.Review.Engine = engine
		// a custom variable belongs to the previous engine
		cfg.Review.APIKeyEnv = ""
	}

	model := strings.TrimSpace(a.Model)
	switch {
	case model != "":
		cfg.Review.Model = model
	case cfg.Review.Engine == projectconfig.EngineOpenAI:
		cfg.Review.Model = projectconfig.DefaultOpenAIModel
	default:
		cfg.Review.Model = ""
	}

	switch {
	case cfg.Review.Engine != projectconfig.EngineOpenAI:
		cfg.Review.BaseURL = ""
	case cfg.Review.BaseURL == "":
		cfg.Review.BaseURL = projectconfig.DefaultOpenAIBaseURL
	}

	if p := strings.TrimSpace(a.ResultsPath); p != "" {
		cfg.Results.Path = p
	}

	cfg.Results.Fresh = utils.Ptr(a.Fresh)
	cfg.Report.JUnit = strings.TrimSpace(a.JUnit)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateResultsPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		// blank keeps the default
		return nil
	}
	if strings.HasSuffix(s, "/") || strings.HasSuffix(s, string(os.PathSeparator)) {
		return errors.New("results log must be a file, not a directory")
	}
	return nil
}
