// Package projectconfig provides the ProjectConfig struct and loader for
// .mdspell.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/mdspell/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by [Load].
const FileName = ".mdspell.yaml"

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultEngine         = EngineOpenAI
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultMaxTokens      = 16000
	DefaultTimeoutSeconds = 60

	DefaultResultsPath = "results.txt"
)

// Review engines.
const (
	EngineOpenAI  = "openai"
	EngineCopilot = "copilot"
	EngineMock    = "mock"
)

// Credential variables used when review.api_key_env is not set.
const (
	OpenAIKeyEnv  = "OPENAI_API_KEY"
	CopilotKeyEnv = "GITHUB_TOKEN"
)

// ErrMissingCredential is returned by [ReviewConfig.Credential] when the
// review engine's credential variable is unset or empty.
var ErrMissingCredential = errors.New("missing review service credential")

// ReviewConfig holds settings for the review service.
type ReviewConfig struct {
	Engine         string `yaml:"engine,omitempty"`
	Model          string `yaml:"model,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKeyEnv      string `yaml:"api_key_env,omitempty"`
	MaxTokens      int    `yaml:"max_tokens,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// ResultsConfig holds settings for the aggregate results log.
type ResultsConfig struct {
	Path  string `yaml:"path,omitempty"`
	Fresh *bool  `yaml:"fresh,omitempty"`
}

// ReportConfig holds CI report settings.
type ReportConfig struct {
	JUnit string `yaml:"junit,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .mdspell.yaml.
type ProjectConfig struct {
	Review  ReviewConfig  `yaml:"review,omitempty"`
	Results ResultsConfig `yaml:"results,omitempty"`
	Report  ReportConfig  `yaml:"report,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Review: ReviewConfig{
			Engine:         DefaultEngine,
			Model:          DefaultOpenAIModel,
			BaseURL:        DefaultOpenAIBaseURL,
			MaxTokens:      DefaultMaxTokens,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Results: ResultsConfig{
			Path:  DefaultResultsPath,
			Fresh: utils.Ptr(true),
		},
	}
}

// Load finds .mdspell.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	return parse(data, FileName)
}

// LoadFile loads an explicit config file. Unlike [Load], a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return parse(data, path)
}

func parse(data []byte, name string) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// Validate checks values that cannot be defaulted.
func (c *ProjectConfig) Validate() error {
	switch c.Review.Engine {
	case EngineOpenAI, EngineCopilot, EngineMock:
	default:
		return fmt.Errorf("unknown review engine %q (expected %s, %s or %s)", c.Review.Engine, EngineOpenAI, EngineCopilot, EngineMock)
	}

	if c.Review.MaxTokens <= 0 {
		return fmt.Errorf("review.max_tokens must be positive, got %d", c.Review.MaxTokens)
	}

	if c.Review.TimeoutSeconds <= 0 {
		return fmt.Errorf("review.timeout_seconds must be positive, got %d", c.Review.TimeoutSeconds)
	}

	if strings.TrimSpace(c.Results.Path) == "" {
		return errors.New("results.path must not be empty")
	}

	return nil
}

// FreshResults reports whether a stale results log should be removed before
// the first file is reviewed.
func (c *ProjectConfig) FreshResults() bool {
	return c.Results.Fresh == nil || *c.Results.Fresh
}

// CredentialEnv returns the name of the environment variable holding the
// review engine's credential. The mock engine needs none.
func (r *ReviewConfig) CredentialEnv() string {
	if r.APIKeyEnv != "" {
		return r.APIKeyEnv
	}

	switch r.Engine {
	case EngineCopilot:
		return CopilotKeyEnv
	case EngineMock:
		return ""
	default:
		return OpenAIKeyEnv
	}
}

// Credential resolves the review engine's credential using lookup, which is
// normally [os.LookupEnv].
func (r *ReviewConfig) Credential(lookup func(string) (string, bool)) (string, error) {
	name := r.CredentialEnv()
	if name == "" {
		return "", nil
	}

	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrMissingCredential, name)
	}

	return v, nil
}

// findConfigFile walks up from dir looking for .mdspell.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Review
	if src.Review.Engine != "" {
		dst.Review.Engine = src.Review.Engine
		if src.Review.Engine != EngineOpenAI && src.Review.Model == "" {
			// the OpenAI model name means nothing to the other engines
			dst.Review.Model = ""
		}
	}
	if src.Review.Model != "" {
		dst.Review.Model = src.Review.Model
	}
	if src.Review.BaseURL != "" {
		dst.Review.BaseURL = src.Review.BaseURL
	}
	if src.Review.APIKeyEnv != "" {
		dst.Review.APIKeyEnv = src.Review.APIKeyEnv
	}
	if src.Review.MaxTokens != 0 {
		dst.Review.MaxTokens = src.Review.MaxTokens
	}
	if src.Review.TimeoutSeconds != 0 {
		dst.Review.TimeoutSeconds = src.Review.TimeoutSeconds
	}

	// Results
	if src.Results.Path != "" {
		dst.Results.Path = src.Results.Path
	}
	if src.Results.Fresh != nil {
		dst.Results.Fresh = src.Results.Fresh
	}

	// Report
	if src.Report.JUnit != "" {
		dst.Report.JUnit = src.Report.JUnit
	}
}
