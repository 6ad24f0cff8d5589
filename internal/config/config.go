// Package config loads evaluation settings from a YAML file with C7_*
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MaTriXy/c7score/aggregate"
	"github.com/MaTriXy/c7score/gemini"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
	"github.com/MaTriXy/c7score/syntax"
)

// Backends accepted by LLMConfig.Backend.
const (
	BackendGeminiAPI = "gemini-api"
	BackendVertex    = "vertex"
)

// Config is the top-level configuration.
type Config struct {
	Scale     float64            `yaml:"scale"`
	Strict    bool               `yaml:"strict"`
	Weights   map[string]float64 `yaml:"weights"`
	Heuristic HeuristicConfig    `yaml:"heuristic"`
	LLM       LLMConfig          `yaml:"llm"`
	Syntax    SyntaxConfig       `yaml:"syntax"`
	Logging   LoggingConfig      `yaml:"logging"`
	Store     StoreConfig        `yaml:"store"`
	Metrics   MetricsConfig      `yaml:"metrics"`
}

// HeuristicConfig holds the allow and deny lists of the heuristic suite.
// Empty lists keep the built-in defaults.
type HeuristicConfig struct {
	MinCodeWords        int      `yaml:"minCodeWords"`
	MaxTrivialCodeWords int      `yaml:"maxTrivialCodeWords"`
	TrivialLanguages    []string `yaml:"trivialLanguages"`
	InvalidLanguages    []string `yaml:"invalidLanguages"`
	CitationLanguages   []string `yaml:"citationLanguages"`
	LicenseKeywords     []string `yaml:"licenseKeywords"`
	ListGlyphs          []string `yaml:"listGlyphs"`
	ListLineRatio       float64  `yaml:"listLineRatio"`
	ListMinItems        int      `yaml:"listMinItems"`
	DirectoryKeywords   []string `yaml:"directoryKeywords"`
	TreeGlyphs          []string `yaml:"treeGlyphs"`
	ImportKeywords      []string `yaml:"importKeywords"`
	InstallKeywords     []string `yaml:"installKeywords"`
}

// LLMConfig selects the Gemini backend, model and sampling.
type LLMConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Backend         string  `yaml:"backend"`
	Model           string  `yaml:"model"`
	Project         string  `yaml:"project"`
	Location        string  `yaml:"location"`
	APIKeyEnv       string  `yaml:"apiKeyEnv"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"topP"`
	TopK            float32 `yaml:"topK"`
	MaxPromptTokens int     `yaml:"maxPromptTokens"`
	Legacy          bool    `yaml:"legacy"`
	DetectLanguage  bool    `yaml:"detectLanguage"`
}

// SyntaxConfig controls external linting.
type SyntaxConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StoreConfig locates the report history database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls the Prometheus textfile written after batch runs.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values, validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		defaults := cfg.Weights
		// a weights block replaces the defaults instead of merging into them
		cfg.Weights = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if cfg.Weights == nil {
			cfg.Weights = defaults
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used without a file.
func Default() *Config {
	s := gemini.DefaultSampling()
	return &Config{
		Scale:   aggregate.DefaultScale,
		Weights: aggregate.DefaultWeights(),
		LLM: LLMConfig{
			Enabled:         true,
			Backend:         BackendGeminiAPI,
			Model:           "gemini-2.5-pro",
			APIKeyEnv:       "GEMINI_API_KEY",
			Temperature:     s.Temperature,
			TopP:            s.TopP,
			TopK:            s.TopK,
			MaxPromptTokens: llmjudge.DefaultMaxPromptTokens,
		},
		Syntax: SyntaxConfig{
			Timeout: syntax.DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Path: "c7score.db",
		},
	}
}

// Validate rejects a bad scale, bad weights and an unknown backend.
func (c *Config) Validate() error {
	var errs []error
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %v", c.Scale))
	}
	if err := aggregate.Validate(c.Weights, nil); err != nil {
		errs = append(errs, fmt.Errorf("weights: %w", err))
	}
	if c.LLM.Enabled {
		switch c.LLM.Backend {
		case BackendGeminiAPI:
		case BackendVertex:
			if c.LLM.Project == "" || c.LLM.Location == "" {
				errs = append(errs, errors.New("llm: vertex backend needs project and location"))
			}
		default:
			errs = append(errs, fmt.Errorf("llm: unknown backend %q", c.LLM.Backend))
		}
		if c.LLM.Model == "" {
			errs = append(errs, errors.New("llm: model is required"))
		}
		if c.LLM.MaxPromptTokens < 0 {
			errs = append(errs, fmt.Errorf("llm: maxPromptTokens must not be negative, got %d", c.LLM.MaxPromptTokens))
		}
	}
	if r := c.Heuristic.ListLineRatio; r < 0 || r >= 1 {
		errs = append(errs, fmt.Errorf("heuristic: listLineRatio must be in [0, 1), got %v", r))
	}
	if c.Syntax.Timeout < 0 {
		errs = append(errs, fmt.Errorf("syntax: timeout must not be negative, got %s", c.Syntax.Timeout))
	}
	return errors.Join(errs...)
}

// HeuristicOptions converts the config into heuristic options.
func (c *Config) HeuristicOptions() heuristic.Options {
	h := c.Heuristic
	return heuristic.Options{
		Scale:               heuristic.DefaultScale,
		Strict:              c.Strict,
		MinCodeWords:        h.MinCodeWords,
		MaxTrivialCodeWords: h.MaxTrivialCodeWords,
		TrivialLanguages:    h.TrivialLanguages,
		InvalidLanguages:    h.InvalidLanguages,
		CitationLanguages:   h.CitationLanguages,
		LicenseKeywords:     h.LicenseKeywords,
		ListGlyphs:          h.ListGlyphs,
		ListLineRatio:       h.ListLineRatio,
		ListMinItems:        h.ListMinItems,
		DirectoryKeywords:   h.DirectoryKeywords,
		TreeGlyphs:          h.TreeGlyphs,
		ImportKeywords:      h.ImportKeywords,
		InstallKeywords:     h.InstallKeywords,
	}
}

// Sampling returns the configured Gemini sampling parameters.
func (c *Config) Sampling() gemini.Sampling {
	return gemini.Sampling{Temperature: c.LLM.Temperature, TopP: c.LLM.TopP, TopK: c.LLM.TopK}
}

// applyEnvOverrides reads C7_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	parseFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	parseFloat32 := func(key string, dst *float32) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = float32(f)
		}
	}
	parseBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	parseFloat("C7_SCALE", &cfg.Scale)
	parseBool("C7_STRICT", &cfg.Strict)
	if v := os.Getenv("C7_WEIGHTS"); v != "" {
		w, err := parseWeights(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("C7_WEIGHTS: %w", err))
		} else {
			cfg.Weights = w
		}
	}

	parseBool("C7_LLM_ENABLED", &cfg.LLM.Enabled)
	if v := os.Getenv("C7_LLM_BACKEND"); v != "" {
		cfg.LLM.Backend = v
	}
	if v := os.Getenv("C7_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("C7_LLM_PROJECT"); v != "" {
		cfg.LLM.Project = v
	}
	if v := os.Getenv("C7_LLM_LOCATION"); v != "" {
		cfg.LLM.Location = v
	}
	parseFloat32("C7_LLM_TEMPERATURE", &cfg.LLM.Temperature)
	parseFloat32("C7_LLM_TOP_P", &cfg.LLM.TopP)
	parseFloat32("C7_LLM_TOP_K", &cfg.LLM.TopK)
	if v := os.Getenv("C7_LLM_MAX_PROMPT_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("C7_LLM_MAX_PROMPT_TOKENS: %w", err))
		} else {
			cfg.LLM.MaxPromptTokens = n
		}
	}
	parseBool("C7_LLM_LEGACY", &cfg.LLM.Legacy)

	parseBool("C7_SYNTAX_ENABLED", &cfg.Syntax.Enabled)
	if v := os.Getenv("C7_SYNTAX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("C7_SYNTAX_TIMEOUT: %w", err))
		} else {
			cfg.Syntax.Timeout = d
		}
	}

	if v := os.Getenv("C7_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	parseBool("C7_LOGGING_DEVELOPMENT", &cfg.Logging.Development)
	if v := os.Getenv("C7_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("C7_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	return errors.Join(errs...)
}

// parseWeights reads "name=weight,name=weight".
func parseWeights(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=weight, got %q", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight of %q: %w", name, err)
		}
		out[strings.TrimSpace(name)] = w
	}
	return out, nil
}
