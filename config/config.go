package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/changelog"
	"github.com/masmgr/logedit-go/internal/classify"
	"github.com/masmgr/logedit-go/internal/resolve"
	"github.com/masmgr/logedit-go/internal/retry"
)

// EnvPrefix marks environment variables that override configuration keys.
// Nested keys are separated by a double underscore: LOGEDIT_RETRY__MAXATTEMPTS.
const EnvPrefix = "LOGEDIT_"

// Config is the root configuration structure.
type Config struct {
	Models      ModelConfig       `json:"models"`
	API         APIConfig         `json:"api"`
	Summarizer  SummarizerConfig  `json:"summarizer"`
	Synthesizer SynthesizerConfig `json:"synthesizer"`
	Retry       RetryConfig       `json:"retry"`
	Changelog   ChangelogConfig   `json:"changelog"`
	Tags        TagConfig         `json:"tags"`
	Filters     FilterConfig      `json:"filters"`
	Categories  []classify.Rule   `json:"categories"`
}

// ModelConfig names the models of each tier.
type ModelConfig struct {
	Summary string `json:"summary"` // Per-commit summaries
	Fast    string `json:"fast"`    // Synthesis with --fast
	Capable string `json:"capable"` // Synthesis by default
}

// APIConfig holds text-generation API options.
type APIConfig struct {
	KeyEnv            string  `json:"keyEnv"`            // Default: OPENAI_API_KEY
	BaseURL           string  `json:"baseURL"`           // Empty means the OpenAI endpoint
	TimeoutSeconds    int     `json:"timeoutSeconds"`    // Per request
	RequestsPerSecond float64 `json:"requestsPerSecond"` // 0 = unlimited
}

// SummarizerConfig holds per-commit summary options.
type SummarizerConfig struct {
	Workers     int     `json:"workers"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float32 `json:"temperature"`
}

// SynthesizerConfig holds changelog synthesis options.
type SynthesizerConfig struct {
	Temperature float32 `json:"temperature"`
}

// RetryConfig holds the backoff policy shared by all API calls.
type RetryConfig struct {
	MaxAttempts      int     `json:"maxAttempts"`
	BaseDelaySeconds float64 `json:"baseDelaySeconds"`
	MaxDelaySeconds  float64 `json:"maxDelaySeconds"`
	Multiplier       float64 `json:"multiplier"`
	Jitter           float64 `json:"jitter"`
}

// ChangelogConfig holds changelog file options.
type ChangelogConfig struct {
	Path       string `json:"path"`
	TailLines  int    `json:"tailLines"`
	TailTokens int    `json:"tailTokens"`
	Position   string `json:"position"` // top or bottom
}

// TagConfig holds version tag options.
type TagConfig struct {
	Pattern string `json:"pattern"` // Regex a tag must match to bound a range
}

// FilterConfig holds diff path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Models: ModelConfig{
			Summary: "gpt-4o-mini",
			Fast:    "gpt-4o-mini",
			Capable: "gpt-4o",
		},
		API: APIConfig{
			KeyEnv:         "OPENAI_API_KEY",
			TimeoutSeconds: 60,
		},
		Summarizer: SummarizerConfig{
			Workers:     3,
			MaxTokens:   2048,
			Temperature: 0.25,
		},
		Synthesizer: SynthesizerConfig{
			Temperature: 0.1,
		},
		Retry: RetryConfig{
			MaxAttempts:      3,
			BaseDelaySeconds: 5,
			MaxDelaySeconds:  60,
			Multiplier:       2,
			Jitter:           0.1,
		},
		Changelog: ChangelogConfig{
			Path:       "CHANGELOG.md",
			TailLines:  changelog.DefaultTailLines,
			TailTokens: 1024,
			Position:   string(changelog.PositionTop),
		},
		Tags: TagConfig{
			Pattern: resolve.DefaultTagPattern,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{"**/*.lock", "**/go.sum", "**/package-lock.json", "vendor/**"},
		},
		Categories: classify.DefaultRules(),
	}
}

// configNames are the file names searched in the working directory and
// then in the home directory.
var configNames = []string{".logedit.json", ".logedit.yaml", ".logedit.yml", ".logedit.toml"}

// LoadConfig loads configuration from a file, merging with defaults, then
// applies LOGEDIT_ environment overrides. An empty path searches the
// default locations.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "cannot read config file %s", path)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironment(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// SaveConfig saves configuration to a file in the format implied by its
// extension.
func SaveConfig(cfg *Config, path string) error {
	data, err := Marshal(cfg, formatOf(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as json, yaml or toml.
func Marshal(cfg *Config, format string) ([]byte, error) {
	if format == "" || format == "json" {
		return json.MarshalIndent(cfg, "", "  ")
	}

	k := koanf.New(".")
	if err := loadStruct(k, cfg); err != nil {
		return nil, err
	}
	p, err := parserFor(format)
	if err != nil {
		return nil, err
	}
	return k.Marshal(p)
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	switch {
	case c.Summarizer.Workers < 1:
		return apperr.Configuration("summarizer.workers must be at least 1, got %d", c.Summarizer.Workers)
	case c.Summarizer.MaxTokens < 1:
		return apperr.Configuration("summarizer.maxTokens must be positive, got %d", c.Summarizer.MaxTokens)
	case c.Retry.MaxAttempts < 1:
		return apperr.Configuration("retry.maxAttempts must be at least 1, got %d", c.Retry.MaxAttempts)
	case c.Retry.Jitter < 0 || c.Retry.Jitter > 1:
		return apperr.Configuration("retry.jitter must be between 0 and 1, got %g", c.Retry.Jitter)
	case c.API.TimeoutSeconds < 0:
		return apperr.Configuration("api.timeoutSeconds must not be negative")
	case c.API.RequestsPerSecond < 0:
		return apperr.Configuration("api.requestsPerSecond must not be negative")
	case strings.TrimSpace(c.API.KeyEnv) == "":
		return apperr.Configuration("api.keyEnv must name an environment variable")
	case c.Models.Summary == "" || c.Models.Fast == "" || c.Models.Capable == "":
		return apperr.Configuration("models.summary, models.fast and models.capable must be set")
	}

	if _, err := changelog.ParsePosition(c.Changelog.Position); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "invalid changelog.position")
	}
	if _, err := resolve.CompileTagPattern(c.Tags.Pattern); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "invalid tags.pattern")
	}
	if _, err := classify.NewDetector(c.Categories); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "invalid categories")
	}
	return nil
}

// APIKey reads the API credential from the environment variable named by
// api.keyEnv. A missing credential is a configuration error.
func (c *Config) APIKey(getenv func(string) string) (string, error) {
	key := strings.TrimSpace(getenv(c.API.KeyEnv))
	if key == "" {
		return "", apperr.Configuration("missing API key: set the %s environment variable", c.API.KeyEnv)
	}
	return key, nil
}

// SynthesisModel returns the model of the selected tier.
func (c *Config) SynthesisModel(fast bool) string {
	if fast {
		return c.Models.Fast
	}
	return c.Models.Capable
}

// RetryPolicy converts the retry settings into a policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   seconds(c.Retry.BaseDelaySeconds),
		MaxDelay:    seconds(c.Retry.MaxDelaySeconds),
		Multiplier:  c.Retry.Multiplier,
		Jitter:      c.Retry.Jitter,
	}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(data)
}
