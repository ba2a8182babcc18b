package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masmgr/logedit-go/internal/apperr"
)

// isolate runs the test from an empty directory with an empty home so that
// no real configuration file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Summarizer.Workers != 3 {
		t.Errorf("Summarizer.Workers = %d, expected 3", cfg.Summarizer.Workers)
	}
	if cfg.Summarizer.MaxTokens != 2048 {
		t.Errorf("Summarizer.MaxTokens = %d, expected 2048", cfg.Summarizer.MaxTokens)
	}
	if cfg.Summarizer.Temperature != 0.25 {
		t.Errorf("Summarizer.Temperature = %f, expected 0.25", cfg.Summarizer.Temperature)
	}
	if cfg.Synthesizer.Temperature != 0.1 {
		t.Errorf("Synthesizer.Temperature = %f, expected 0.1", cfg.Synthesizer.Temperature)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %d, expected 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Changelog.TailLines != 40 {
		t.Errorf("Changelog.TailLines = %d, expected 40", cfg.Changelog.TailLines)
	}
	if cfg.Changelog.Path != "CHANGELOG.md" {
		t.Errorf("Changelog.Path = %q, expected CHANGELOG.md", cfg.Changelog.Path)
	}
	if cfg.API.KeyEnv != "OPENAI_API_KEY" {
		t.Errorf("API.KeyEnv = %q, expected OPENAI_API_KEY", cfg.API.KeyEnv)
	}
	if cfg.Tags.Pattern != `^v?(\d+\.)*\d+$` {
		t.Errorf("Tags.Pattern = %q", cfg.Tags.Pattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestRetryPolicy(t *testing.T) {
	p := DefaultConfig().RetryPolicy()
	if p.MaxAttempts != 3 || p.BaseDelay != 5*time.Second || p.MaxDelay != time.Minute {
		t.Errorf("unexpected policy: %+v", p)
	}
	if p.Multiplier != 2 || p.Jitter != 0.1 {
		t.Errorf("unexpected growth: %+v", p)
	}
}

func TestSynthesisModel(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SynthesisModel(true) != cfg.Models.Fast {
		t.Errorf("fast tier should use %s", cfg.Models.Fast)
	}
	if cfg.SynthesisModel(false) != cfg.Models.Capable {
		t.Errorf("default tier should use %s", cfg.Models.Capable)
	}
}

func TestAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	env := map[string]string{"OPENAI_API_KEY": " sk-test \n"}

	key, err := cfg.APIKey(func(k string) string { return env[k] })
	if err != nil || key != "sk-test" {
		t.Fatalf("APIKey() = %q, %v", key, err)
	}

	_, err = cfg.APIKey(func(string) string { return "" })
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := DefaultConfig()
	if cfg.String() != want.String() {
		t.Errorf("expected defaults, got:\n%s", cfg)
	}
}

func TestLoadConfig_JSONMergesOverDefaults(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".logedit.json"), `{
  "summarizer": {"workers": 5},
  "filters": {"exclude": ["docs/**"]}
}`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Summarizer.Workers != 5 {
		t.Errorf("Workers = %d, expected 5", cfg.Summarizer.Workers)
	}
	if cfg.Summarizer.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, default should survive", cfg.Summarizer.MaxTokens)
	}
	if len(cfg.Filters.Exclude) != 1 || cfg.Filters.Exclude[0] != "docs/**" {
		t.Errorf("Exclude = %v, expected file value to replace the default list", cfg.Filters.Exclude)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `models:
  capable: gpt-4.1
changelog:
  position: bottom
categories:
  - category: security
    patterns: ['\bcve\b']
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Models.Capable != "gpt-4.1" || cfg.Models.Fast != "gpt-4o-mini" {
		t.Errorf("unexpected models: %+v", cfg.Models)
	}
	if cfg.Changelog.Position != "bottom" {
		t.Errorf("Position = %q", cfg.Changelog.Position)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Category != "security" {
		t.Errorf("Categories = %+v", cfg.Categories)
	}
}

func TestLoadConfig_TOMLFromHome(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	writeFile(t, filepath.Join(home, ".logedit.toml"), `
[retry]
maxAttempts = 5
baseDelaySeconds = 0.5

[api]
requestsPerSecond = 2.5
`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, expected 5", cfg.Retry.MaxAttempts)
	}
	if cfg.RetryPolicy().BaseDelay != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v", cfg.RetryPolicy().BaseDelay)
	}
	if cfg.API.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.API.RequestsPerSecond)
	}
}

func TestLoadConfig_WorkingDirectoryWinsOverHome(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(os.Getenv("HOME"), ".logedit.json"), `{"summarizer": {"workers": 7}}`)
	writeFile(t, filepath.Join(dir, ".logedit.json"), `{"summarizer": {"workers": 2}}`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Summarizer.Workers != 2 {
		t.Errorf("Workers = %d, expected the working directory file", cfg.Summarizer.Workers)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".logedit.json"), `{"retry": {"maxAttempts": 4}}`)
	t.Setenv("LOGEDIT_RETRY__MAXATTEMPTS", "6")
	t.Setenv("LOGEDIT_MODELS__CAPABLE", "gpt-test")
	t.Setenv("LOGEDIT_SUMMARIZER__TEMPERATURE", "0.5")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Retry.MaxAttempts != 6 {
		t.Errorf("MaxAttempts = %d, expected env override 6", cfg.Retry.MaxAttempts)
	}
	if cfg.Models.Capable != "gpt-test" {
		t.Errorf("Models.Capable = %q", cfg.Models.Capable)
	}
	if cfg.Summarizer.Temperature != 0.5 {
		t.Errorf("Temperature = %v", cfg.Summarizer.Temperature)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "malformed json", file: "bad.json", content: `{"summarizer": `},
		{name: "zero workers", file: "workers.json", content: `{"summarizer": {"workers": 0}}`},
		{name: "bad position", file: "pos.json", content: `{"changelog": {"position": "middle"}}`},
		{name: "bad tag pattern", file: "tags.json", content: `{"tags": {"pattern": "(["}}`},
		{name: "bad category", file: "cat.yaml", content: "categories:\n  - category: x\n    patterns: ['[']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			if !apperr.Is(err, apperr.KindConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error for missing explicit file, got %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			cfg := DefaultConfig()
			cfg.Summarizer.Workers = 9
			cfg.Filters.Exclude = []string{"gen/**"}

			path := filepath.Join(t.TempDir(), name)
			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if loaded.String() != cfg.String() {
				t.Errorf("round trip mismatch:\n%s\nvs\n%s", loaded, cfg)
			}
		})
	}
}
