package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/output"
)

// isolate runs the test from an empty directory with an empty home and no
// credential.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
}

// tagRepo builds a repository with a v0.1 tag on the first of three
// commits.
func tagRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []string{"Initial commit", "feat: add parser", "fix: handle empty input"}
	for i, msg := range messages {
		name := filepath.Join(dir, "file.txt")
		if err := os.WriteFile(name, []byte(strings.Repeat("x\n", i+1)), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := wt.Add("file.txt"); err != nil {
			t.Fatalf("Add: %v", err)
		}
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: base.Add(time.Duration(i) * time.Hour)}
		h, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if i == 0 {
			if _, err := repo.CreateTag("v0.1", h, nil); err != nil {
				t.Fatalf("CreateTag: %v", err)
			}
		}
	}
	return dir
}

func TestApp_CommitsInfersPreviousTag(t *testing.T) {
	isolate(t)
	dir := tagRepo(t)
	out := filepath.Join(t.TempDir(), "commits.json")

	err := App().Run([]string{"logedit", "commits", "--repo", dir, "--format", "json", "--output", out})
	if err != nil {
		t.Fatalf("commits: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var report output.JSONCommitReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.PreviousVersion != "v0.1" || !report.OldInferred {
		t.Errorf("previous version = %q (inferred %v), want v0.1", report.PreviousVersion, report.OldInferred)
	}
	if report.TotalCommits != 2 {
		t.Fatalf("TotalCommits = %d, want 2", report.TotalCommits)
	}
	if report.Items[0].Subject != "feat: add parser" || report.Items[0].Category != "feature" {
		t.Errorf("unexpected first item: %+v", report.Items[0])
	}
	if report.Items[1].Category != "fix" {
		t.Errorf("unexpected second item: %+v", report.Items[1])
	}
}

func TestApp_CommitsCategoryFilter(t *testing.T) {
	isolate(t)
	dir := tagRepo(t)
	out := filepath.Join(t.TempDir(), "commits.json")

	err := App().Run([]string{"logedit", "c", "--repo", dir, "-f", "json", "-o", out, "--category", "fix", "v0.1:HEAD"})
	if err != nil {
		t.Fatalf("commits: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var report output.JSONCommitReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.OldInferred {
		t.Error("explicit range should not be reported as inferred")
	}
	if len(report.Items) != 1 || report.Items[0].Subject != "fix: handle empty input" {
		t.Errorf("unexpected items: %+v", report.Items)
	}
}

func TestApp_CommitsUnknownRef(t *testing.T) {
	isolate(t)
	dir := tagRepo(t)

	err := App().Run([]string{"logedit", "commits", "--repo", dir, "v9.9:HEAD"})
	if !apperr.Is(err, apperr.KindResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if apperr.ExitCode(err) != 3 {
		t.Errorf("ExitCode = %d, want 3", apperr.ExitCode(err))
	}
}

func TestApp_GlobalFlagsAfterSubcommand(t *testing.T) {
	isolate(t)
	dir := tagRepo(t)
	cfgPath := filepath.Join(t.TempDir(), "logedit.json")
	if err := os.WriteFile(cfgPath, []byte(`{"summarizer": {"workers": 4}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Run("CommitsQuiet", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "commits.json")
		err := App().Run([]string{"logedit", "commits", "--repo", dir, "-q", "--config", cfgPath, "-f", "json", "-o", out})
		if err != nil {
			t.Fatalf("commits: %v", err)
		}
	})

	t.Run("GenerateQuiet", func(t *testing.T) {
		err := App().Run([]string{"logedit", "generate", "--quiet", "--repo", dir, "v0.1:HEAD"})
		if !apperr.Is(err, apperr.KindConfiguration) || !strings.Contains(err.Error(), "API key") {
			t.Fatalf("expected missing credential error, got %v", err)
		}
	})

	t.Run("ConfigFile", func(t *testing.T) {
		var buf bytes.Buffer
		app := App()
		app.Writer = &buf
		if err := app.Run([]string{"logedit", "config", "--config", cfgPath, "-q"}); err != nil {
			t.Fatalf("config: %v", err)
		}
		if !strings.Contains(buf.String(), `"workers": 4`) {
			t.Errorf("expected file value in output:\n%s", buf.String())
		}
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		err := App().Run([]string{"logedit", "config", "--config", filepath.Join(t.TempDir(), "missing.json")})
		if !apperr.Is(err, apperr.KindConfiguration) {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})
}

func TestApp_GenerateWithoutCredential(t *testing.T) {
	isolate(t)
	dir := tagRepo(t)
	changelogPath := filepath.Join(t.TempDir(), "CHANGELOG.md")

	err := App().Run([]string{"logedit", "--quiet", "--repo", dir, "--changelog", changelogPath, "--append", "v0.1:HEAD"})
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if apperr.ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", apperr.ExitCode(err))
	}
	if _, statErr := os.Stat(changelogPath); !os.IsNotExist(statErr) {
		t.Error("changelog must not be created on failure")
	}
}

func TestApp_InvalidWorkers(t *testing.T) {
	isolate(t)

	err := App().Run([]string{"logedit", "generate", "--workers", "0"})
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestApp_ConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("LOGEDIT_SUMMARIZER__WORKERS", "7")

	t.Run("PrintsEffectiveConfig", func(t *testing.T) {
		var buf bytes.Buffer
		app := App()
		app.Writer = &buf
		if err := app.Run([]string{"logedit", "config", "--format", "yaml"}); err != nil {
			t.Fatalf("config: %v", err)
		}
		if !strings.Contains(buf.String(), "workers: 7") {
			t.Errorf("expected env override in output:\n%s", buf.String())
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		var buf bytes.Buffer
		app := App()
		app.Writer = &buf
		if err := app.Run([]string{"logedit", "config", "--defaults"}); err != nil {
			t.Fatalf("config: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !strings.Contains(buf.String(), `"workers": 3`) {
			t.Errorf("expected default workers:\n%s", buf.String())
		}
	})

	t.Run("WritesFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logedit.toml")
		app := App()
		app.ErrWriter = &bytes.Buffer{}
		if err := app.Run([]string{"logedit", "config", "--write", path}); err != nil {
			t.Fatalf("config: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !strings.Contains(string(data), "workers = 7") {
			t.Errorf("expected TOML output:\n%s", data)
		}
	})
}
