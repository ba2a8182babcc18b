package cmd

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/config"
	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/changelog"
	"github.com/masmgr/logedit-go/internal/git"
	"github.com/masmgr/logedit-go/internal/output"
	"github.com/masmgr/logedit-go/internal/pipeline"
	"github.com/masmgr/logedit-go/internal/progress"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Range    string
	Reporter *progress.Reporter
	Pipeline *pipeline.Pipeline
}

// NewCommandContext creates a context from CLI flags. It loads the
// configuration and applies flag overrides but does not touch the
// repository.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	expr, err := rangeArg(c)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	if repoPath == "" {
		repoPath = "."
	}

	backend := git.BackendGoGit
	if c.Bool("git-cli") {
		backend = git.BackendCLI
	}

	reporter := progress.New(os.Stderr, globalBool(c, "quiet"))
	p := pipeline.New(cfg, git.ReadOptions{RepoPath: repoPath, Backend: backend}, reporter)

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		Range:    expr,
		Reporter: reporter,
		Pipeline: p,
	}, nil
}

// loadConfig loads configuration from file or defaults, then applies flag
// overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(globalString(c, "config"))
	if err != nil {
		return nil, err
	}

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.IsSet("workers") {
		cfg.Summarizer.Workers = c.Int("workers")
	}
	if c.IsSet("changelog") {
		cfg.Changelog.Path = c.String("changelog")
	}
	if c.IsSet("position") {
		cfg.Changelog.Position = c.String("position")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rangeArg returns the version expression from the positional argument or
// --range. Giving both is an error unless they agree.
func rangeArg(c *cli.Context) (string, error) {
	if c.NArg() > 1 {
		return "", usageError("expected at most one version range, got %d arguments", c.NArg())
	}
	arg := c.Args().First()
	flag := c.String("range")

	switch {
	case arg != "" && flag != "" && arg != flag:
		return "", usageError("version range given twice: %q and --range %q", arg, flag)
	case arg != "":
		return arg, nil
	default:
		return flag, nil
	}
}

// repoDisplayPath returns an absolute path for reports when possible.
func repoDisplayPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// parsePosition parses the --position flag; empty keeps the configured one.
func parsePosition(s string) (changelog.Position, error) {
	if s == "" {
		return "", nil
	}
	pos, err := changelog.ParsePosition(s)
	if err != nil {
		return "", apperr.Wrap(apperr.KindConfiguration, err, "invalid --position")
	}
	return pos, nil
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		Top:        c.Int("top"),
		OutputPath: c.String("output"),
		Explain:    c.Bool("explain"),
	}
}
