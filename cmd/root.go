package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/output"
)

// App creates the CLI application. Without a subcommand it generates an
// entry, so the generate flags are also accepted at the top level.
func App() *cli.App {
	// -v selects the version range.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}

	return &cli.App{
		Name:      "logedit",
		Usage:     "Generate changelog entries from git history",
		UsageText: "logedit [global options] [old:new | new | old:]",
		Version:   "0.3.0",
		Commands: []*cli.Command{
			GenerateCmd(),
			CommitsCmd(),
			ConfigCmd(),
		},
		Flags:  append(globalFlags(), generateFlags()...),
		Action: generateAction,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to configuration file",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only print the result and errors",
		},
	}
}

// globalString returns a global flag given at any level of the command
// line, the innermost level first.
func globalString(c *cli.Context, name string) string {
	for _, cc := range c.Lineage() {
		if cc.IsSet(name) {
			return cc.String(name)
		}
	}
	return c.String(name)
}

func globalBool(c *cli.Context, name string) bool {
	for _, cc := range c.Lineage() {
		if cc.IsSet(name) {
			return cc.Bool(name)
		}
	}
	return false
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "range",
			Aliases: []string{"v"},
			Usage:   "Version range old:new, new or old: (alternative to the argument)",
		},
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.BoolFlag{
			Name:  "git-cli",
			Usage: "Read the repository with the git binary instead of go-git",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns of diff paths to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns of diff paths to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "md":
		return output.FormatMarkdown
	case "ndjson":
		return output.FormatCI
	}
	if f, ok := output.ParseFormat(s); ok {
		return f
	}
	return output.FormatConsole
}

// Run executes the CLI application and exits with the status matching the
// error kind.
func Run() {
	if err := App().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
}

// usageError reports a bad flag combination.
func usageError(format string, args ...any) error {
	return apperr.Configuration(format, args...)
}
