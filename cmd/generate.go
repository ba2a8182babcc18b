package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/output"
	"github.com/masmgr/logedit-go/internal/pipeline"
)

// GenerateCmd returns the generate command.
func GenerateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Summarize the commits of a version range and write a changelog entry",
		ArgsUsage: "[old:new | new | old:]",
		Flags:     append(globalFlags(), generateFlags()...),
		Action:    generateAction,
	}
}

func generateFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:    "changelog",
			Aliases: []string{"c"},
			Usage:   "Changelog file to read for style and to append to",
			Value:   "CHANGELOG.md",
		},
		&cli.BoolFlag{
			Name:    "fast",
			Aliases: []string{"3", "gpt3"},
			Usage:   "Use the fast model tier for the changelog entry",
		},
		&cli.BoolFlag{
			Name:    "append",
			Aliases: []string{"a"},
			Usage:   "Insert the entry into the changelog instead of printing it",
		},
		&cli.StringFlag{
			Name:  "position",
			Usage: "Where to insert the entry (top, bottom)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of commits summarized in parallel",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Release date of the entry (YYYY-MM-DD, default: today)",
		},
		&cli.BoolFlag{
			Name:  "explain",
			Usage: "Show the per-commit summaries",
		},
	)
}

func generateAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	position, err := parsePosition(c.String("position"))
	if err != nil {
		return err
	}
	releaseDate, err := parseDateFlag(c.String("date"))
	if err != nil {
		return err
	}

	result, err := ctx.Pipeline.Run(c.Context, pipeline.Options{
		Range:         ctx.Range,
		ChangelogPath: ctx.Config.Changelog.Path,
		Fast:          c.Bool("fast"),
		Append:        c.Bool("append"),
		Position:      position,
		ReleaseDate:   releaseDate,
	})
	if err != nil {
		return err
	}

	return writeChangelogReport(c, changelogReport(ctx, result))
}

func changelogReport(ctx *CommandContext, result *pipeline.Result) *output.ChangelogReport {
	return &output.ChangelogReport{
		RepoPath:        repoDisplayPath(ctx.RepoPath),
		PreviousVersion: result.Range.Old,
		OldInferred:     result.Range.OldInferred,
		Version:         result.Range.Spec.New,
		ReleaseDate:     result.ReleaseDate,
		GeneratedAt:     time.Now(),
		Model:           result.Model,
		SummaryModel:    result.SummaryModel,
		ChangelogPath:   result.ChangelogPath,
		Appended:        result.Appended,
		Position:        string(result.Position),
		Entry:           result.Entry,
		Categories:      result.Categories,
		Items:           output.CommitItems(result.Range.Commits, result.Summaries, result.Detector),
	}
}

// parseDateFlag parses a date string flag. Empty means the zero time.
func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, apperr.Configuration("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return t, nil
}
