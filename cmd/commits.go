package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/internal/classify"
	"github.com/masmgr/logedit-go/internal/output"
	"github.com/masmgr/logedit-go/internal/resolve"
)

// CommitsCmd returns the commits command. It resolves the range like
// generate does but makes no API calls and needs no credential.
func CommitsCmd() *cli.Command {
	flags := append(append(globalFlags(), commonFlags()...),
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of commits to show (0 for all)",
		},
		&cli.StringFlag{
			Name:  "category",
			Usage: "Only list commits of this category",
		},
	)

	return &cli.Command{
		Name:      "commits",
		Aliases:   []string{"c"},
		Usage:     "List the commits of a version range",
		ArgsUsage: "[old:new | new | old:]",
		Flags:     flags,
		Action:    commitsAction,
	}
}

func commitsAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	spec, err := resolve.ParseVersionSpec(ctx.Range)
	if err != nil {
		return err
	}
	rng, err := ctx.Pipeline.Resolve(c.Context, spec)
	if err != nil {
		return err
	}

	detector, err := classify.NewDetector(ctx.Config.Categories)
	if err != nil {
		return err
	}

	items := output.CommitItems(rng.Commits, nil, detector)
	counts := detector.Counts(rng.Commits)
	if category := c.String("category"); category != "" {
		items = filterCategory(items, category)
	}

	report := &output.CommitListReport{
		RepoPath:        repoDisplayPath(ctx.RepoPath),
		PreviousVersion: rng.Old,
		OldInferred:     rng.OldInferred,
		Version:         spec.New,
		GeneratedAt:     time.Now(),
		Categories:      counts,
		Items:           items,
	}
	return writeCommitReport(c, report)
}

func filterCategory(items []output.CommitItem, category string) []output.CommitItem {
	var out []output.CommitItem
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}
