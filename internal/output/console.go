package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleChangelogWriter writes the generated entry to the console.
type ConsoleChangelogWriter struct{}

// Write prints the entry, or only a confirmation once it was inserted into
// the changelog. With Explain the commit summaries come first.
func (w *ConsoleChangelogWriter) Write(report *ChangelogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if options.Explain {
		writeHeading(out, "Commit Summaries")
		fmt.Fprintf(out, "Previous version: %s\n", previousLabel(report.PreviousVersion, report.OldInferred))
		fmt.Fprintf(out, "Version: %s\n", versionLabel(report.Version))
		fmt.Fprintf(out, "Models: %s (summaries), %s (entry)\n\n", report.SummaryModel, report.Model)

		for i, item := range report.Items {
			fmt.Fprintf(out, "%d. %s %s %s\n", i+1, shortSHA(item.SHA),
				categoryColor(item.Category)("[%s]", item.Category), item.Subject)
			if item.Summary != "" {
				for _, line := range strings.Split(strings.TrimSpace(item.Summary), "\n") {
					fmt.Fprintf(out, "   %s\n", line)
				}
			}
		}
		writeCategories(out, report.Categories)
		fmt.Fprintln(out)
	}

	if report.Appended {
		fmt.Fprintf(out, "Added %s entry at the %s of %s\n", versionLabel(report.Version), report.Position, report.ChangelogPath)
		if !options.Explain {
			return nil
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.TrimRight(report.Entry, "\n"))
	return nil
}

// ConsoleCommitWriter writes commit list reports to the console.
type ConsoleCommitWriter struct{}

// Write outputs the commit list report to the console.
func (w *ConsoleCommitWriter) Write(report *CommitListReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	writeHeading(out, "Commits in Range")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Range: %s..%s\n", previousLabel(report.PreviousVersion, report.OldInferred), versionLabel(report.Version))
	fmt.Fprintf(out, "Total commits: %d\n\n", len(report.Items))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tDate\tCategory\tFiles\tChurn\tAuthor\tMessage")
	for i, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t+%d -%d\t%s\t%s\n",
			i+1,
			shortSHA(item.SHA),
			item.When.Format(reportDateLayout),
			categoryColor(item.Category)("%s", item.Category),
			item.Stats.FileCount,
			item.Stats.LinesAdded,
			item.Stats.LinesDeleted,
			item.Author,
			truncateMessage(item.Subject, 60),
		)
	}
	tw.Flush()

	writeCategories(out, report.Categories)
	return nil
}

func writeHeading(out io.Writer, title string) {
	color.New(color.FgGreen).Fprintln(out, title)
}

func writeCategories(out io.Writer, counts map[string]int) {
	names := sortedCategories(counts)
	if len(names) == 0 {
		return
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %d", name, counts[name])
	}
	fmt.Fprintf(out, "\nCategories: %s\n", strings.Join(parts, ", "))
}

func categoryColor(category string) func(string, ...interface{}) string {
	switch category {
	case "fix", "revert":
		return color.RedString
	case "feature":
		return color.GreenString
	case "docs", "test":
		return color.CyanString
	case "merge", "chore":
		return color.YellowString
	default:
		return fmt.Sprintf
	}
}
