package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownChangelogWriter writes changelog reports as Markdown.
type MarkdownChangelogWriter struct{}

// Write outputs the entry under a short header. With Explain a table of
// the commit summaries follows.
func (w *MarkdownChangelogWriter) Write(report *ChangelogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintf(out, "# Changelog Entry: %s\n\n", versionLabel(report.Version))
	fmt.Fprintf(out, "**Previous Version:** %s\n\n", previousLabel(report.PreviousVersion, report.OldInferred))
	fmt.Fprintf(out, "**Release Date:** %s\n\n", report.ReleaseDate.Format(reportDateLayout))
	fmt.Fprintf(out, "**Commits:** %d\n\n", len(report.Items))
	fmt.Fprintf(out, "**Model:** %s\n\n", report.Model)
	if report.Appended {
		fmt.Fprintf(out, "**Written To:** `%s` (%s)\n\n", report.ChangelogPath, report.Position)
	}

	fmt.Fprintln(out, "---")
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.TrimRight(report.Entry, "\n"))

	if options.Explain {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "---")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Commit Summaries")
		fmt.Fprintln(out)
		writeMarkdownCommitTable(out, report.Items, true)
	}
	return nil
}

// MarkdownCommitWriter writes commit list reports as Markdown.
type MarkdownCommitWriter struct{}

// Write outputs the commit list report as Markdown.
func (w *MarkdownCommitWriter) Write(report *CommitListReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commits in Range")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** %s..%s\n\n", previousLabel(report.PreviousVersion, report.OldInferred), versionLabel(report.Version))
	fmt.Fprintf(out, "**Total Commits:** %d\n\n", len(report.Items))

	if names := sortedCategories(report.Categories); len(names) > 0 {
		fmt.Fprintln(out, "## Categories")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Category | Commits |")
		fmt.Fprintln(out, "|----------|---------|")
		for _, name := range names {
			fmt.Fprintf(out, "| %s | %d |\n", name, report.Categories[name])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	writeMarkdownCommitTable(out, items, false)
	return nil
}

func writeMarkdownCommitTable(out io.Writer, items []CommitItem, withSummary bool) {
	if withSummary {
		fmt.Fprintln(out, "| # | SHA | Category | Message | Summary |")
		fmt.Fprintln(out, "|---|-----|----------|---------|---------|")
	} else {
		fmt.Fprintln(out, "| # | SHA | Date | Category | Files | Churn | Author | Message |")
		fmt.Fprintln(out, "|---|-----|------|----------|-------|-------|--------|---------|")
	}

	for i, item := range items {
		if withSummary {
			fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s |\n",
				i+1, shortSHA(item.SHA), item.Category,
				escapeMarkdown(item.Subject), escapeMarkdown(singleLine(item.Summary)))
		} else {
			fmt.Fprintf(out, "| %d | `%s` | %s | %s | %d | +%d -%d | %s | %s |\n",
				i+1, shortSHA(item.SHA), item.When.Format(reportDateLayout), item.Category,
				item.Stats.FileCount, item.Stats.LinesAdded, item.Stats.LinesDeleted,
				escapeMarkdown(item.Author), escapeMarkdown(item.Subject))
		}
	}
}
