package output

import (
	"time"

	"github.com/masmgr/logedit-go/internal/classify"
	"github.com/masmgr/logedit-go/internal/git"
	"github.com/masmgr/logedit-go/internal/stats"
	"github.com/masmgr/logedit-go/internal/summarize"
)

// Compile-time interface conformance checks.
var (
	// ChangelogReportWriter implementations
	_ ChangelogReportWriter = (*ConsoleChangelogWriter)(nil)
	_ ChangelogReportWriter = (*JSONChangelogWriter)(nil)
	_ ChangelogReportWriter = (*CSVChangelogWriter)(nil)
	_ ChangelogReportWriter = (*MarkdownChangelogWriter)(nil)
	_ ChangelogReportWriter = (*CIChangelogWriter)(nil)

	// CommitReportWriter implementations
	_ CommitReportWriter = (*ConsoleCommitWriter)(nil)
	_ CommitReportWriter = (*JSONCommitWriter)(nil)
	_ CommitReportWriter = (*CSVCommitWriter)(nil)
	_ CommitReportWriter = (*MarkdownCommitWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
	// Explain adds the per-commit summaries to changelog reports.
	Explain bool
}

// CommitItem is one commit of a report, with its summary when one was
// generated.
type CommitItem struct {
	SHA      string
	When     time.Time
	Author   string
	Subject  string
	Category string
	Summary  string
	Stats    stats.CommitStats
}

// ChangelogReport holds the outcome of a changelog generation.
type ChangelogReport struct {
	RepoPath        string
	PreviousVersion string
	OldInferred     bool
	Version         string
	ReleaseDate     time.Time
	GeneratedAt     time.Time
	Model           string
	SummaryModel    string
	ChangelogPath   string
	Appended        bool
	Position        string
	Entry           string
	Categories      map[string]int
	Items           []CommitItem
}

// CommitListReport holds the commits of a resolved range.
type CommitListReport struct {
	RepoPath        string
	PreviousVersion string
	OldInferred     bool
	Version         string
	GeneratedAt     time.Time
	Categories      map[string]int
	Items           []CommitItem
}

// ChangelogReportWriter writes changelog reports.
type ChangelogReportWriter interface {
	Write(report *ChangelogReport, options OutputOptions) error
}

// CommitReportWriter writes commit list reports.
type CommitReportWriter interface {
	Write(report *CommitListReport, options OutputOptions) error
}

// NewChangelogReportWriter creates a report writer for the specified format.
func NewChangelogReportWriter(format OutputFormat) ChangelogReportWriter {
	switch format {
	case FormatJSON:
		return &JSONChangelogWriter{}
	case FormatCSV:
		return &CSVChangelogWriter{}
	case FormatMarkdown:
		return &MarkdownChangelogWriter{}
	case FormatCI:
		return &CIChangelogWriter{}
	default:
		return &ConsoleChangelogWriter{}
	}
}

// NewCommitReportWriter creates a commit report writer for the specified format.
func NewCommitReportWriter(format OutputFormat) CommitReportWriter {
	switch format {
	case FormatJSON:
		return &JSONCommitWriter{}
	case FormatCSV:
		return &CSVCommitWriter{}
	case FormatMarkdown:
		return &MarkdownCommitWriter{}
	default:
		return &ConsoleCommitWriter{}
	}
}

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, bool) {
	switch f := OutputFormat(s); f {
	case FormatConsole, FormatJSON, FormatCSV, FormatMarkdown, FormatCI:
		return f, true
	case "":
		return FormatConsole, true
	default:
		return "", false
	}
}

// CommitItems builds report items from commits, attaching summaries by
// hash and diff stats. detector may be nil.
func CommitItems(commits []git.CommitRecord, summaries []summarize.Summary, detector *classify.Detector) []CommitItem {
	bySHA := make(map[string]summarize.Summary, len(summaries))
	for _, s := range summaries {
		bySHA[s.SHA] = s
	}

	items := make([]CommitItem, len(commits))
	for i, c := range commits {
		item := CommitItem{
			SHA:     c.SHA,
			When:    c.When,
			Author:  c.Author.Name,
			Subject: c.Subject(),
			Stats:   stats.Calculate(c),
		}
		if s, ok := bySHA[c.SHA]; ok {
			item.Summary = s.Text
			item.Category = s.Category
		}
		if item.Category == "" && detector != nil {
			item.Category = detector.Classify(c)
		}
		items[i] = item
	}
	return items
}
