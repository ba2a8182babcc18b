package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONChangelogWriter writes changelog reports as JSON.
type JSONChangelogWriter struct{}

// JSONChangelogReport is the JSON output structure for a generated entry.
type JSONChangelogReport struct {
	RepoPath        string           `json:"repo"`
	PreviousVersion string           `json:"previousVersion,omitempty"`
	OldInferred     bool             `json:"previousVersionInferred"`
	Version         string           `json:"version"`
	ReleaseDate     string           `json:"releaseDate"`
	GeneratedAt     string           `json:"generatedAt"`
	Model           string           `json:"model"`
	SummaryModel    string           `json:"summaryModel"`
	Changelog       string           `json:"changelog"`
	Appended        bool             `json:"appended"`
	Position        string           `json:"position,omitempty"`
	Entry           string           `json:"entry"`
	TotalCommits    int              `json:"totalCommits"`
	Categories      map[string]int   `json:"categories,omitempty"`
	Commits         []JSONCommitItem `json:"commits,omitempty"`
}

// JSONCommitItem is the JSON output structure for a single commit.
type JSONCommitItem struct {
	SHA      string          `json:"sha"`
	Date     string          `json:"date"`
	Author   string          `json:"author,omitempty"`
	Subject  string          `json:"subject"`
	Category string          `json:"category,omitempty"`
	Summary  string          `json:"summary,omitempty"`
	Stats    JSONCommitStats `json:"stats"`
}

// JSONCommitStats holds the diff figures of a commit in JSON format.
type JSONCommitStats struct {
	Files         int     `json:"files"`
	Directories   int     `json:"directories"`
	Subsystems    int     `json:"subsystems"`
	LinesAdded    int     `json:"linesAdded"`
	LinesDeleted  int     `json:"linesDeleted"`
	ChangeEntropy float64 `json:"changeEntropy"`
}

// Write outputs the changelog report as JSON. Commit summaries are
// included with Explain.
func (w *JSONChangelogWriter) Write(report *ChangelogReport, options OutputOptions) error {
	jsonReport := JSONChangelogReport{
		RepoPath:        report.RepoPath,
		PreviousVersion: report.PreviousVersion,
		OldInferred:     report.OldInferred,
		Version:         versionLabel(report.Version),
		ReleaseDate:     report.ReleaseDate.Format(reportDateLayout),
		GeneratedAt:     report.GeneratedAt.Format(time.RFC3339),
		Model:           report.Model,
		SummaryModel:    report.SummaryModel,
		Changelog:       report.ChangelogPath,
		Appended:        report.Appended,
		Entry:           report.Entry,
		TotalCommits:    len(report.Items),
		Categories:      report.Categories,
	}
	if report.Appended {
		jsonReport.Position = report.Position
	}
	if options.Explain {
		jsonReport.Commits = jsonCommitItems(report.Items)
	}

	return writeJSON(jsonReport, options.OutputPath)
}

// JSONCommitWriter writes commit list reports as JSON.
type JSONCommitWriter struct{}

// JSONCommitReport is the JSON output structure for a commit list.
type JSONCommitReport struct {
	RepoPath        string           `json:"repo"`
	PreviousVersion string           `json:"previousVersion,omitempty"`
	OldInferred     bool             `json:"previousVersionInferred"`
	Version         string           `json:"version"`
	GeneratedAt     string           `json:"generatedAt"`
	TotalCommits    int              `json:"totalCommits"`
	Categories      map[string]int   `json:"categories,omitempty"`
	Items           []JSONCommitItem `json:"items"`
}

// Write outputs the commit list report as JSON.
func (w *JSONCommitWriter) Write(report *CommitListReport, options OutputOptions) error {
	jsonReport := JSONCommitReport{
		RepoPath:        report.RepoPath,
		PreviousVersion: report.PreviousVersion,
		OldInferred:     report.OldInferred,
		Version:         versionLabel(report.Version),
		GeneratedAt:     report.GeneratedAt.Format(time.RFC3339),
		TotalCommits:    len(report.Items),
		Categories:      report.Categories,
		Items:           jsonCommitItems(limitTop(report.Items, options.Top)),
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func jsonCommitItems(items []CommitItem) []JSONCommitItem {
	out := make([]JSONCommitItem, len(items))
	for i, item := range items {
		out[i] = JSONCommitItem{
			SHA:      item.SHA,
			Date:     item.When.Format(time.RFC3339),
			Author:   item.Author,
			Subject:  item.Subject,
			Category: item.Category,
			Summary:  item.Summary,
			Stats: JSONCommitStats{
				Files:         item.Stats.FileCount,
				Directories:   item.Stats.DirectoryCount,
				Subsystems:    item.Stats.SubsystemCount,
				LinesAdded:    item.Stats.LinesAdded,
				LinesDeleted:  item.Stats.LinesDeleted,
				ChangeEntropy: item.Stats.ChangeEntropy,
			},
		}
	}
	return out
}

func writeJSON(data interface{}, outputPath string) error {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return encodeJSON(out, data)
}

func encodeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
