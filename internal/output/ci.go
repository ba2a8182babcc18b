package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// CIChangelogWriter writes changelog reports as NDJSON (one JSON object per
// line) for CI pipelines: a summary line, one line per commit, then the
// entry.
type CIChangelogWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type            string         `json:"type"`
	PreviousVersion string         `json:"previousVersion,omitempty"`
	Version         string         `json:"version"`
	TotalCommits    int            `json:"totalCommits"`
	Categories      map[string]int `json:"categories,omitempty"`
	Appended        bool           `json:"appended"`
	Changelog       string         `json:"changelog"`
}

// CICommitEntry represents a single commit in CI output.
type CICommitEntry struct {
	Type     string `json:"type"`
	SHA      string `json:"sha"`
	Date     string `json:"date"`
	Category string `json:"category,omitempty"`
	Subject  string `json:"subject"`
	Summary  string `json:"summary,omitempty"`
}

// CIEntry is the last line of CI output.
type CIEntry struct {
	Type  string `json:"type"`
	Model string `json:"model"`
	Text  string `json:"text"`
}

// Write outputs the changelog report as NDJSON.
func (w *CIChangelogWriter) Write(report *ChangelogReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:            "summary",
		PreviousVersion: report.PreviousVersion,
		Version:         versionLabel(report.Version),
		TotalCommits:    len(report.Items),
		Categories:      report.Categories,
		Appended:        report.Appended,
		Changelog:       report.ChangelogPath,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, item := range report.Items {
		entry := CICommitEntry{
			Type:     "commit",
			SHA:      item.SHA,
			Date:     item.When.Format(time.RFC3339),
			Category: item.Category,
			Subject:  item.Subject,
			Summary:  item.Summary,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	return writeNDJSONLine(out, CIEntry{Type: "entry", Model: report.Model, Text: report.Entry})
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
