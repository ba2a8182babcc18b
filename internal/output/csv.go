package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var csvCommitHeaders = []string{"SHA", "Date", "Author", "Category", "Files", "LinesAdded", "LinesDeleted", "ChangeEntropy", "Subject", "Summary"}

// CSVChangelogWriter writes the commit summaries of a changelog report as
// CSV. The entry itself is not part of the table.
type CSVChangelogWriter struct{}

// Write outputs one row per summarized commit.
func (w *CSVChangelogWriter) Write(report *ChangelogReport, options OutputOptions) error {
	return writeCommitCSV(report.Items, options.OutputPath)
}

// CSVCommitWriter writes commit list reports as CSV.
type CSVCommitWriter struct{}

// Write outputs the commit list report as CSV.
func (w *CSVCommitWriter) Write(report *CommitListReport, options OutputOptions) error {
	return writeCommitCSV(limitTop(report.Items, options.Top), options.OutputPath)
}

func writeCommitCSV(items []CommitItem, outputPath string) error {
	writer, file, err := createCSVWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write(csvCommitHeaders); err != nil {
		return err
	}
	for _, item := range items {
		row := []string{
			item.SHA,
			item.When.Format(reportDateTimeLayout),
			item.Author,
			item.Category,
			strconv.Itoa(item.Stats.FileCount),
			strconv.Itoa(item.Stats.LinesAdded),
			strconv.Itoa(item.Stats.LinesDeleted),
			fmt.Sprintf("%.6f", item.Stats.ChangeEntropy),
			item.Subject,
			item.Summary,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(out), file, nil
}
