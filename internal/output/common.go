package output

import (
	"io"
	"os"
	"sort"
	"strings"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

// versionLabel renders the HEAD sentinel as "unreleased".
func versionLabel(version string) string {
	if version == "" || version == "HEAD" {
		return "unreleased"
	}
	return version
}

func previousLabel(previous string, inferred bool) string {
	if previous == "" {
		return "(none)"
	}
	if inferred {
		return previous + " (latest tag)"
	}
	return previous
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}

// sortedCategories orders category counts by count, then by name.
func sortedCategories(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name, n := range counts {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// singleLine collapses whitespace so a summary fits a table cell.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
