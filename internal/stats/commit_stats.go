// Package stats derives size and diffusion figures for commits from their
// diffs.
package stats

import (
	"strings"

	"github.com/masmgr/logedit-go/internal/git"
)

// CommitStats holds diffusion, size, and entropy figures for a single commit.
type CommitStats struct {
	FileCount      int     // Files touched
	DirectoryCount int     // Distinct directories
	SubsystemCount int     // Distinct top-level directories
	LinesAdded     int
	LinesDeleted   int
	ChangeEntropy  float64 // Normalized Shannon entropy
}

// TotalChurn returns the total lines changed (added + deleted).
func (s CommitStats) TotalChurn() int {
	return s.LinesAdded + s.LinesDeleted
}

// Calculate computes stats for a commit from its (already filtered) diff.
func Calculate(commit git.CommitRecord) CommitStats {
	return FromChanges(git.ParseDiffStat(commit.Diff))
}

// FromChanges computes stats for a set of file changes.
func FromChanges(changes []git.FileChange) CommitStats {
	directories := make(map[string]struct{})
	subsystems := make(map[string]struct{})

	var s CommitStats
	for _, change := range changes {
		s.LinesAdded += change.LinesAdded
		s.LinesDeleted += change.LinesDeleted

		dir, subsystem := extractPathComponents(change.Path)
		if dir != "" {
			directories[strings.ToLower(dir)] = struct{}{}
		}
		if subsystem != "" {
			subsystems[strings.ToLower(subsystem)] = struct{}{}
		}
	}

	s.FileCount = len(changes)
	s.DirectoryCount = len(directories)
	s.SubsystemCount = len(subsystems)
	if s.SubsystemCount == 0 && s.FileCount > 0 {
		// Root-level files only
		s.SubsystemCount = 1
	}
	s.ChangeEntropy = ChangeEntropy(changes)
	return s
}

// CalculateAll computes stats for every commit, in order.
func CalculateAll(commits []git.CommitRecord) []CommitStats {
	results := make([]CommitStats, len(commits))
	for i, c := range commits {
		results[i] = Calculate(c)
	}
	return results
}

// Total sums the size figures of a range. Entropy is not additive and is
// left at zero.
func Total(all []CommitStats) CommitStats {
	var total CommitStats
	for _, s := range all {
		total.FileCount += s.FileCount
		total.LinesAdded += s.LinesAdded
		total.LinesDeleted += s.LinesDeleted
	}
	return total
}

// extractPathComponents extracts directory path and subsystem from a file path.
// Subsystem is the first directory component (e.g., "src", "tests", "docs").
func extractPathComponents(path string) (directory, subsystem string) {
	if path == "" {
		return "", ""
	}

	normalizedPath := strings.ReplaceAll(path, "\\", "/")

	lastSlash := strings.LastIndex(normalizedPath, "/")
	if lastSlash <= 0 {
		return "", ""
	}

	directory = normalizedPath[:lastSlash]
	subsystem = normalizedPath[:strings.Index(normalizedPath, "/")]
	return directory, subsystem
}
