package git

import "strings"

// FileChange is the line churn of one file in a unified diff.
type FileChange struct {
	Path         string
	LinesAdded   int
	LinesDeleted int
}

// Churn returns the total lines changed (added + deleted).
func (f FileChange) Churn() int {
	return f.LinesAdded + f.LinesDeleted
}

// ParseDiffStat counts added and deleted lines per file section of a
// unified git diff. Binary files appear with zero churn.
func ParseDiffStat(diff string) []FileChange {
	var changes []FileChange
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, diffHeaderPrefix):
			changes = append(changes, FileChange{Path: diffHeaderPath(line)})
			inHunk = false
		case len(changes) == 0:
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			changes[len(changes)-1].LinesAdded++
		case strings.HasPrefix(line, "-"):
			changes[len(changes)-1].LinesDeleted++
		}
	}
	return changes
}
