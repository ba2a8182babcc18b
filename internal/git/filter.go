package git

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const diffHeaderPrefix = "diff --git "

// PathFilter keeps or drops diff paths by glob pattern.
type PathFilter struct {
	include []string
	exclude []string
}

// NewPathFilter validates the patterns and returns a filter.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &PathFilter{include: include, exclude: exclude}, nil
}

// Match reports whether path passes the filter. Exclude patterns win.
func (f *PathFilter) Match(path string) bool {
	if f == nil {
		return true
	}
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter keeps every path.
func (f *PathFilter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// FilterDiff drops the file sections of a unified git diff whose path does
// not pass the filter. Text before the first file section is kept.
func (f *PathFilter) FilterDiff(diff string) string {
	if f.Empty() || diff == "" {
		return diff
	}

	var b strings.Builder
	keep := true
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, diffHeaderPrefix) {
			keep = f.Match(diffHeaderPath(line))
		}
		if keep {
			b.WriteString(line)
		}
	}
	return b.String()
}

// diffHeaderPath extracts the destination path of a "diff --git a/x b/y" line.
func diffHeaderPath(line string) string {
	line = strings.TrimRight(strings.TrimPrefix(line, diffHeaderPrefix), "\r\n")
	if idx := strings.LastIndex(line, ` "b/`); idx != -1 {
		return strings.TrimSuffix(line[idx+4:], `"`)
	}
	if idx := strings.LastIndex(line, " b/"); idx != -1 {
		return line[idx+3:]
	}
	return strings.TrimPrefix(line, "a/")
}
