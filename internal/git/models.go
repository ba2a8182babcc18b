package git

import (
	"strings"
	"time"
)

// CommitRecord is a commit read from version control.
// Records are immutable once read.
type CommitRecord struct {
	SHA     string
	When    time.Time // committer time
	Author  AuthorInfo
	Message string
	Parents int
	// ParentSHAs lists the parent hashes, first parent first.
	ParentSHAs []string
	// Diff is the unified diff against the first parent, or against the
	// empty tree for a root commit, after path filters are applied.
	Diff string
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// Subject returns the first line of the commit message.
func (c CommitRecord) Subject() string {
	msg := strings.TrimSpace(c.Message)
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		return strings.TrimSpace(msg[:idx])
	}
	return msg
}

// ShortSHA returns the abbreviated commit hash.
func (c CommitRecord) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// IsMerge returns true for commits with more than one parent.
func (c CommitRecord) IsMerge() bool {
	return c.Parents > 1
}

// TagInfo is a tag peeled to the commit it points at.
type TagInfo struct {
	Name string
	SHA  string
	When time.Time // committer time of the tagged commit
}

// Backend selects how the repository is queried.
type Backend string

const (
	// BackendGoGit reads the repository with go-git (no git binary needed).
	BackendGoGit Backend = "go-git"
	// BackendCLI shells out to the git binary.
	BackendCLI Backend = "cli"
)

// ReadOptions configures a repository reader.
type ReadOptions struct {
	RepoPath string
	Include  []string // Glob patterns of diff paths to keep
	Exclude  []string // Glob patterns of diff paths to drop
	Backend  Backend
}
