package git

import (
	"context"
	"errors"
)

var (
	// ErrNotRepository indicates the path is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrUnknownRef indicates a revision that does not resolve to a commit.
	ErrUnknownRef = errors.New("unknown revision")
)

// Repository is the narrow version-control interface the resolver needs.
type Repository interface {
	// ResolveCommit returns the commit hash a revision points at.
	ResolveCommit(ctx context.Context, ref string) (string, error)
	// TagsReachableFrom lists the tags whose commit is ref or one of its ancestors.
	TagsReachableFrom(ctx context.Context, ref string) ([]TagInfo, error)
	// CommitsBetween returns the commits reachable from to but not from from,
	// oldest first. An empty from means the whole history of to.
	CommitsBetween(ctx context.Context, from, to string) ([]CommitRecord, error)
}

// Open returns the repository reader selected by opts.Backend.
func Open(opts ReadOptions) (Repository, error) {
	if opts.RepoPath == "" {
		opts.RepoPath = "."
	}
	if opts.Backend == BackendCLI {
		return NewCLIReader(opts)
	}
	return NewHistoryReader(opts)
}

// Compile-time interface conformance checks.
var (
	_ Repository = (*HistoryReader)(nil)
	_ Repository = (*CLIReader)(nil)
	_ Repository = (*MockRepository)(nil)
)
