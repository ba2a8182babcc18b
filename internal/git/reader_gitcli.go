package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIReader reads commit ranges by shelling out to the git binary.
type CLIReader struct {
	opts   ReadOptions
	filter *PathFilter
}

// NewCLIReader checks that opts.RepoPath is inside a work tree.
func NewCLIReader(opts ReadOptions) (*CLIReader, error) {
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("git binary not found: %w", err)
	}

	r := &CLIReader{opts: opts, filter: filter}
	if _, err := r.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, opts.RepoPath)
	}
	return r, nil
}

// ResolveCommit returns the hash of the commit ref points at.
func (r *CLIReader) ResolveCommit(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	out, err := r.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return strings.TrimSpace(string(out)), nil
}

// TagsReachableFrom lists the tags merged into ref.
func (r *CLIReader) TagsReachableFrom(ctx context.Context, ref string) ([]TagInfo, error) {
	sha, err := r.ResolveCommit(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Annotated tags report the peeled commit in the *-prefixed atoms,
	// lightweight tags in the plain ones.
	const format = "%(refname:short)%00%(*objectname)%00%(objectname)%00%(*committerdate:iso-strict)%00%(committerdate:iso-strict)"
	out, err := r.run(ctx, "for-each-ref", "--merged="+sha, "--format="+format, "refs/tags")
	if err != nil {
		return nil, err
	}
	return parseTagRefs(out)
}

func parseTagRefs(out []byte) ([]TagInfo, error) {
	var tags []TagInfo
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) < 5 {
			return nil, fmt.Errorf("unexpected git for-each-ref line %q", line)
		}

		sha, date := fields[1], fields[3]
		if sha == "" {
			sha, date = fields[2], fields[4]
		}
		if date == "" {
			// Tag on a tree or blob.
			continue
		}

		when, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parse tag date %q: %w", date, err)
		}
		tags = append(tags, TagInfo{Name: fields[0], SHA: sha, When: when})
	}
	return tags, nil
}

// CommitsBetween returns the commits of from..to in SortOldestFirst order.
func (r *CLIReader) CommitsBetween(ctx context.Context, from, to string) ([]CommitRecord, error) {
	if to == "" {
		to = "HEAD"
	}
	if _, err := r.ResolveCommit(ctx, to); err != nil {
		return nil, err
	}
	rangeSpec := to
	if from != "" {
		if _, err := r.ResolveCommit(ctx, from); err != nil {
			return nil, err
		}
		rangeSpec = from + ".." + to
	}

	// Each commit starts with 0x1e; fields are NUL-separated and the full
	// message runs to the next record.
	const format = "%x1e%H%x00%P%x00%cI%x00%an%x00%ae%x00%B"
	out, err := r.run(ctx, "log", "--no-color", "--reverse", "--pretty=format:"+format, rangeSpec)
	if err != nil {
		return nil, err
	}

	records, err := parseLogRecords(out)
	if err != nil {
		return nil, err
	}

	for i := range records {
		diff, err := r.commitDiff(ctx, records[i])
		if err != nil {
			return nil, err
		}
		records[i].Diff = r.filter.FilterDiff(diff)
	}
	return SortOldestFirst(records), nil
}

func parseLogRecords(out []byte) ([]CommitRecord, error) {
	var records []CommitRecord
	for _, rec := range bytes.Split(out, []byte{0x1e}) {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		fields := bytes.SplitN(rec, []byte{0x00}, 6)
		if len(fields) < 6 {
			return nil, fmt.Errorf("unexpected git log record format")
		}

		when, err := time.Parse(time.RFC3339, string(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("parse committer date: %w", err)
		}

		parents := strings.Fields(string(fields[1]))
		records = append(records, CommitRecord{
			SHA:        string(fields[0]),
			When:       when,
			Author:     AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
			Message:    strings.TrimRight(string(fields[5]), "\n"),
			Parents:    len(parents),
			ParentSHAs: parents,
		})
	}
	return records, nil
}

func (r *CLIReader) commitDiff(ctx context.Context, c CommitRecord) (string, error) {
	args := []string{"--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/"}
	var out []byte
	var err error
	if c.Parents == 0 {
		out, err = r.run(ctx, append([]string{"diff-tree", "--no-commit-id", "-p", "--root"}, append(args, c.SHA)...)...)
	} else {
		out, err = r.run(ctx, append([]string{"diff"}, append(args, c.SHA+"^1", c.SHA)...)...)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (r *CLIReader) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", r.opts.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
