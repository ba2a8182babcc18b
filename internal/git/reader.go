package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// HistoryReader reads commit ranges from a Git repository with go-git.
type HistoryReader struct {
	repo   *git.Repository
	opts   ReadOptions
	filter *PathFilter
}

// NewHistoryReader opens the repository containing opts.RepoPath.
func NewHistoryReader(opts ReadOptions) (*HistoryReader, error) {
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(opts.RepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, opts.RepoPath)
		}
		return nil, err
	}
	return &HistoryReader{repo: repo, opts: opts, filter: filter}, nil
}

// ResolveCommit returns the hash of the commit ref points at.
func (r *HistoryReader) ResolveCommit(_ context.Context, ref string) (string, error) {
	c, err := r.commit(ref)
	if err != nil {
		return "", err
	}
	return c.Hash.String(), nil
}

// TagsReachableFrom lists the tags whose commit is ref or an ancestor of it.
func (r *HistoryReader) TagsReachableFrom(ctx context.Context, ref string) ([]TagInfo, error) {
	target, err := r.commit(ref)
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	var tags []TagInfo
	err = iter.ForEach(func(tagRef *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := r.peel(tagRef.Hash())
		if err != nil {
			// Tags on trees or blobs never bound a commit range.
			return nil
		}

		reachable := c.Hash == target.Hash
		if !reachable {
			reachable, err = c.IsAncestor(target)
			if err != nil {
				return fmt.Errorf("check ancestry of tag %s: %w", tagRef.Name().Short(), err)
			}
		}
		if !reachable {
			return nil
		}

		tags = append(tags, TagInfo{
			Name: tagRef.Name().Short(),
			SHA:  c.Hash.String(),
			When: c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// CommitsBetween returns the commits reachable from to but not from from,
// in SortOldestFirst order.
func (r *HistoryReader) CommitsBetween(ctx context.Context, from, to string) ([]CommitRecord, error) {
	head, err := r.commit(to)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]struct{})
	if from != "" {
		base, err := r.commit(from)
		if err != nil {
			return nil, err
		}
		baseIter, err := r.repo.Log(&git.LogOptions{From: base.Hash})
		if err != nil {
			return nil, fmt.Errorf("read history of %s: %w", from, err)
		}
		err = baseIter.ForEach(func(c *object.Commit) error {
			excluded[c.Hash] = struct{}{}
			return ctx.Err()
		})
		if err != nil {
			return nil, err
		}
	}

	cIter, err := r.repo.Log(&git.LogOptions{From: head.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("read history of %s: %w", to, err)
	}

	var newestFirst []*object.Commit
	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, skip := excluded[c.Hash]; skip {
			return nil
		}
		newestFirst = append(newestFirst, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]CommitRecord, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		c := newestFirst[i]
		diff, err := r.commitDiff(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("diff commit %s: %w", c.Hash.String()[:7], err)
		}
		records = append(records, CommitRecord{
			SHA:        c.Hash.String(),
			When:       c.Committer.When,
			Author:     AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
			Message:    strings.TrimRight(c.Message, "\n"),
			Parents:    c.NumParents(),
			ParentSHAs: parentSHAs(c),
			Diff:       diff,
		})
	}
	return SortOldestFirst(records), nil
}

func parentSHAs(c *object.Commit) []string {
	out := make([]string, 0, len(c.ParentHashes))
	for _, h := range c.ParentHashes {
		out = append(out, h.String())
	}
	return out
}

// commit resolves a revision (branch, tag, hash, HEAD~2...) to a commit.
func (r *HistoryReader) commit(ref string) (*object.Commit, error) {
	if ref == "" {
		ref = "HEAD"
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	c, err := r.repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return c, nil
}

// peel follows annotated tags down to the commit they point at.
func (r *HistoryReader) peel(h plumbing.Hash) (*object.Commit, error) {
	if tag, err := r.repo.TagObject(h); err == nil {
		return tag.Commit()
	}
	return r.repo.CommitObject(h)
}

// commitDiff renders the patch of c against its first parent.
func (r *HistoryReader) commitDiff(ctx context.Context, c *object.Commit) (string, error) {
	tree, err := c.Tree()
	if err != nil {
		return "", err
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return "", err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return "", err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return "", err
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", err
	}
	return r.filter.FilterDiff(patch.String()), nil
}
