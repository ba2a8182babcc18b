// Package resolve turns a version expression into the ordered commits
// between two references.
package resolve

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/git"
)

// Range is a resolved version expression.
type Range struct {
	Spec VersionSpec
	// Old is the reference actually used as the lower bound.
	Old         string
	OldSHA      string
	NewSHA      string
	OldInferred bool
	// Commits are oldest first.
	Commits []git.CommitRecord
}

// Resolver resolves version expressions against a repository.
type Resolver struct {
	repo       git.Repository
	tagPattern *regexp.Regexp
}

// NewResolver returns a resolver; a nil tagPattern means DefaultTagPattern.
func NewResolver(repo git.Repository, tagPattern *regexp.Regexp) *Resolver {
	if tagPattern == nil {
		tagPattern = regexp.MustCompile(DefaultTagPattern)
	}
	return &Resolver{repo: repo, tagPattern: tagPattern}
}

// Resolve returns the commits reachable from spec.New but not from the
// lower bound, inferring the lower bound from version tags when absent.
func (r *Resolver) Resolve(ctx context.Context, spec VersionSpec) (*Range, error) {
	newRef := spec.New
	if newRef == "" {
		newRef = HeadSentinel
	}

	newSHA, err := r.repo.ResolveCommit(ctx, newRef)
	if err != nil {
		return nil, resolutionError(err, "cannot resolve %q", newRef)
	}

	rng := &Range{Spec: spec, Old: spec.Old, NewSHA: newSHA}
	if spec.InferOld() {
		tags, err := r.repo.TagsReachableFrom(ctx, newSHA)
		if err != nil {
			return nil, resolutionError(err, "cannot list tags")
		}
		tag, ok := LatestVersionTag(tags, newSHA, r.tagPattern)
		if !ok {
			return nil, apperr.Resolution(nil, "no version tag found before %s; pass an explicit old:new range", newRef)
		}
		rng.Old = tag.Name
		rng.OldSHA = tag.SHA
		rng.OldInferred = true
	} else {
		rng.OldSHA, err = r.repo.ResolveCommit(ctx, spec.Old)
		if err != nil {
			return nil, resolutionError(err, "cannot resolve %q", spec.Old)
		}
	}

	commits, err := r.repo.CommitsBetween(ctx, rng.OldSHA, newSHA)
	if err != nil {
		return nil, resolutionError(err, "cannot list commits %s..%s", rng.Old, newRef)
	}
	if len(commits) == 0 {
		return nil, apperr.Resolution(nil, "no commits between %s and %s", rng.Old, newRef)
	}
	rng.Commits = commits
	return rng, nil
}

// LatestVersionTag picks the version tag with the newest commit time whose
// commit is not exclude. Ties go to the higher version.
func LatestVersionTag(tags []git.TagInfo, exclude string, pattern *regexp.Regexp) (git.TagInfo, bool) {
	var candidates []git.TagInfo
	for _, t := range tags {
		if t.SHA == exclude || !pattern.MatchString(t.Name) {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return git.TagInfo{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.When.Equal(b.When) {
			return a.When.After(b.When)
		}
		return CompareVersions(a.Name, b.Name) > 0
	})
	return candidates[0], true
}

func resolutionError(err error, format string, args ...any) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Resolution(err, format, args...)
}
