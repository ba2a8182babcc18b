package git

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
)

func openHistory(t *testing.T, dir string, include, exclude []string) *HistoryReader {
	t.Helper()
	r, err := NewHistoryReader(ReadOptions{RepoPath: dir, Include: include, Exclude: exclude})
	if err != nil {
		t.Fatalf("NewHistoryReader: %v", err)
	}
	return r
}

func TestHistoryReader_CommitsBetween_OldestFirst(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)

	got, err := r.CommitsBetween(context.Background(), shas[0], "HEAD")
	if err != nil {
		t.Fatalf("CommitsBetween: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(got))
	}
	if got[0].SHA != shas[1] || got[1].SHA != shas[2] {
		t.Fatalf("unexpected order: %s, %s", got[0].ShortSHA(), got[1].ShortSHA())
	}
	if got[0].Subject() != "Add app skeleton" {
		t.Errorf("Subject() = %q", got[0].Subject())
	}
	if got[0].Message != "Add app skeleton\n\nWith a guide." {
		t.Errorf("Message = %q", got[0].Message)
	}
	if got[1].Author.Email != "test@example.com" {
		t.Errorf("Author.Email = %q", got[1].Author.Email)
	}
	if !strings.Contains(got[1].Diff, "+func Run() {}") {
		t.Errorf("diff missing added line:\n%s", got[1].Diff)
	}
}

func TestHistoryReader_CommitsBetween_WholeHistory(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)

	got, err := r.CommitsBetween(context.Background(), "", shas[2])
	if err != nil {
		t.Fatalf("CommitsBetween: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(got))
	}
	root := got[0]
	if root.SHA != shas[0] || root.Parents != 0 {
		t.Fatalf("expected root commit first, got %s with %d parents", root.ShortSHA(), root.Parents)
	}
	if !strings.Contains(root.Diff, "+initial") {
		t.Errorf("root diff should be against the empty tree:\n%s", root.Diff)
	}
}

func TestHistoryReader_CommitsBetween_EmptyRange(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)

	got, err := r.CommitsBetween(context.Background(), shas[2], shas[2])
	if err != nil {
		t.Fatalf("CommitsBetween: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no commits, got %d", len(got))
	}
}

func TestHistoryReader_CommitsBetween_FiltersDiff(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, []string{"docs/**"})

	got, err := r.CommitsBetween(context.Background(), shas[0], shas[1])
	if err != nil {
		t.Fatalf("CommitsBetween: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}
	if strings.Contains(got[0].Diff, "docs/guide.md") {
		t.Errorf("excluded path leaked into diff:\n%s", got[0].Diff)
	}
	if !strings.Contains(got[0].Diff, "src/app.go") {
		t.Errorf("kept path missing from diff:\n%s", got[0].Diff)
	}
}

func TestHistoryReader_TagsReachableFrom(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)
	repo.tag("v2.0.0", shas[2])

	tests := []struct {
		ref  string
		want []string
	}{
		{ref: shas[0], want: []string{"v1.0.0"}},
		{ref: shas[1], want: []string{"v1.0.0", "v1.1.0"}},
		{ref: "HEAD", want: []string{"v1.0.0", "v1.1.0", "v2.0.0"}},
	}

	for _, tt := range tests {
		tags, err := r.TagsReachableFrom(context.Background(), tt.ref)
		if err != nil {
			t.Fatalf("TagsReachableFrom(%s): %v", tt.ref, err)
		}
		var names []string
		for _, tag := range tags {
			names = append(names, tag.Name)
		}
		sort.Strings(names)
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("TagsReachableFrom(%s) = %v, want %v", tt.ref, names, tt.want)
		}
	}
}

func TestHistoryReader_AnnotatedTagPeeled(t *testing.T) {
	repo, shas := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)

	tags, err := r.TagsReachableFrom(context.Background(), "HEAD")
	if err != nil {
		t.Fatalf("TagsReachableFrom: %v", err)
	}
	for _, tag := range tags {
		if tag.Name == "v1.1.0" && tag.SHA != shas[1] {
			t.Fatalf("annotated tag not peeled: got %s want %s", tag.SHA, shas[1])
		}
	}

	sha, err := r.ResolveCommit(context.Background(), "v1.1.0")
	if err != nil {
		t.Fatalf("ResolveCommit: %v", err)
	}
	if sha != shas[1] {
		t.Fatalf("ResolveCommit(v1.1.0) = %s, want %s", sha, shas[1])
	}
}

func TestHistoryReader_UnknownRef(t *testing.T) {
	repo, _ := linearHistory(t)
	r := openHistory(t, repo.dir, nil, nil)

	_, err := r.ResolveCommit(context.Background(), "v9.9.9")
	if !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
	_, err = r.CommitsBetween(context.Background(), "nope", "HEAD")
	if !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
}

func TestNewHistoryReader_NotRepository(t *testing.T) {
	_, err := NewHistoryReader(ReadOptions{RepoPath: t.TempDir()})
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("expected ErrNotRepository, got %v", err)
	}
}

func TestNewHistoryReader_InvalidPattern(t *testing.T) {
	repo, _ := linearHistory(t)
	if _, err := NewHistoryReader(ReadOptions{RepoPath: repo.dir, Include: []string{"src/[a"}}); err == nil {
		t.Fatal("expected error for invalid include pattern")
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	repo, _ := linearHistory(t)

	r, err := Open(ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := r.(*HistoryReader); !ok {
		t.Fatalf("default backend should be go-git, got %T", r)
	}
}
