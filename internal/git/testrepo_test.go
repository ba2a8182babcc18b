package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo is a throwaway repository built with go-git.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@example.com", When: when}
}

func (r *testRepo) commit(msg string, when time.Time) string {
	r.t.Helper()
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:    signature(when),
		Committer: signature(when),
	})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return h.String()
}

func (r *testRepo) tag(name, sha string) {
	r.t.Helper()
	if _, err := r.repo.CreateTag(name, plumbing.NewHash(sha), nil); err != nil {
		r.t.Fatalf("CreateTag(%s): %v", name, err)
	}
}

func (r *testRepo) annotatedTag(name, sha string, when time.Time) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger:  signature(when),
		Message: "release " + name,
	})
	if err != nil {
		r.t.Fatalf("CreateTag(%s): %v", name, err)
	}
}

// linearHistory creates three commits one hour apart, tagging the first
// v1.0.0 (lightweight) and the second v1.1.0 (annotated).
func linearHistory(t *testing.T) (*testRepo, []string) {
	t.Helper()
	r := newTestRepo(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r.write("README.md", "initial\n")
	c1 := r.commit("Initial commit", base)
	r.tag("v1.0.0", c1)

	r.write("src/app.go", "package app\n")
	r.write("docs/guide.md", "guide\n")
	c2 := r.commit("Add app skeleton\n\nWith a guide.", base.Add(time.Hour))
	r.annotatedTag("v1.1.0", c2, base.Add(time.Hour))

	r.write("src/app.go", "package app\n\nfunc Run() {}\n")
	c3 := r.commit("fix: add Run", base.Add(2*time.Hour))

	return r, []string{c1, c2, c3}
}
