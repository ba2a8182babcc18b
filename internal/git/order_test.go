package git

import (
	"context"
	"strings"
	"testing"
	"time"
)

func shaList(records []CommitRecord) string {
	var out []string
	for _, c := range records {
		out = append(out, c.SHA)
	}
	return strings.Join(out, ",")
}

func TestSortOldestFirst(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		records []CommitRecord
		want    string
	}{
		{
			name: "ByTime",
			records: []CommitRecord{
				{SHA: "b", When: at(2)},
				{SHA: "a", When: at(1)},
			},
			want: "a,b",
		},
		{
			name: "ParentBeforeSkewedChild",
			records: []CommitRecord{
				{SHA: "child", When: at(1), ParentSHAs: []string{"parent"}},
				{SHA: "parent", When: at(5)},
				{SHA: "next", When: at(6), ParentSHAs: []string{"child"}},
			},
			want: "parent,child,next",
		},
		{
			name: "MergeAfterBothBranches",
			records: []CommitRecord{
				{SHA: "merge", When: at(4), ParentSHAs: []string{"x", "y"}},
				{SHA: "x", When: at(3), ParentSHAs: []string{"root"}},
				{SHA: "y", When: at(2), ParentSHAs: []string{"root"}},
				{SHA: "root", When: at(1)},
			},
			want: "root,y,x,merge",
		},
		{
			name: "ParentsOutsideRange",
			records: []CommitRecord{
				{SHA: "d", When: at(3), ParentSHAs: []string{"c"}},
				{SHA: "c", When: at(2), ParentSHAs: []string{"boundary"}},
			},
			want: "c,d",
		},
		{
			name: "TiesKeepInputOrder",
			records: []CommitRecord{
				{SHA: "first", When: at(1)},
				{SHA: "second", When: at(1)},
			},
			want: "first,second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shaList(SortOldestFirst(tt.records)); got != tt.want {
				t.Errorf("SortOldestFirst() = %s, want %s", got, tt.want)
			}
		})
	}
}

// skewedHistory commits a child whose committer clock runs behind its
// parent.
func skewedHistory(t *testing.T) (*testRepo, []string) {
	t.Helper()
	r := newTestRepo(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	r.write("a.txt", "a\n")
	c1 := r.commit("first", base.Add(2*time.Hour))
	r.write("b.txt", "b\n")
	c2 := r.commit("second", base)
	r.write("c.txt", "c\n")
	c3 := r.commit("third", base.Add(3*time.Hour))
	return r, []string{c1, c2, c3}
}

func TestReaders_AgreeOnSkewedHistory(t *testing.T) {
	repo, shas := skewedHistory(t)
	want := strings.Join(shas, ",")
	ctx := context.Background()

	got, err := openHistory(t, repo.dir, nil, nil).CommitsBetween(ctx, "", "HEAD")
	if err != nil {
		t.Fatalf("HistoryReader.CommitsBetween: %v", err)
	}
	if shaList(got) != want {
		t.Errorf("HistoryReader order = %s, want %s", shaList(got), want)
	}
	if len(got[1].ParentSHAs) != 1 || got[1].ParentSHAs[0] != shas[0] {
		t.Errorf("ParentSHAs = %v", got[1].ParentSHAs)
	}

	requireGit(t)
	cli, err := NewCLIReader(ReadOptions{RepoPath: repo.dir})
	if err != nil {
		t.Fatalf("NewCLIReader: %v", err)
	}
	got, err = cli.CommitsBetween(ctx, "", "HEAD")
	if err != nil {
		t.Fatalf("CLIReader.CommitsBetween: %v", err)
	}
	if shaList(got) != want {
		t.Errorf("CLIReader order = %s, want %s", shaList(got), want)
	}
}
