package git

import "testing"

const sampleStatDiff = `diff --git a/src/app.go b/src/app.go
index 1111111..2222222 100644
--- a/src/app.go
+++ b/src/app.go
@@ -1,3 +1,4 @@
 package app
-func Old() {}
+func New() {}
+func Run() {}
diff --git a/logo.png b/logo.png
new file mode 100644
index 0000000..3333333
Binary files /dev/null and b/logo.png differ
diff --git a/docs/guide.md b/docs/guide.md
--- a/docs/guide.md
+++ b/docs/guide.md
@@ -10,2 +10,2 @@ Intro
--- a rule line
+++ a new rule
`

func TestParseDiffStat(t *testing.T) {
	changes := ParseDiffStat(sampleStatDiff)
	want := []FileChange{
		{Path: "src/app.go", LinesAdded: 2, LinesDeleted: 1},
		{Path: "logo.png"},
		{Path: "docs/guide.md", LinesAdded: 1, LinesDeleted: 1},
	}

	if len(changes) != len(want) {
		t.Fatalf("ParseDiffStat() returned %d files, expected %d: %+v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %+v, expected %+v", i, changes[i], want[i])
		}
	}
	if changes[0].Churn() != 3 {
		t.Errorf("Churn() = %d, expected 3", changes[0].Churn())
	}
}

func TestParseDiffStat_Empty(t *testing.T) {
	if got := ParseDiffStat(""); len(got) != 0 {
		t.Errorf("ParseDiffStat(\"\") = %+v, expected none", got)
	}
	if got := ParseDiffStat("+stray line\n-without header\n"); len(got) != 0 {
		t.Errorf("lines before any header should be ignored, got %+v", got)
	}
}
