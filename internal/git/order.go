package git

import "sort"

// SortOldestFirst orders records so that no commit comes before any of
// its parents in the list. Among the commits whose listed parents are
// already placed, the earliest committer time goes first, then the one
// that came first in records. Both readers use it, so a clock-skewed
// history reads the same from either backend.
func SortOldestFirst(records []CommitRecord) []CommitRecord {
	index := make(map[string]int, len(records))
	for i, c := range records {
		index[c.SHA] = i
	}

	pending := make([]int, len(records))
	children := make([][]int, len(records))
	for i, c := range records {
		for _, p := range c.ParentSHAs {
			if j, ok := index[p]; ok && j != i {
				pending[i]++
				children[j] = append(children[j], i)
			}
		}
	}

	before := func(a, b int) bool {
		if !records[a].When.Equal(records[b].When) {
			return records[a].When.Before(records[b].When)
		}
		return a < b
	}

	var ready []int
	push := func(i int) {
		at := sort.Search(len(ready), func(k int) bool { return before(i, ready[k]) })
		ready = append(ready, 0)
		copy(ready[at+1:], ready[at:])
		ready[at] = i
	}
	for i := range records {
		if pending[i] == 0 {
			push(i)
		}
	}

	out := make([]CommitRecord, 0, len(records))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		out = append(out, records[i])
		for _, child := range children[i] {
			pending[child]--
			if pending[child] == 0 {
				push(child)
			}
		}
	}
	return out
}
