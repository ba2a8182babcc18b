package stats

import (
	"math"

	"github.com/masmgr/logedit-go/internal/git"
)

// ChangeEntropy calculates the normalized Shannon entropy of the churn
// distribution within a commit.
// Returns a value between 0 and 1:
//   - 0 = focused change (single file or all changes in one file)
//   - 1 = highly dispersed change (changes evenly distributed)
func ChangeEntropy(changes []git.FileChange) float64 {
	if len(changes) < 2 {
		return 0.0
	}

	totalChurn := 0
	for _, change := range changes {
		totalChurn += change.Churn()
	}
	if totalChurn == 0 {
		// Only renames or binary files: treat as uniform
		return 1.0
	}

	// -Σ(p_i × log2(p_i))
	entropy := 0.0
	for _, change := range changes {
		if churn := change.Churn(); churn > 0 {
			p := float64(churn) / float64(totalChurn)
			entropy -= p * math.Log2(p)
		}
	}

	normalized := entropy / math.Log2(float64(len(changes)))
	return math.Max(0, math.Min(1, normalized))
}
