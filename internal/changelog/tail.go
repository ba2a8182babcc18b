// Package changelog reads the tail of a changelog file and inserts new
// entries into it.
package changelog

import (
	"os"
	"strings"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/tokens"
)

// DefaultTailLines is the number of trailing lines used as style context.
const DefaultTailLines = 40

// ReadTail returns the last lines of the file at path, capped to
// tokenBudget tokens from the front. A zero budget or nil tokenizer
// disables the token cap.
func ReadTail(path string, lines, tokenBudget int, tok tokens.Tokenizer) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.IO(err, "cannot read changelog %s", path)
	}

	if lines <= 0 {
		lines = DefaultTailLines
	}
	tail := TailLines(string(data), lines)
	if tok != nil && tokenBudget > 0 {
		tail = tok.Tail(tail, tokenBudget)
	}
	return tail, nil
}

// TailLines returns the last n lines of text, line endings included.
func TailLines(text string, n int) string {
	if n <= 0 || text == "" {
		return ""
	}
	all := strings.SplitAfter(text, "\n")
	if all[len(all)-1] == "" {
		all = all[:len(all)-1]
	}
	if len(all) <= n {
		return text
	}
	return strings.Join(all[len(all)-n:], "")
}
