package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/masmgr/logedit-go/internal/apperr"
)

// Position selects where Insert places a new entry.
type Position string

const (
	// PositionTop puts the entry above the previous releases.
	PositionTop Position = "top"
	// PositionBottom appends the entry at the end of the file.
	PositionBottom Position = "bottom"
)

// ParsePosition validates a position name. Empty means PositionTop.
func ParsePosition(s string) (Position, error) {
	switch Position(strings.ToLower(strings.TrimSpace(s))) {
	case "", PositionTop:
		return PositionTop, nil
	case PositionBottom:
		return PositionBottom, nil
	default:
		return "", fmt.Errorf("invalid position %q (use top or bottom)", s)
	}
}

var (
	titlePattern   = regexp.MustCompile(`^#\s`)
	sectionPattern = regexp.MustCompile(`^#{2,6}\s`)
)

// Edit is a single insertion into a file.
type Edit struct {
	Offset int
	Text   string
}

// Apply returns content with the edit applied. content is not modified.
func (e Edit) Apply(content []byte) []byte {
	out := make([]byte, 0, len(content)+len(e.Text))
	out = append(out, content[:e.Offset]...)
	out = append(out, e.Text...)
	out = append(out, content[e.Offset:]...)
	return out
}

// PlanInsert decides where and how entry goes into content.
//
// At the top, the entry goes before the first section heading (level 2
// or deeper) that follows the leading "# " title, or right after the
// title when there is no section yet, or at the very start otherwise.
// At the bottom, it follows a blank line.
func PlanInsert(content []byte, entry string, pos Position) Edit {
	entry = strings.Trim(entry, "\n")
	text := string(content)

	if pos == PositionBottom {
		switch {
		case text == "":
			return Edit{Offset: 0, Text: entry + "\n"}
		case strings.HasSuffix(text, "\n"):
			return Edit{Offset: len(text), Text: "\n" + entry + "\n"}
		default:
			return Edit{Offset: len(text), Text: "\n\n" + entry + "\n"}
		}
	}

	titleEnd := -1
	offset := 0
	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		next := len(text)
		if end != -1 {
			next = offset + end + 1
		}
		line := text[offset:next]

		switch {
		case sectionPattern.MatchString(line):
			return Edit{Offset: offset, Text: entry + "\n\n"}
		case titleEnd == -1 && titlePattern.MatchString(line):
			titleEnd = next
		}
		offset = next
	}

	if titleEnd != -1 {
		if !strings.HasSuffix(text[:titleEnd], "\n") {
			return Edit{Offset: titleEnd, Text: "\n\n" + entry + "\n"}
		}
		return Edit{Offset: titleEnd, Text: "\n" + entry + "\n"}
	}
	if text == "" {
		return Edit{Offset: 0, Text: entry + "\n"}
	}
	return Edit{Offset: 0, Text: entry + "\n\n"}
}

// Insert writes entry into the changelog at path. The new content is
// written to a temporary file in the same directory and renamed over the
// original, so a failure leaves the original untouched.
func Insert(path, entry string, pos Position) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperr.IO(err, "cannot open changelog %s", path)
	}
	if info.IsDir() {
		return apperr.IO(nil, "changelog %s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return apperr.IO(err, "cannot read changelog %s", path)
	}

	updated := PlanInsert(content, entry, pos).Apply(content)
	if err := writeAtomic(path, updated, info.Mode().Perm()); err != nil {
		return apperr.IO(err, "cannot write changelog %s", path)
	}
	return nil
}

func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
