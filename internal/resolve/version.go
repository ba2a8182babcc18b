package resolve

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/masmgr/logedit-go/internal/apperr"
)

// HeadSentinel as the new bound asks the synthesizer to infer the version.
const HeadSentinel = "HEAD"

// DefaultTagPattern matches version tags such as v1.2.3, 0.1 or 12.
const DefaultTagPattern = `^v?(\d+\.)*\d+$`

// VersionSpec is a parsed version expression.
type VersionSpec struct {
	// Old is the exclusive lower bound. Empty means infer it from tags.
	Old string
	// New is the inclusive upper bound, possibly HeadSentinel.
	New string
}

// InferOld reports whether the lower bound must be inferred.
func (s VersionSpec) InferOld() bool {
	return s.Old == ""
}

// InferVersion reports whether the version of the new entry is unknown.
func (s VersionSpec) InferVersion() bool {
	return s.New == HeadSentinel
}

func (s VersionSpec) String() string {
	if s.Old == "" {
		return s.New
	}
	return s.Old + ":" + s.New
}

// ParseVersionSpec parses "old:new", "new", "old:" or "" (HEAD).
func ParseVersionSpec(expr string) (VersionSpec, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return VersionSpec{New: HeadSentinel}, nil
	}

	parts := strings.Split(expr, ":")
	switch len(parts) {
	case 1:
		return VersionSpec{New: parts[0]}, nil
	case 2:
		old, newRef := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if old == "" {
			return VersionSpec{}, apperr.Resolution(nil, "invalid version range %q: empty old version", expr)
		}
		if newRef == "" {
			newRef = HeadSentinel
		}
		return VersionSpec{Old: old, New: newRef}, nil
	default:
		return VersionSpec{}, apperr.Resolution(nil, "invalid version range %q: expected old:new", expr)
	}
}

// CompileTagPattern compiles a version tag pattern; empty means the default.
func CompileTagPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultTagPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
	}
	return re, nil
}

// CompareVersions orders version tags by their numeric components.
// A leading "v" is ignored; a missing component counts as zero.
func CompareVersions(a, b string) int {
	pa := versionParts(a)
	pb := versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		x, y := big.NewInt(0), big.NewInt(0)
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if c := x.Cmp(y); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func versionParts(v string) []*big.Int {
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	var parts []*big.Int
	for _, s := range strings.Split(v, ".") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			n = big.NewInt(0)
		}
		parts = append(parts, n)
	}
	return parts
}
