// Package classify assigns a category hint to commits by matching their
// subject line against regex patterns.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/masmgr/logedit-go/internal/git"
)

// Built-in category names.
const (
	Merge    = "merge"
	Revert   = "revert"
	Fix      = "fix"
	Feature  = "feature"
	Docs     = "docs"
	Refactor = "refactor"
	Test     = "test"
	Chore    = "chore"
	Other    = "other"
)

// Rule maps a category to the patterns that select it.
type Rule struct {
	Category string   `json:"category"`
	Patterns []string `json:"patterns"`
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Category: Revert, Patterns: []string{`^revert\b`}},
		{Category: Merge, Patterns: []string{`^merge (branch|pull request|remote-tracking)\b`}},
		{Category: Fix, Patterns: []string{`^fix(\(.+\))?!?:`, `\bfix(ed|es)?\b`, `\bbug\b`, `\bhotfix\b`}},
		{Category: Feature, Patterns: []string{`^feat(\(.+\))?!?:`, `^(add|implement|introduce|support)\b`}},
		{Category: Docs, Patterns: []string{`^docs?(\(.+\))?:`, `\breadme\b`, `\bchangelog\b`}},
		{Category: Refactor, Patterns: []string{`^refactor(\(.+\))?!?:`, `\brefactor(ed|ing)?\b`, `^(rename|cleanup|clean up)\b`}},
		{Category: Test, Patterns: []string{`^test(s)?(\(.+\))?:`}},
		{Category: Chore, Patterns: []string{`^(chore|ci|build|style)(\(.+\))?:`, `^bump\b`}},
	}
}

type compiledRule struct {
	category string
	patterns []*regexp.Regexp
}

// Detector classifies commits by the first rule whose patterns match.
type Detector struct {
	rules []compiledRule
}

// NewDetector compiles rules. Patterns are compiled as case-insensitive.
// Returns an error if any pattern fails to compile.
func NewDetector(rules []Rule) (*Detector, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			return nil, fmt.Errorf("category rule without a name")
		}

		cr := compiledRule{category: name}
		for _, p := range r.Patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !strings.HasPrefix(p, "(?i)") {
				p = "(?i)" + p
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", name, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}
	return &Detector{rules: compiled}, nil
}

// CategoryOf returns the category of a commit subject, or Other.
func (d *Detector) CategoryOf(subject string) string {
	for _, r := range d.rules {
		for _, re := range r.patterns {
			if re.MatchString(subject) {
				return r.category
			}
		}
	}
	return Other
}

// Classify returns the category of c. Commits with several parents are
// merges regardless of their message.
func (d *Detector) Classify(c git.CommitRecord) string {
	if c.IsMerge() {
		return Merge
	}
	return d.CategoryOf(c.Subject())
}

// Counts tallies the categories of commits.
func (d *Detector) Counts(commits []git.CommitRecord) map[string]int {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[d.Classify(c)]++
	}
	return counts
}
