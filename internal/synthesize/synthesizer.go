// Package synthesize asks a text-generation model for a new changelog
// entry built from commit summaries and the tail of the changelog.
package synthesize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/llm"
	"github.com/masmgr/logedit-go/internal/resolve"
	"github.com/masmgr/logedit-go/internal/retry"
	"github.com/masmgr/logedit-go/internal/summarize"
)

// DefaultTemperature is the sampling temperature of the synthesis call.
const DefaultTemperature = 0.1

const summarySeparator = "\n\n---\n\n"

const systemPrompt = `You maintain the changelog of a software project.
Write the changelog entry for a new release from the commit summaries you are given.
Write succinctly, for developers who use the project.
Ignore merge commits unless they carry a change that matters on their own.
Ignore pure refactors and other changes with no visible effect.
Follow the format, heading levels and tone of the existing changelog exactly.
When asked to, infer the next version number from the previous entries and the significance of the changes.
Reply with the text of the entry only, without any commentary before or after it.`

// Input is everything the synthesis prompt is built from.
type Input struct {
	Summaries []summarize.Summary
	// Tail is the end of the existing changelog, used as style context.
	Tail string
	// Version is the version of the new entry, or resolve.HeadSentinel.
	Version         string
	PreviousVersion string
	ReleaseDate     time.Time
}

// Synthesizer produces changelog entries.
type Synthesizer struct {
	Client      llm.Completer
	Model       string
	Temperature float32
	Policy      retry.Policy
}

// Synthesize returns the new changelog entry. Empty output is an error.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (string, error) {
	req := s.Request(in)

	policy := s.Policy
	if policy.Retryable == nil {
		policy.Retryable = llm.IsTransient
	}

	var out string
	err := policy.Do(ctx, func(ctx context.Context) error {
		text, err := s.Client.Complete(ctx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperr.Synthesis(err, "failed to generate changelog entry with %s", s.Model)
	}

	entry := StripCodeFence(out)
	if entry == "" {
		return "", apperr.Synthesis(llm.ErrEmptyResponse, "model %s returned an empty changelog entry", s.Model)
	}
	return entry, nil
}

// Request builds the synthesis request. The user messages are, in order:
// changelog tail, version directive, release date, commit summaries and
// the closing instruction.
func (s *Synthesizer) Request(in Input) llm.Request {
	inferVersion := in.Version == "" || in.Version == resolve.HeadSentinel

	var prompts []string
	if strings.TrimSpace(in.Tail) == "" {
		prompts = append(prompts, "The changelog is empty so far. Use a conventional layout with one level-2 heading per release.")
	} else {
		prompts = append(prompts, "Here is the end of the current changelog, for reference on format and style:\n\n"+in.Tail)
	}

	if inferVersion {
		prompts = append(prompts, "The version number of this release is not known yet. "+
			"Infer the next version number from the previous entries and the significance of the changes below.")
	} else {
		prompts = append(prompts, fmt.Sprintf("The version of this release is %s.", in.Version))
	}

	date := in.ReleaseDate
	if date.IsZero() {
		date = time.Now()
	}
	prompts = append(prompts, fmt.Sprintf("The release date is %s.", date.Format(time.DateOnly)))

	prompts = append(prompts, fmt.Sprintf("Here are the summaries of the commits from %s to %s, oldest first:\n\n%s",
		orUnknown(in.PreviousVersion), versionLabel(in.Version, inferVersion), FormatSummaries(in.Summaries)))

	if inferVersion {
		prompts = append(prompts, "Give only the new changelog entry for the next version, most significant changes first.")
	} else {
		prompts = append(prompts, fmt.Sprintf("Give only the new changelog entry for version %s, most significant changes first.", in.Version))
	}

	return llm.Request{
		Model:       s.Model,
		System:      systemPrompt,
		Prompts:     prompts,
		Temperature: s.Temperature,
	}
}

// FormatSummaries renders summaries in commit order, separated by
// horizontal rules.
func FormatSummaries(summaries []summarize.Summary) string {
	parts := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		var b strings.Builder
		fmt.Fprintf(&b, "Commit: %s\n", shortSHA(sum.SHA))
		fmt.Fprintf(&b, "Timestamp: %s\n", sum.When.Format(time.RFC3339))
		fmt.Fprintf(&b, "Message: %s\n", strings.TrimSpace(sum.Message))
		if sum.Category != "" {
			fmt.Fprintf(&b, "Category: %s\n", sum.Category)
		}
		fmt.Fprintf(&b, "Summary: %s", strings.TrimSpace(sum.Text))
		parts = append(parts, b.String())
	}
	return strings.Join(parts, summarySeparator)
}

// StripCodeFence removes a markdown code fence wrapping the whole text.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	body := strings.TrimSuffix(text, "```")
	nl := strings.IndexByte(body, '\n')
	if nl == -1 {
		return text
	}
	return strings.TrimSpace(body[nl+1:])
}

func versionLabel(version string, infer bool) string {
	if infer {
		return resolve.HeadSentinel
	}
	return version
}

func orUnknown(s string) string {
	if s == "" {
		return "the first commit"
	}
	return s
}

func shortSHA(sha string) string {
	if len(sha) > 6 {
		return sha[:6]
	}
	return sha
}
