// Package summarize produces one short summary per commit, in parallel,
// with the results returned in commit order.
package summarize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/classify"
	"github.com/masmgr/logedit-go/internal/git"
	"github.com/masmgr/logedit-go/internal/llm"
	"github.com/masmgr/logedit-go/internal/retry"
	"github.com/masmgr/logedit-go/internal/tokens"
)

const (
	// DefaultMaxTokens caps the prompt built from one commit.
	DefaultMaxTokens = 2048
	// DefaultWorkers is the number of concurrent summary calls.
	DefaultWorkers = 3
	// DefaultTemperature is the sampling temperature of summary calls.
	DefaultTemperature = 0.25
)

const systemPrompt = `You summarize a single git commit for the author of a changelog.
You receive the commit message followed by its diff, possibly truncated.
Reply with two or three plain sentences describing what changed and why it matters to users of the project.
Mention breaking changes, new options and fixed bugs explicitly.
Do not describe formatting-only or purely internal changes in detail.
Do not use markdown headings or bullet lists.`

// Summary is the summary of one commit.
type Summary struct {
	SHA      string
	When     time.Time
	Subject  string
	Message  string
	Category string
	Text     string
}

// Summarizer summarizes commits with a text-generation client.
type Summarizer struct {
	Client      llm.Completer
	Tokenizer   tokens.Tokenizer
	Classifier  *classify.Detector
	Model       string
	Temperature float32
	MaxTokens   int
	Workers     int
	Policy      retry.Policy

	// OnProgress is called after each finished commit.
	OnProgress func(done, total int)
}

// Summarize returns one summary per commit, in the order of commits.
// The first commit that cannot be summarized aborts the others and is
// reported as a summarization error naming that commit.
func (s *Summarizer) Summarize(ctx context.Context, commits []git.CommitRecord) ([]Summary, error) {
	if len(commits) == 0 {
		return nil, nil
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	slots := make([]Summary, len(commits))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range commits {
		g.Go(func() error {
			c := commits[i]
			text, err := s.summarizeOne(gctx, c)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return apperr.Summarization(c.SHA, err)
			}

			slots[i] = Summary{
				SHA:      c.SHA,
				When:     c.When,
				Subject:  c.Subject(),
				Message:  c.Message,
				Category: s.category(c),
				Text:     text,
			}

			if s.OnProgress != nil {
				mu.Lock()
				done++
				s.OnProgress(done, len(commits))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, c git.CommitRecord) (string, error) {
	req := llm.Request{
		Model:       s.Model,
		System:      systemPrompt,
		Prompts:     []string{s.Prompt(c)},
		Temperature: s.Temperature,
	}

	policy := s.Policy
	if policy.Retryable == nil {
		policy.Retryable = llm.IsTransient
	}

	var text string
	err := policy.Do(ctx, func(ctx context.Context) error {
		out, err := s.Client.Complete(ctx, req)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Prompt returns the commit message followed by its diff, capped at
// MaxTokens tokens.
func (s *Summarizer) Prompt(c git.CommitRecord) string {
	text := fmt.Sprintf("Commit %s\n\n%s\n\n%s", c.ShortSHA(), c.Message, c.Diff)

	max := s.MaxTokens
	if max <= 0 {
		max = DefaultMaxTokens
	}
	if s.Tokenizer == nil {
		return text
	}
	return s.Tokenizer.Truncate(text, max)
}

func (s *Summarizer) category(c git.CommitRecord) string {
	if s.Classifier == nil {
		return ""
	}
	return s.Classifier.Classify(c)
}
