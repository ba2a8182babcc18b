// Package pipeline runs a logedit generation: resolve the commit range,
// summarize every commit, synthesize the changelog entry and optionally
// insert it into the changelog file.
package pipeline

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/masmgr/logedit-go/config"
	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/changelog"
	"github.com/masmgr/logedit-go/internal/classify"
	"github.com/masmgr/logedit-go/internal/git"
	"github.com/masmgr/logedit-go/internal/llm"
	"github.com/masmgr/logedit-go/internal/resolve"
	"github.com/masmgr/logedit-go/internal/retry"
	"github.com/masmgr/logedit-go/internal/stats"
	"github.com/masmgr/logedit-go/internal/summarize"
	"github.com/masmgr/logedit-go/internal/synthesize"
	"github.com/masmgr/logedit-go/internal/tokens"
)

// Reporter receives status updates. *progress.Reporter implements it.
type Reporter interface {
	Status(format string, args ...any)
	Warn(format string, args ...any)
	Start(label string, total int)
	Progress(done, total int)
	Stop(ok bool)
}

// Options are the per-run choices made on the command line.
type Options struct {
	// Range is the version expression: old:new, new, old: or empty.
	Range         string
	ChangelogPath string
	Fast          bool
	Append        bool
	Position      changelog.Position
	// ReleaseDate defaults to the current date.
	ReleaseDate time.Time
}

// Result is the outcome of a successful run.
type Result struct {
	Range         *resolve.Range
	Summaries     []summarize.Summary
	Entry         string
	Model         string
	SummaryModel  string
	ChangelogPath string
	Appended      bool
	Position      changelog.Position
	Categories    map[string]int
	ReleaseDate   time.Time
	// Detector is the category detector the summaries were built with.
	Detector *classify.Detector
}

// Pipeline wires the stages to their collaborators. Every collaborator is
// a field so tests can replace it.
type Pipeline struct {
	Config *config.Config

	Getenv         func(string) string
	OpenRepository func() (git.Repository, error)
	NewClient      func(apiKey string) (llm.Completer, error)
	NewTokenizer   func(model string) (tokens.Tokenizer, error)
	Reporter       Reporter
}

// New returns a pipeline reading the repository described by repoOpts and
// calling the API configured in cfg.
func New(cfg *config.Config, repoOpts git.ReadOptions, reporter Reporter) *Pipeline {
	if repoOpts.Include == nil {
		repoOpts.Include = cfg.Filters.Include
	}
	if repoOpts.Exclude == nil {
		repoOpts.Exclude = cfg.Filters.Exclude
	}

	return &Pipeline{
		Config: cfg,
		Getenv: os.Getenv,
		OpenRepository: func() (git.Repository, error) {
			return git.Open(repoOpts)
		},
		NewClient: func(apiKey string) (llm.Completer, error) {
			return llm.NewClient(llm.Options{
				APIKey:            apiKey,
				BaseURL:           cfg.API.BaseURL,
				Timeout:           cfg.Timeout(),
				RequestsPerSecond: cfg.API.RequestsPerSecond,
			})
		},
		NewTokenizer: func(model string) (tokens.Tokenizer, error) {
			return tokens.ForModel(model)
		},
		Reporter: reporter,
	}
}

// Run executes a full generation. The API credential is checked before
// the repository is opened or any request is made, and the changelog is
// only written after every stage succeeded.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := p.Config
	log := p.reporter()

	apiKey, err := cfg.APIKey(p.getenv())
	if err != nil {
		return nil, err
	}

	spec, err := resolve.ParseVersionSpec(opts.Range)
	if err != nil {
		return nil, err
	}

	rng, err := p.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	log.Status("Previous version is: %s", rng.Old)
	log.Status("Current version is: %s", spec.New)
	total := stats.Total(stats.CalculateAll(rng.Commits))
	log.Status("Total commits: %d (%d file changes, +%d -%d)", len(rng.Commits), total.FileCount, total.LinesAdded, total.LinesDeleted)

	model := cfg.SynthesisModel(opts.Fast)
	synthTok, err := p.tokenizer(model)
	if err != nil {
		return nil, err
	}

	path := opts.ChangelogPath
	if path == "" {
		path = cfg.Changelog.Path
	}
	tail, err := changelog.ReadTail(path, cfg.Changelog.TailLines, cfg.Changelog.TailTokens, synthTok)
	if err != nil {
		if opts.Append || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Warn("changelog %s not found, generating without style context", path)
		tail = ""
	}

	client, err := p.NewClient(apiKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "cannot create API client")
	}

	detector, err := classify.NewDetector(cfg.Categories)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "invalid categories")
	}

	summaries, err := p.summarize(ctx, client, detector, rng.Commits)
	if err != nil {
		return nil, err
	}

	releaseDate := opts.ReleaseDate
	if releaseDate.IsZero() {
		releaseDate = time.Now()
	}

	log.Status("Summarized commits, generating changelog entry using %s.", model)
	synth := &synthesize.Synthesizer{
		Client:      client,
		Model:       model,
		Temperature: cfg.Synthesizer.Temperature,
		Policy:      p.policy(),
	}
	entry, err := synth.Synthesize(ctx, synthesize.Input{
		Summaries:       summaries,
		Tail:            tail,
		Version:         spec.New,
		PreviousVersion: rng.Old,
		ReleaseDate:     releaseDate,
	})
	if err != nil {
		return nil, err
	}

	position := opts.Position
	if position == "" {
		position, err = changelog.ParsePosition(cfg.Changelog.Position)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfiguration, err, "invalid changelog.position")
		}
	}

	result := &Result{
		Range:         rng,
		Summaries:     summaries,
		Entry:         entry,
		Model:         model,
		SummaryModel:  cfg.Models.Summary,
		ChangelogPath: path,
		Position:      position,
		Categories:    detector.Counts(rng.Commits),
		ReleaseDate:   releaseDate,
		Detector:      detector,
	}

	if opts.Append {
		if err := changelog.Insert(path, entry, position); err != nil {
			return nil, err
		}
		result.Appended = true
		log.Status("New changelog entry has been added to %s.", path)
	}
	return result, nil
}

// Resolve opens the repository and resolves spec. It needs no API
// credential.
func (p *Pipeline) Resolve(ctx context.Context, spec resolve.VersionSpec) (*resolve.Range, error) {
	repo, err := p.OpenRepository()
	if err != nil {
		return nil, apperr.Resolution(err, "cannot open repository")
	}

	pattern, err := resolve.CompileTagPattern(p.Config.Tags.Pattern)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "invalid tags.pattern")
	}
	return resolve.NewResolver(repo, pattern).Resolve(ctx, spec)
}

func (p *Pipeline) summarize(ctx context.Context, client llm.Completer, detector *classify.Detector, commits []git.CommitRecord) ([]summarize.Summary, error) {
	cfg := p.Config
	log := p.reporter()

	tok, err := p.tokenizer(cfg.Models.Summary)
	if err != nil {
		return nil, err
	}

	s := &summarize.Summarizer{
		Client:      client,
		Tokenizer:   tok,
		Classifier:  detector,
		Model:       cfg.Models.Summary,
		Temperature: cfg.Summarizer.Temperature,
		MaxTokens:   cfg.Summarizer.MaxTokens,
		Workers:     cfg.Summarizer.Workers,
		Policy:      p.policy(),
		OnProgress:  log.Progress,
	}

	log.Start("Summarizing commits", len(commits))
	summaries, err := s.Summarize(ctx, commits)
	log.Stop(err == nil)
	return summaries, err
}

func (p *Pipeline) policy() retry.Policy {
	policy := p.Config.RetryPolicy()
	log := p.reporter()
	policy.Retryable = llm.IsTransient
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("attempt %d failed (%v), retrying in %s", attempt, err, wait.Round(100*time.Millisecond))
	}
	return policy
}

func (p *Pipeline) tokenizer(model string) (tokens.Tokenizer, error) {
	if p.NewTokenizer == nil {
		return nil, nil
	}
	tok, err := p.NewTokenizer(model)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "cannot load tokenizer for %s", model)
	}
	return tok, nil
}

func (p *Pipeline) getenv() func(string) string {
	if p.Getenv == nil {
		return os.Getenv
	}
	return p.Getenv
}

func (p *Pipeline) reporter() Reporter {
	if p.Reporter == nil {
		return nopReporter{}
	}
	return p.Reporter
}

type nopReporter struct{}

func (nopReporter) Status(string, ...any) {}
func (nopReporter) Warn(string, ...any)   {}
func (nopReporter) Start(string, int)     {}
func (nopReporter) Progress(int, int)     {}
func (nopReporter) Stop(bool)             {}
