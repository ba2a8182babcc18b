// Package apperr provides the categorized errors that abort a logedit run.
// Every stage reports failures as an *Error so the CLI can pick the exit
// status and message without inspecting stage internals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the stage or concern that failed.
type Kind int

const (
	// KindUnknown is reported for errors that are not an *Error.
	KindUnknown Kind = iota
	// KindConfiguration covers missing credentials and invalid configuration.
	KindConfiguration
	// KindResolution covers bad or absent version ranges and repository access.
	KindResolution
	// KindSummarization covers per-commit summary calls that could not complete.
	KindSummarization
	// KindSynthesis covers the changelog synthesis call.
	KindSynthesis
	// KindIO covers reading and writing the changelog file.
	KindIO
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindResolution:
		return "resolution error"
	case KindSummarization:
		return "summarization error"
	case KindSynthesis:
		return "synthesis error"
	case KindIO:
		return "io error"
	default:
		return "error"
	}
}

// Error is a categorized failure with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	// Commit is set for summarization failures.
	Commit string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Commit != "" {
		msg = fmt.Sprintf("%s (commit %s)", msg, shortSHA(e.Commit))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind without a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *Error {
	return New(KindConfiguration, format, args...)
}

// Resolution wraps err as a resolution error. err may be nil.
func Resolution(err error, format string, args ...any) *Error {
	return Wrap(KindResolution, err, format, args...)
}

// Summarization reports that the summary of commit could not be produced.
func Summarization(commit string, err error) *Error {
	return &Error{
		Kind:    KindSummarization,
		Message: "failed to summarize commit",
		Commit:  commit,
		Err:     err,
	}
}

// Synthesis wraps err as a synthesis error. err may be nil.
func Synthesis(err error, format string, args ...any) *Error {
	return Wrap(KindSynthesis, err, format, args...)
}

// IO wraps err as an I/O error.
func IO(err error, format string, args ...any) *Error {
	return Wrap(KindIO, err, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfiguration:
		return 2
	case KindResolution:
		return 3
	case KindSummarization:
		return 4
	case KindSynthesis:
		return 5
	case KindIO:
		return 6
	default:
		return 1
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
