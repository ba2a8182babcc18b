package llm

import (
	"context"
	"sync"
)

// MockCompleter is a test double for Completer.
// It records every request and answers through Fn.
type MockCompleter struct {
	Fn func(ctx context.Context, req Request) (string, error)

	mu       sync.Mutex
	requests []Request
}

// NewMockCompleter creates a MockCompleter answering with fn.
func NewMockCompleter(fn func(ctx context.Context, req Request) (string, error)) *MockCompleter {
	return &MockCompleter{Fn: fn}
}

// Complete records req and delegates to Fn.
func (m *MockCompleter) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Fn == nil {
		return "", ErrEmptyResponse
	}
	return m.Fn(ctx, req)
}

// Calls returns how many times Complete was invoked.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests.
func (m *MockCompleter) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Compile-time interface conformance check.
var _ Completer = (*MockCompleter)(nil)
