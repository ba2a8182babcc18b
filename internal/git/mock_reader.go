package git

import (
	"context"
	"fmt"
	"sync"
)

// MockRepository is a test double for Repository.
// It allows tests to provide predefined refs, tags and commits without
// needing a real Git repository.
type MockRepository struct {
	Refs    map[string]string // revision -> commit hash
	Tags    []TagInfo
	Commits []CommitRecord
	Error   error

	mu     sync.Mutex
	ranges [][2]string
	calls  int
}

// NewMockRepository creates a MockRepository with the given data.
func NewMockRepository(refs map[string]string, tags []TagInfo, commits []CommitRecord) *MockRepository {
	return &MockRepository{Refs: refs, Tags: tags, Commits: commits}
}

// ResolveCommit looks ref up in Refs. A ref that already is one of the
// hashes in Refs resolves to itself, as it does in a real repository.
func (m *MockRepository) ResolveCommit(_ context.Context, ref string) (string, error) {
	m.record()
	if m.Error != nil {
		return "", m.Error
	}
	if sha, ok := m.Refs[ref]; ok {
		return sha, nil
	}
	for _, sha := range m.Refs {
		if sha == ref {
			return sha, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRef, ref)
}

// TagsReachableFrom returns the predefined tags.
func (m *MockRepository) TagsReachableFrom(ctx context.Context, ref string) ([]TagInfo, error) {
	if _, err := m.ResolveCommit(ctx, ref); err != nil {
		return nil, err
	}
	return m.Tags, nil
}

// CommitsBetween records the range and returns the predefined commits.
func (m *MockRepository) CommitsBetween(_ context.Context, from, to string) ([]CommitRecord, error) {
	m.record()
	if m.Error != nil {
		return nil, m.Error
	}
	m.mu.Lock()
	m.ranges = append(m.ranges, [2]string{from, to})
	m.mu.Unlock()
	return m.Commits, nil
}

// Ranges returns the from/to pairs passed to CommitsBetween.
func (m *MockRepository) Ranges() [][2]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][2]string, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// Calls returns the number of repository queries made.
func (m *MockRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockRepository) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}
