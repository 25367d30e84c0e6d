// Package memory keeps session state in process memory. It backs tests and
// the one-shot terminal commands that opt out of persistence.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/hongminglow/ledgerdash/internal/storage"
)

var _ storage.StateStore = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	state *storage.State
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load returns the saved state or storage.ErrNotFound.
func (s *Store) Load(_ context.Context) (storage.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return storage.State{}, storage.ErrNotFound
	}
	return storage.State{Token: s.state.Token, User: slices.Clone(s.state.User)}, nil
}

// Save replaces the saved state.
func (s *Store) Save(_ context.Context, state storage.State) error {
	s.mu.Lock()
	s.state = &storage.State{Token: state.Token, User: slices.Clone(state.User)}
	s.mu.Unlock()
	return nil
}

// Clear drops the saved state.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
	return nil
}
