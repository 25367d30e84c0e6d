package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates no persisted state exists.
var ErrNotFound = errors.New("state not found")

// Well-known keys of the persisted session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// State is the persisted session. User holds the JSON-encoded user record
// and is kept raw so a corrupt record can be detected by the caller.
type State struct {
	Token string
	User  []byte
}

// StateStore persists the session. Token and user are always written and
// cleared together.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
	Clear(ctx context.Context) error
}
