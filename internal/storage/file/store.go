// Package file persists session state as a JSON document on disk, optionally
// sealed with a passphrase-derived key.
package file

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/hongminglow/ledgerdash/internal/storage"
)

// Ensure Store satisfies the storage.StateStore interface at compile time.
var _ storage.StateStore = (*Store)(nil)

// ErrSealed is returned when the file was sealed with a different key, or is
// sealed and no key was configured.
var ErrSealed = errors.New("state file cannot be opened with the configured key")

const nonceSize = 24

// document is the on-disk layout. Exactly one of the plain fields or Sealed
// is populated.
type document struct {
	Token  string          `json:"token,omitempty"`
	User   json.RawMessage `json:"user,omitempty"`
	Sealed []byte          `json:"sealed,omitempty"`
}

// Store is a file-backed StateStore.
type Store struct {
	path string
	key  *[32]byte

	mu sync.Mutex
}

// NewStore returns a store writing to path. A non-empty passphrase seals the
// contents with NaCl secretbox.
func NewStore(path, passphrase string) *Store {
	s := &Store{path: path}
	if passphrase != "" {
		key := sha256.Sum256([]byte(passphrase))
		s.key = &key
	}
	return s
}

// Load reads the persisted state.
func (s *Store) Load(_ context.Context) (storage.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.State{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.State{}, fmt.Errorf("read state file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return storage.State{}, fmt.Errorf("decode state file: %w", err)
	}
	if len(doc.Sealed) > 0 {
		if doc, err = s.open(doc.Sealed); err != nil {
			return storage.State{}, err
		}
	}
	if doc.Token == "" && len(doc.User) == 0 {
		return storage.State{}, storage.ErrNotFound
	}
	return storage.State{Token: doc.Token, User: []byte(doc.User)}, nil
}

// Save writes token and user in one atomic rename.
func (s *Store) Save(_ context.Context, state storage.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The user record may be corrupt; store it as a JSON string then so the
	// document itself stays valid and the caller still sees the bad bytes.
	user := json.RawMessage(state.User)
	if len(user) > 0 && !json.Valid(user) {
		quoted, _ := json.Marshal(string(state.User))
		user = quoted
	}
	doc := document{Token: state.Token, User: user}
	if s.key != nil {
		sealed, err := s.seal(doc)
		if err != nil {
			return err
		}
		doc = document{Sealed: sealed}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return writeAtomic(s.path, payload)
}

// Clear removes the state file. Missing files are not an error.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

func (s *Store) seal(doc document) ([]byte, error) {
	plain, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *Store) open(sealed []byte) (document, error) {
	if s.key == nil || len(sealed) < nonceSize {
		return document{}, ErrSealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, s.key)
	if !ok {
		return document{}, ErrSealed
	}
	var doc document
	if err := json.Unmarshal(plain, &doc); err != nil {
		return document{}, fmt.Errorf("decode sealed state: %w", err)
	}
	return doc, nil
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
