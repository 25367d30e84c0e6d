package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/ledgerdash/internal/storage"
)

// Ensure Store satisfies the storage.StateStore interface at compile time.
var _ storage.StateStore = (*Store)(nil)

// Store keeps session state in Postgres so several front ends on different
// hosts can share one login. Rows are scoped by profile.
type Store struct {
	pool    *pgxpool.Pool
	profile string
}

// NewStateStore connects, runs migrations and returns a store for profile.
func NewStateStore(ctx context.Context, databaseURL, profile string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if profile == "" {
		profile = "default"
	}
	s := &Store{pool: pool, profile: profile}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_state (
			profile TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (profile, key)
		);`,
		`CREATE INDEX IF NOT EXISTS session_state_updated_idx ON session_state (updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Load returns the token and user rows for the profile.
func (s *Store) Load(ctx context.Context) (storage.State, error) {
	const query = `SELECT key, value FROM session_state WHERE profile = $1 AND key = ANY($2);`
	rows, err := s.pool.Query(ctx, query, s.profile, []string{storage.KeyToken, storage.KeyUser})
	if err != nil {
		return storage.State{}, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	var state storage.State
	found := false
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return storage.State{}, fmt.Errorf("scan state: %w", err)
		}
		found = true
		switch key {
		case storage.KeyToken:
			state.Token = value
		case storage.KeyUser:
			state.User = []byte(value)
		}
	}
	if err := rows.Err(); err != nil {
		return storage.State{}, fmt.Errorf("load state: %w", err)
	}
	if !found {
		return storage.State{}, storage.ErrNotFound
	}
	return state, nil
}

// Save upserts both keys in one transaction.
func (s *Store) Save(ctx context.Context, state storage.State) error {
	const upsert = `
		INSERT INTO session_state (profile, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (profile, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
	`
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(upsert, s.profile, storage.KeyToken, state.Token)
		batch.Queue(upsert, s.profile, storage.KeyUser, string(state.User))
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		return nil
	})
}

// Clear deletes both keys.
func (s *Store) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_state WHERE profile = $1;`
	if _, err := s.pool.Exec(ctx, query, s.profile); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}
