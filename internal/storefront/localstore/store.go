// Package localstore is the durable local state of the storefront client:
// the token pair and the cart survive restarts in a small SQLite database,
// stored as opaque JSON snapshots keyed by name.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Well-known snapshot keys.
const (
	KeyTokens = "tokens"
	KeyCart   = "cart"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and applies
// any pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the snapshot stored under key, or ok=false when absent.
func (s *Store) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE key = ?`, key)

	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous snapshot.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot under key. Absence is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}
