// Package memory persists the agent's long-term memory document.
//
// Memory is a single free-form text document the model itself curates:
// it reads the current content at the start of every turn via the
// system prompt and rewrites the whole document through a tool when it
// decides something is worth keeping. The store is deliberately dumb,
// one row in SQLite so the document survives restarts.
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store persists the memory document in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a memory store, running migrations on first use.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate memory: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memory (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			content    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// Get returns the current memory document. An empty string means no
// memory has been written yet.
func (s *Store) Get() (string, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM memory WHERE id = 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// Set replaces the memory document wholesale. The model sends the
// complete new content every time, so there is no merge to do.
func (s *Store) Set(content string) error {
	_, err := s.db.Exec(`
		INSERT INTO memory (id, content, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at
	`, content, time.Now().UTC())
	return err
}

// UpdatedAt returns when the memory document was last rewritten, or the
// zero time if it has never been written.
func (s *Store) UpdatedAt() (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM memory WHERE id = 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}
