// Package sqlite persists session snapshots: timestamped copies of the
// wizard state written on an autosave interval, so a crashed or closed
// session can be restored on the next start.
//
// It expects an *sql.DB using a SQLite driver (for example
// "modernc.org/sqlite"); the caller imports the driver:
//
//	import _ "modernc.org/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
)

// SessionStore reads and writes session snapshots in a SQLite database.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore initializes the schema and returns a store.
func NewSessionStore(db *sql.DB) (*SessionStore, error) {
	s := &SessionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init session schema: %w", err)
	}
	return s, nil
}

func (s *SessionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at TEXT NOT NULL,
			workflow BLOB NOT NULL
		);`,
	)
	return err
}

// Save writes a snapshot. The caller prunes separately; autosave ticks
// call both.
func (s *SessionStore) Save(ctx context.Context, state domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (saved_at, workflow) VALUES (?, ?)`,
		domain.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		data,
	)
	if err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot. The second return is false
// when no session has ever been saved.
func (s *SessionStore) Latest(ctx context.Context) (domain.State, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT workflow FROM sessions ORDER BY id DESC LIMIT 1`,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, fmt.Errorf("load session snapshot: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.State{}, false, fmt.Errorf("decode session snapshot: %w", err)
	}
	return state, true, nil
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (s *SessionStore) Prune(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	return nil
}
