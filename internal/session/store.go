// Package session persists parsed statements per browser session, so
// a page reload does not force re-uploading the statement file.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/lvu/firemerge/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS statements (
	session_id TEXT    NOT NULL,
	account_id INTEGER NOT NULL,
	statement  TEXT    NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, account_id)
);
`

// Store is a SQLite-backed statement store keyed by session id and
// account.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the store at path. WAL mode keeps
// concurrent request handlers from blocking each other.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing session db schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the statement for (sessionID, accountID), replacing any
// previous one.
func (s *Store) Save(ctx context.Context, sessionID string, accountID int64, statement []model.StatementTransaction) error {
	raw, err := json.Marshal(statement)
	if err != nil {
		return fmt.Errorf("encoding statement: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO statements (session_id, account_id, statement, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id, account_id) DO UPDATE
		SET statement = excluded.statement, updated_at = excluded.updated_at`,
		sessionID, accountID, string(raw))
	if err != nil {
		return fmt.Errorf("saving statement: %w", err)
	}
	return nil
}

// Load returns the stored statement, or ok=false when the session has
// none for this account.
func (s *Store) Load(ctx context.Context, sessionID string, accountID int64) ([]model.StatementTransaction, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT statement FROM statements WHERE session_id = ? AND account_id = ?`,
		sessionID, accountID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading statement: %w", err)
	}
	var statement []model.StatementTransaction
	if err := json.Unmarshal([]byte(raw), &statement); err != nil {
		return nil, false, fmt.Errorf("decoding statement: %w", err)
	}
	return statement, true, nil
}

// Delete drops the stored statement for (sessionID, accountID).
func (s *Store) Delete(ctx context.Context, sessionID string, accountID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM statements WHERE session_id = ? AND account_id = ?`,
		sessionID, accountID)
	if err != nil {
		return fmt.Errorf("deleting statement: %w", err)
	}
	return nil
}

// Prune removes statements not touched for the given duration.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM statements WHERE updated_at < ?`,
		time.Now().Add(-olderThan).UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning statements: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning statements: %w", err)
	}
	return n, nil
}
