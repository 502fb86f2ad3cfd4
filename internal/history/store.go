// Package history persists past benchmark invocations in a local
// SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store interface defines the methods for persistent storage
type Store interface {
	Close() error
	SaveInvocation(inv Invocation) error
	ListInvocations(limit int) ([]Invocation, error)
	GetInvocation(id int64) (*Invocation, error)
}

// Invocation is one recorded benchmark invocation.
type Invocation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Config    string    `json:"config"`
	Output    string    `json:"output"`
	Runs      int       `json:"runs"`
	Succeeded int       `json:"succeeded"`
	Report    string    `json:"report,omitempty"`
}

// DefaultPath is the history database location used when none is
// configured: ~/.revbench/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".revbench", "history.db"), nil
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS invocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		config TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		runs INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		report TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveInvocation records a finished invocation
func (s *SQLiteStore) SaveInvocation(inv Invocation) error {
	query := `INSERT INTO invocations (created_at, config, output, runs, succeeded, report)
	          VALUES (?, ?, ?, ?, ?, ?)`
	created := inv.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(query, created, inv.Config, inv.Output, inv.Runs, inv.Succeeded, inv.Report)
	return err
}

// ListInvocations retrieves the most recent invocations
func (s *SQLiteStore) ListInvocations(limit int) ([]Invocation, error) {
	query := `SELECT id, created_at, config, output, runs, succeeded, report
	          FROM invocations ORDER BY id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(&inv.ID, &inv.CreatedAt, &inv.Config, &inv.Output,
			&inv.Runs, &inv.Succeeded, &inv.Report); err != nil {
			return nil, err
		}
		results = append(results, inv)
	}
	return results, rows.Err()
}

// GetInvocation retrieves a single invocation by id
func (s *SQLiteStore) GetInvocation(id int64) (*Invocation, error) {
	query := `SELECT id, created_at, config, output, runs, succeeded, report
	          FROM invocations WHERE id = ?`
	var inv Invocation
	err := s.db.QueryRow(query, id).Scan(&inv.ID, &inv.CreatedAt, &inv.Config,
		&inv.Output, &inv.Runs, &inv.Succeeded, &inv.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invocation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

var _ Store = (*SQLiteStore)(nil)
