// Package store provides SQLite persistence for salespilot: customer
// contract and release tables, user accounts, upload bookkeeping, chat
// sessions, deck records, and the vector knowledge base.
//
// One Store guards a single database file. Contract and release rows are
// owned by the surrounding collaborators; the reconciliation core only
// ever reads snapshots loaded from here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"salespilot/internal/logging"
)

// Store wraps the SQLite database with a coarse RW lock. SQLite handles
// file locking itself; the mutex keeps our read-modify-write sequences
// atomic within the process.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New initializes the SQLite database at the given path, creating the
// schema on first use. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.New")
	defer timer.Stop()

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("failed to enable foreign_keys: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("store initialized at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			customer_name TEXT PRIMARY KEY
		)`,

		// One active contract per customer; replace semantics enforced
		// by ReplaceContract.
		`CREATE TABLE IF NOT EXISTS contracts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT NOT NULL,
			feature_id TEXT NOT NULL,
			feature_name TEXT,
			description TEXT,
			priority TEXT,
			FOREIGN KEY (customer_name) REFERENCES customers (customer_name)
		)`,

		// Release history accumulates without deduplication.
		`CREATE TABLE IF NOT EXISTS releases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT NOT NULL,
			feature_id TEXT,
			feature_name TEXT,
			status TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Upload bookkeeping, keyed by file content hash for dedupe.
		`CREATE TABLE IF NOT EXISTS uploads (
			file_hash TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			customer_name TEXT,
			row_count INTEGER DEFAULT 0,
			uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			title TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES chat_sessions (id)
		)`,

		// Vector knowledge base. Embeddings are JSON float arrays;
		// similarity is computed in Go at query time.
		`CREATE TABLE IF NOT EXISTS vectors (
			id TEXT PRIMARY KEY,
			customer_name TEXT,
			content TEXT NOT NULL,
			embedding TEXT,
			metadata TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS decks (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			path TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_contracts_customer ON contracts(customer_name)`,
		`CREATE INDEX IF NOT EXISTS idx_releases_customer ON releases(customer_name)`,
		`CREATE INDEX IF NOT EXISTS idx_vectors_customer ON vectors(customer_name)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON chat_messages(session_id)`,
	}

	for _, schema := range schemas {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats returns per-table row counts.
func (s *Store) Stats() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := []string{
		"customers", "contracts", "releases", "users",
		"uploads", "chat_sessions", "chat_messages", "vectors", "decks",
	}
	stats := make(map[string]int, len(tables))
	for _, table := range tables {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}
