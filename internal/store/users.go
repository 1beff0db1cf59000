package store

import (
	"database/sql"
	"fmt"

	"salespilot/internal/logging"
)

// CreateUser inserts a new user with an already-hashed password.
// Returns an error when the username is taken.
func (s *Store) CreateUser(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username == "" {
		return fmt.Errorf("username required")
	}
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("username %q already exists", username)
	}
	logging.Auth("user created: %s", username)
	return nil
}

// LookupUserHash returns the stored password hash for a username, or
// ("", nil) when the user does not exist.
func (s *Store) LookupUserHash(username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return hash, nil
}
