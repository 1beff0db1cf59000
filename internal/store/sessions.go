package store

import (
	"database/sql"
	"fmt"
	"time"

	"salespilot/internal/logging"
)

// =============================================================================
// CHAT SESSION PERSISTENCE
// =============================================================================

// ChatSession is one persisted conversation with the assistant.
type ChatSession struct {
	ID           string
	CustomerName string
	Title        string
	CreatedAt    time.Time
}

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	SessionID string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

// CreateChatSession persists a new chat session.
func (s *Store) CreateChatSession(id, customer, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"INSERT INTO chat_sessions (id, customer_name, title) VALUES (?, ?, ?)",
		id, customer, title,
	); err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	logging.Chat("session %s created for %s", id, customer)
	return nil
}

// AppendChatMessage records one turn of a session.
func (s *Store) AppendChatMessage(sessionID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)",
		sessionID, role, content,
	); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// LoadChatMessages returns a session's messages in order.
func (s *Store) LoadChatMessages(sessionID string) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT session_id, role, content, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListChatSessions returns a customer's sessions, newest first.
func (s *Store) ListChatSessions(customer string) ([]ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, customer_name, title, created_at
		 FROM chat_sessions WHERE customer_name = ? ORDER BY created_at DESC`,
		customer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	var out []ChatSession
	for rows.Next() {
		var cs ChatSession
		if err := rows.Scan(&cs.ID, &cs.CustomerName, &cs.Title, &cs.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// RecordDeck stores the artifact record for a generated deck.
func (s *Store) RecordDeck(id, customer, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"INSERT INTO decks (id, customer_name, path) VALUES (?, ?, ?)",
		id, customer, path,
	); err != nil {
		return fmt.Errorf("failed to record deck: %w", err)
	}
	logging.Deck("deck %s recorded for %s at %s", id, customer, path)
	return nil
}

// LatestDeckPath returns the newest deck artifact path for a customer,
// or "" when none exists.
func (s *Store) LatestDeckPath(customer string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var path string
	err := s.db.QueryRow(
		"SELECT path FROM decks WHERE customer_name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1",
		customer,
	).Scan(&path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query decks: %w", err)
	}
	return path, nil
}
