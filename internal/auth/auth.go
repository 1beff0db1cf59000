// Package auth implements local username/password accounts with a
// persisted login session for the CLI.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"salespilot/internal/logging"
	"salespilot/internal/store"
)

// ErrInvalidCredentials is returned when a login does not match a
// stored account.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

// sessionFile holds the logged-in username under the data directory.
const sessionFile = ".session"

// Manager handles signup, login, and the current session.
type Manager struct {
	store   *store.Store
	dataDir string
}

// NewManager builds a manager persisting sessions under dataDir.
func NewManager(s *store.Store, dataDir string) *Manager {
	return &Manager{store: s, dataDir: dataDir}
}

// HashPassword returns the sha256 hex digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Signup creates an account and logs it in.
func (m *Manager) Signup(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 4 {
		return fmt.Errorf("password must be at least 4 characters")
	}
	if err := m.store.CreateUser(username, HashPassword(password)); err != nil {
		return err
	}
	logging.Auth("account created: %s", username)
	return m.writeSession(username)
}

// Login verifies credentials and persists the session.
func (m *Manager) Login(username, password string) error {
	username = strings.TrimSpace(username)
	stored, err := m.store.LookupUserHash(username)
	if err != nil {
		return err
	}
	if stored == "" || stored != HashPassword(password) {
		return ErrInvalidCredentials
	}
	logging.Auth("login: %s", username)
	return m.writeSession(username)
}

// Logout clears the persisted session. Logging out when nobody is
// logged in is not an error.
func (m *Manager) Logout() error {
	err := os.Remove(m.sessionPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CurrentUser returns the logged-in username, or "" when logged out.
func (m *Manager) CurrentUser() string {
	data, err := os.ReadFile(m.sessionPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (m *Manager) sessionPath() string {
	return filepath.Join(m.dataDir, sessionFile)
}

func (m *Manager) writeSession(username string) error {
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.sessionPath(), []byte(username+"\n"), 0o600)
}
