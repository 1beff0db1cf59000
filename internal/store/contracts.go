package store

import (
	"fmt"

	"salespilot/internal/logging"
	"salespilot/internal/reconcile"
)

// =============================================================================
// CONTRACT AND RELEASE TABLES
// =============================================================================

// StoreContract inserts one contract feature row, creating the customer
// record if needed.
func (s *Store) StoreContract(row reconcile.ContractFeature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.CustomerName == "" {
		return fmt.Errorf("contract row missing customer_name")
	}
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO customers (customer_name) VALUES (?)", row.CustomerName,
	); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO contracts (customer_name, feature_id, feature_name, description, priority)
		 VALUES (?, ?, ?, ?, ?)`,
		row.CustomerName, row.FeatureID, row.FeatureName, row.Description, row.Priority,
	); err != nil {
		return fmt.Errorf("failed to insert contract row: %w", err)
	}
	return nil
}

// ReplaceContract atomically replaces the customer's entire contract
// dataset. A customer holds at most one active contract, so a re-upload
// supersedes all previous rows.
func (s *Store) ReplaceContract(customer string, rows []reconcile.ContractFeature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryStore, "ReplaceContract")
	defer timer.Stop()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO customers (customer_name) VALUES (?)", customer); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM contracts WHERE customer_name = ?", customer); err != nil {
		return fmt.Errorf("failed to clear previous contract: %w", err)
	}
	for _, row := range rows {
		if _, err := tx.Exec(
			`INSERT INTO contracts (customer_name, feature_id, feature_name, description, priority)
			 VALUES (?, ?, ?, ?, ?)`,
			customer, row.FeatureID, row.FeatureName, row.Description, row.Priority,
		); err != nil {
			return fmt.Errorf("failed to insert contract row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contract replace: %w", err)
	}
	logging.Store("contract replaced for %s (%d rows)", customer, len(rows))
	return nil
}

// StoreRelease appends one release event. Release history accumulates;
// nothing is deduplicated here.
func (s *Store) StoreRelease(row reconcile.ReleaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.CustomerName == "" {
		return fmt.Errorf("release row missing customer_name")
	}
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO customers (customer_name) VALUES (?)", row.CustomerName,
	); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO releases (customer_name, feature_id, feature_name, status)
		 VALUES (?, ?, ?, ?)`,
		row.CustomerName, row.FeatureID, row.FeatureName, row.Status,
	); err != nil {
		return fmt.Errorf("failed to insert release row: %w", err)
	}
	return nil
}

// StoreReleases appends a batch of release events in one transaction.
func (s *Store) StoreReleases(customer string, rows []reconcile.ReleaseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO customers (customer_name) VALUES (?)", customer); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	for _, row := range rows {
		if _, err := tx.Exec(
			`INSERT INTO releases (customer_name, feature_id, feature_name, status)
			 VALUES (?, ?, ?, ?)`,
			customer, row.FeatureID, row.FeatureName, row.Status,
		); err != nil {
			return fmt.Errorf("failed to insert release row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit release batch: %w", err)
	}
	logging.Store("release batch stored for %s (%d rows)", customer, len(rows))
	return nil
}

// LoadContracts returns the customer's contract rows in insertion order.
// An unknown customer yields an empty slice.
func (s *Store) LoadContracts(customer string) ([]reconcile.ContractFeature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT feature_id, feature_name, description, priority
		 FROM contracts WHERE customer_name = ? ORDER BY id`,
		customer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	out := []reconcile.ContractFeature{}
	for rows.Next() {
		c := reconcile.ContractFeature{CustomerName: customer}
		if err := rows.Scan(&c.FeatureID, &c.FeatureName, &c.Description, &c.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan contract row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadReleases returns the customer's full release history in insertion
// order. An unknown customer yields an empty slice.
func (s *Store) LoadReleases(customer string) ([]reconcile.ReleaseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT feature_id, feature_name, status
		 FROM releases WHERE customer_name = ? ORDER BY id`,
		customer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	out := []reconcile.ReleaseEvent{}
	for rows.Next() {
		r := reconcile.ReleaseEvent{CustomerName: customer}
		if err := rows.Scan(&r.FeatureID, &r.FeatureName, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan release row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListCustomers returns all known customer names.
func (s *Store) ListCustomers() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT customer_name FROM customers ORDER BY customer_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ResetCustomer removes every dataset belonging to the customer:
// contract, releases, uploads, vectors, chat sessions, and deck records.
func (s *Store) ResetCustomer(customer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		"DELETE FROM chat_messages WHERE session_id IN (SELECT id FROM chat_sessions WHERE customer_name = ?)",
		"DELETE FROM chat_sessions WHERE customer_name = ?",
		"DELETE FROM contracts WHERE customer_name = ?",
		"DELETE FROM releases WHERE customer_name = ?",
		"DELETE FROM uploads WHERE customer_name = ?",
		"DELETE FROM vectors WHERE customer_name = ?",
		"DELETE FROM decks WHERE customer_name = ?",
		"DELETE FROM customers WHERE customer_name = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, customer); err != nil {
			return fmt.Errorf("failed to reset customer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	logging.Store("customer %s reset", customer)
	return nil
}
