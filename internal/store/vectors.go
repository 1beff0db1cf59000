package store

import (
	"encoding/json"
	"fmt"
	"time"

	"salespilot/internal/logging"
)

// =============================================================================
// VECTOR KNOWLEDGE BASE
// =============================================================================

// VectorEntry is one stored chunk of the sales knowledge base. Embedding
// is nil for chunks stored without an embedding engine; those still
// participate in keyword recall.
type VectorEntry struct {
	ID        string
	Customer  string
	Content   string
	Embedding []float32
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// UpsertVector stores one chunk, replacing any previous entry with the
// same id. The id is content-derived upstream, so re-ingesting the same
// text is idempotent.
func (s *Store) UpsertVector(entry VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embeddingJSON interface{}
	if entry.Embedding != nil {
		data, err := json.Marshal(entry.Embedding)
		if err != nil {
			return fmt.Errorf("failed to serialize embedding: %w", err)
		}
		embeddingJSON = string(data)
	}

	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO vectors (id, customer_name, content, embedding, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Customer, entry.Content, embeddingJSON, string(metaJSON),
	); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	logging.RAGDebug("vector upserted: id=%s customer=%s len=%d", entry.ID, entry.Customer, len(entry.Content))
	return nil
}

// LoadVectors returns every stored chunk, optionally filtered by
// customer. The retrieval engine scores them; this layer only fetches.
func (s *Store) LoadVectors(customer string) ([]VectorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, customer_name, content, embedding, metadata, created_at FROM vectors"
	args := []interface{}{}
	if customer != "" {
		query += " WHERE customer_name = ?"
		args = append(args, customer)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var out []VectorEntry
	for rows.Next() {
		var entry VectorEntry
		var embeddingJSON, metaJSON *string
		if err := rows.Scan(&entry.ID, &entry.Customer, &entry.Content, &embeddingJSON, &metaJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		if embeddingJSON != nil {
			if err := json.Unmarshal([]byte(*embeddingJSON), &entry.Embedding); err != nil {
				// A corrupt embedding degrades that chunk to keyword
				// recall instead of failing the whole query.
				logging.Get(logging.CategoryRAG).Warn("corrupt embedding for %s: %v", entry.ID, err)
				entry.Embedding = nil
			}
		}
		if metaJSON != nil && *metaJSON != "" {
			if err := json.Unmarshal([]byte(*metaJSON), &entry.Metadata); err != nil {
				entry.Metadata = nil
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// CountVectors returns the number of stored chunks for a customer, or
// all chunks when customer is empty.
func (s *Store) CountVectors(customer string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	var err error
	if customer == "" {
		err = s.db.QueryRow("SELECT COUNT(*) FROM vectors").Scan(&count)
	} else {
		err = s.db.QueryRow("SELECT COUNT(*) FROM vectors WHERE customer_name = ?", customer).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return count, nil
}
