package store

import (
	"fmt"
	"time"
)

// UploadRecord tracks one ingested file, keyed by content hash.
type UploadRecord struct {
	FileHash     string
	FileName     string
	Kind         string // "contract" or "release"
	CustomerName string
	RowCount     int
	UploadedAt   time.Time
}

// RecordUpload stores the bookkeeping row for an ingested file.
func (s *Store) RecordUpload(rec UploadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploads (file_hash, file_name, kind, customer_name, row_count)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.FileHash, rec.FileName, rec.Kind, rec.CustomerName, rec.RowCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// HasUpload reports whether a file with this content hash was already
// ingested. Used to skip duplicate uploads.
func (s *Store) HasUpload(fileHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM uploads WHERE file_hash = ?", fileHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check upload: %w", err)
	}
	return count > 0, nil
}

// ListUploads returns upload records for a customer, newest first.
func (s *Store) ListUploads(customer string) ([]UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT file_hash, file_name, kind, customer_name, row_count, uploaded_at
		 FROM uploads WHERE customer_name = ? ORDER BY uploaded_at DESC`,
		customer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var out []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		if err := rows.Scan(&rec.FileHash, &rec.FileName, &rec.Kind, &rec.CustomerName, &rec.RowCount, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
