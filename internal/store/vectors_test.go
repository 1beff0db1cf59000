package store

import (
	"testing"
)

func TestVectorUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)

	entry := VectorEntry{
		ID:        "hash-1",
		Customer:  "Acme",
		Content:   "feature f1 committed with high priority",
		Embedding: []float32{0.1, 0.2, 0.3},
		Metadata:  map[string]interface{}{"customer_name": "Acme", "type": "contract"},
	}
	if err := s.UpsertVector(entry); err != nil {
		t.Fatalf("UpsertVector: %v", err)
	}
	// Same id again must replace, not duplicate.
	if err := s.UpsertVector(entry); err != nil {
		t.Fatalf("UpsertVector (repeat): %v", err)
	}

	count, err := s.CountVectors("Acme")
	if err != nil {
		t.Fatalf("CountVectors: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 vector, got %d", count)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	s := newTestStore(t)

	err := s.UpsertVector(VectorEntry{
		ID:        "hash-1",
		Customer:  "Acme",
		Content:   "chunk one",
		Embedding: []float32{1, 0},
		Metadata:  map[string]interface{}{"type": "contract"},
	})
	if err != nil {
		t.Fatalf("UpsertVector: %v", err)
	}
	// Chunk without an embedding (engine not configured).
	err = s.UpsertVector(VectorEntry{ID: "hash-2", Customer: "Acme", Content: "chunk two"})
	if err != nil {
		t.Fatalf("UpsertVector (no embedding): %v", err)
	}
	err = s.UpsertVector(VectorEntry{ID: "hash-3", Customer: "Globex", Content: "other customer"})
	if err != nil {
		t.Fatalf("UpsertVector (other customer): %v", err)
	}

	entries, err := s.LoadVectors("Acme")
	if err != nil {
		t.Fatalf("LoadVectors: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for Acme, got %d", len(entries))
	}

	byID := map[string]VectorEntry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	if got := byID["hash-1"]; len(got.Embedding) != 2 || got.Embedding[0] != 1 {
		t.Errorf("embedding not restored: %+v", got.Embedding)
	}
	if got := byID["hash-1"]; got.Metadata["type"] != "contract" {
		t.Errorf("metadata not restored: %+v", got.Metadata)
	}
	if got := byID["hash-2"]; got.Embedding != nil {
		t.Errorf("expected nil embedding, got %+v", got.Embedding)
	}

	all, err := s.LoadVectors("")
	if err != nil {
		t.Fatalf("LoadVectors (all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries total, got %d", len(all))
	}
}
