// Package rag implements the retrieval side of the dashboard: text
// chunks from contract and release uploads are embedded into the vector
// store and recalled by semantic similarity to ground chat answers and
// deck prose. Without an embedding engine it degrades to keyword
// overlap recall, which keeps the pipeline usable offline.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"salespilot/internal/embedding"
	"salespilot/internal/logging"
	"salespilot/internal/store"
	"salespilot/internal/textutil"
)

// Document is one retrieved chunk with its metadata.
type Document struct {
	Text     string
	Metadata map[string]interface{}
	Score    float64
}

// Engine ties the vector store to an embedding backend. A nil embedder
// is valid and selects keyword recall.
type Engine struct {
	store    *store.Store
	embedder embedding.Engine
}

// NewEngine creates a retrieval engine.
func NewEngine(s *store.Store, embedder embedding.Engine) *Engine {
	return &Engine{store: s, embedder: embedder}
}

// DocumentID derives the stable chunk id from its text, so re-ingesting
// identical content replaces rather than duplicates.
func DocumentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Ingest stores one chunk with metadata. The customer name is pulled
// from metadata["customer_name"] for filtered retrieval.
func (e *Engine) Ingest(ctx context.Context, text string, metadata map[string]interface{}) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	customer, _ := metadata["customer_name"].(string)
	entry := store.VectorEntry{
		ID:       DocumentID(text),
		Customer: customer,
		Content:  text,
		Metadata: metadata,
	}

	if e.embedder != nil {
		vec, err := e.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk: %w", err)
		}
		entry.Embedding = vec
	}

	return e.store.UpsertVector(entry)
}

// IngestBatch chunks and stores a batch of texts concurrently. Chunks
// are embedded in parallel but each upsert is independent, so a partial
// failure leaves previously stored chunks intact.
func (e *Engine) IngestBatch(ctx context.Context, texts []string, metadata map[string]interface{}) error {
	timer := logging.StartTimer(logging.CategoryRAG, "IngestBatch")
	defer timer.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, text := range texts {
		for _, chunk := range textutil.Chunk(text, textutil.DefaultChunkSize) {
			chunk := chunk
			g.Go(func() error {
				return e.Ingest(ctx, chunk, metadata)
			})
		}
	}
	return g.Wait()
}

// Query returns the k most relevant chunks for the query text,
// restricted to one customer when customerFilter is non-empty.
func (e *Engine) Query(ctx context.Context, query, customerFilter string, k int) ([]Document, error) {
	if k <= 0 {
		k = 10
	}

	entries, err := e.store.LoadVectors(customerFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	if len(entries) == 0 {
		return []Document{}, nil
	}

	if e.embedder == nil {
		return keywordRecall(query, entries, k), nil
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.Embedding == nil {
			continue
		}
		score, err := embedding.CosineSimilarity(queryVec, entry.Embedding)
		if err != nil {
			continue
		}
		docs = append(docs, Document{Text: entry.Content, Metadata: entry.Metadata, Score: score})
	}
	if len(docs) == 0 {
		// Stored before an engine was configured; fall back.
		return keywordRecall(query, entries, k), nil
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if len(docs) > k {
		docs = docs[:k]
	}
	logging.RAGDebug("query returned %d docs (semantic)", len(docs))
	return docs, nil
}

// keywordRecall scores chunks by normalized term overlap with the query.
func keywordRecall(query string, entries []store.VectorEntry, k int) []Document {
	terms := strings.Fields(textutil.Normalize(query))
	if len(terms) == 0 {
		return []Document{}
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		content := textutil.Normalize(entry.Content)
		hits := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		docs = append(docs, Document{
			Text:     entry.Content,
			Metadata: entry.Metadata,
			Score:    float64(hits) / float64(len(terms)),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs
}
