// Package textutil holds the small text helpers shared by ingestion and
// retrieval.
package textutil

import "strings"

// DefaultChunkSize is the substring length used for vector ingestion.
const DefaultChunkSize = 500

// Normalize lower-cases and trims free text for comparison and storage.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Chunk splits text into fixed-size substrings. A non-positive size
// falls back to DefaultChunkSize. Empty input yields no chunks.
func Chunk(s string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if s == "" {
		return nil
	}
	chunks := make([]string, 0, len(s)/size+1)
	for start := 0; start < len(s); start += size {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[start:end])
	}
	return chunks
}
