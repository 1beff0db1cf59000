package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salespilot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewEngineNoneProvider(t *testing.T) {
	engine, err := NewEngine(config.EmbeddingConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, engine)

	engine, err = NewEngine(config.EmbeddingConfig{})
	require.NoError(t, err)
	assert.Nil(t, engine)
}

func TestNewEngineOllama(t *testing.T) {
	engine, err := NewEngine(config.EmbeddingConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama:embeddinggemma", engine.Name())
	assert.Equal(t, 768, engine.Dimensions())
}

func TestNewEngineGenAIRequiresKey(t *testing.T) {
	_, err := NewEngine(config.EmbeddingConfig{Provider: "genai"})
	assert.Error(t, err)
}

func TestOllamaEmbedRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embeddinggemma", req.Model)
		assert.Equal(t, "fraud detection", req.Prompt)

		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	// Trailing slash on the endpoint is tolerated.
	engine, err := NewOllamaEngine(config.EmbeddingConfig{OllamaEndpoint: server.URL + "/"})
	require.NoError(t, err)

	vec, err := engine.Embed(context.Background(), "fraud detection")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	batch, err := engine.EmbedBatch(context.Background(), []string{"fraud detection", "fraud detection"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
}

func TestOllamaEmbedErrors(t *testing.T) {
	t.Run("server error surfaces status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		engine, err := NewOllamaEngine(config.EmbeddingConfig{OllamaEndpoint: server.URL})
		require.NoError(t, err)

		_, err = engine.Embed(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("empty embedding rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{}})
		}))
		defer server.Close()

		engine, err := NewOllamaEngine(config.EmbeddingConfig{OllamaEndpoint: server.URL})
		require.NoError(t, err)

		_, err = engine.Embed(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty embedding")
	})
}

func TestGenAIEmbedConfig(t *testing.T) {
	// The SDK takes the task type as a plain string on EmbedContentConfig.
	cfg := &genai.EmbedContentConfig{TaskType: embedTaskType}
	assert.Equal(t, "SEMANTIC_SIMILARITY", cfg.TaskType)
}

func TestNewEngineUnknownProvider(t *testing.T) {
	_, err := NewEngine(config.EmbeddingConfig{Provider: "word2vec"})
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a       []float32
		b       []float32
		want    float64
		wantErr bool
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, false},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1, false},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0, false},
		{"dimension mismatch", []float32{1}, []float32{1, 2}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
