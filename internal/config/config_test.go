package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "CBIPPD.pdf", cfg.Document.Path)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, "recursive", cfg.Chunker.Type)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retriever.TopK)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.False(t, cfg.Chat.RollbackFailedTurns)
	assert.Contains(t, cfg.Assistant.SystemPrompt, "Central Bank of India")
	assert.Contains(t, cfg.Assistant.Welcome, "How may I assist you?")
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
document:
  path: policy.pdf
llm:
  model: llama-3.1-8b-instant
embedder:
  type: openai
  openai: {}
vector_store:
  type: qdrant
  qdrant:
    url: localhost:6334
chat:
  rollback_failed_turns: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "policy.pdf", cfg.Document.Path)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 5, cfg.Embedder.OpenAI.MaxRetries)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "bankbot", cfg.VectorStore.Qdrant.Collection)
	assert.True(t, cfg.Chat.RollbackFailedTurns)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retriever.TopK = 7

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Retriever.TopK)
	assert.Equal(t, cfg.Assistant.SystemPrompt, got.Assistant.SystemPrompt)
}
