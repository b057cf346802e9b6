package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "stats.json", cfg.Data.StatsPath)
	assert.Equal(t, "faiss_index", cfg.Data.IndexDir)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 20, cfg.Retrieval.TopK)
	assert.Equal(t, 30, cfg.Retrieval.RebuildCooldownSecs)
	assert.Equal(t, 20, cfg.History.MaxEntries)
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
embedder:
  type: openai
history:
  type: redis
llm:
  provider: openai
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	require.NotNil(t, cfg.History.Redis)
	assert.Equal(t, "localhost:6379", cfg.History.Redis.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Addr = ":9999"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
