package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig points at the raw dataset and the derived artifacts.
type DataConfig struct {
	CSVPath   string `yaml:"csv_path"`
	StatsPath string `yaml:"stats_path"`
	IndexDir  string `yaml:"index_dir"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig configures the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig tunes the nearest-neighbour lookup.
type RetrievalConfig struct {
	TopK                int   `yaml:"top_k"`
	CacheSize           int64 `yaml:"cache_size"`
	RebuildCooldownSecs int   `yaml:"rebuild_cooldown_secs"`
}

// RedisConfig holds connection details for the redis history backend.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// HistoryConfig selects the session history backend.
type HistoryConfig struct {
	Type       string       `yaml:"type"`
	MaxEntries int          `yaml:"max_entries"`
	Redis      *RedisConfig `yaml:"redis,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	RatePerSec  float64  `yaml:"rate_per_sec"`
	Burst       int      `yaml:"burst"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	History     HistoryConfig     `yaml:"history"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/engagerag/config.yaml.
// If neither exists, it writes defaults to ~/.config/engagerag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "engagerag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.CSVPath == "" {
		cfg.Data.CSVPath = "social_media_engagement_data.csv"
	}
	if cfg.Data.StatsPath == "" {
		cfg.Data.StatsPath = "stats.json"
	}
	if cfg.Data.IndexDir == "" {
		cfg.Data.IndexDir = "faiss_index"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil && cfg.VectorStore.Qdrant.Collection == "" {
		cfg.VectorStore.Qdrant.Collection = "engagement"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "groq"
	}
	if cfg.LLM.BaseURL == "" {
		switch cfg.LLM.Provider {
		case "groq":
			cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
		case "ollama":
			cfg.LLM.BaseURL = "http://localhost:11434/v1"
		default:
			cfg.LLM.BaseURL = "https://api.openai.com/v1"
		}
	}
	if cfg.LLM.APIKeyEnv == "" {
		switch cfg.LLM.Provider {
		case "groq":
			cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
		case "ollama":
			cfg.LLM.APIKeyEnv = "OLLAMA_API_KEY"
		default:
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3-8b-8192"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 20
	}
	if cfg.Retrieval.CacheSize == 0 {
		cfg.Retrieval.CacheSize = 1000
	}
	if cfg.Retrieval.RebuildCooldownSecs == 0 {
		cfg.Retrieval.RebuildCooldownSecs = 30
	}
	if cfg.History.Type == "" {
		cfg.History.Type = "memory"
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 20
	}
	if cfg.History.Type == "redis" {
		if cfg.History.Redis == nil {
			cfg.History.Redis = &RedisConfig{}
		}
		if cfg.History.Redis.Addr == "" {
			cfg.History.Redis.Addr = "localhost:6379"
		}
		if cfg.History.Redis.KeyPrefix == "" {
			cfg.History.Redis.KeyPrefix = "engagerag:history:"
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.RatePerSec == 0 {
		cfg.Server.RatePerSec = 10
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
