package embedding

import (
	"fmt"
	"time"

	"engagerag/internal/config"
	"engagerag/internal/domain"
	"engagerag/internal/embedding/openai"
	"engagerag/internal/embedding/tfidf"
)

// New builds the embedder selected by cfg.Type.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.OpenAI.Dimensions,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
