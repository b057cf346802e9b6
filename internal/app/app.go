// Package app assembles the analytics engine from configuration.
package app

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"engagerag/internal/config"
	"engagerag/internal/dataset"
	"engagerag/internal/domain"
	"engagerag/internal/embedding"
	"engagerag/internal/index"
	"engagerag/internal/llm"
	"engagerag/internal/service"
	"engagerag/internal/stats"
	"engagerag/internal/vectorstore"
)

// App is the wired engine plus whatever must be closed on shutdown.
type App struct {
	Engine *service.Engine
	Index  *index.Index
}

// Build wires the engine. A nil completer means the configured LLM endpoint.
func Build(cfg *config.AppConfig, log *logrus.Logger, completer domain.Completer) (*App, error) {
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	ix, err := index.New(emb, store, index.Options{
		Dir:       cfg.Data.IndexDir,
		CacheSize: cfg.Retrieval.CacheSize,
		Log:       log,
	})
	if err != nil {
		return nil, err
	}
	if completer == nil {
		client, err := llm.NewClient(cfg.LLM)
		if err != nil {
			ix.Close()
			return nil, fmt.Errorf("llm init failed: %w", err)
		}
		completer = client
	}
	engine := service.NewEngine(
		dataset.NewCSVFile(cfg.Data.CSVPath),
		stats.NewStore(cfg.Data.StatsPath),
		ix,
		completer,
		service.Options{
			TopK:            cfg.Retrieval.TopK,
			RebuildCooldown: time.Duration(cfg.Retrieval.RebuildCooldownSecs) * time.Second,
			Log:             log,
		},
	)
	log.WithFields(logrus.Fields{
		"embedder":     emb.Name(),
		"vector_store": cfg.VectorStore.Type,
		"llm":          cfg.LLM.Provider + ":" + cfg.LLM.Model,
		"dataset":      cfg.Data.CSVPath,
	}).Debug("engine assembled")
	return &App{Engine: engine, Index: ix}, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	a.Index.Close()
}
