// Package history keeps the recent conversation of each chat session.
package history

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"engagerag/internal/config"
	"engagerag/internal/domain"
)

// DefaultMaxEntries bounds each session's history.
const DefaultMaxEntries = 20

// Store holds per-session exchanges, oldest first. Append adds entries and
// trims the session to its newest max entries as one atomic step.
type Store interface {
	Recent(ctx context.Context, sessionID string) ([]domain.Exchange, error)
	Append(ctx context.Context, sessionID string, entries ...domain.Exchange) error
	Close() error
}

// Prior returns the newest maxEntries-1 exchanges of h: the most a new
// question may carry and still fit the session once it is recorded.
func Prior(h []domain.Exchange, maxEntries int) []domain.Exchange {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if n := maxEntries - 1; len(h) > n {
		return h[len(h)-n:]
	}
	return h
}

// New builds the store selected by cfg.Type.
func New(cfg config.HistoryConfig) (Store, error) {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	switch cfg.Type {
	case "memory", "":
		return NewMemory(maxEntries), nil
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis history config missing")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedis(client, cfg.Redis.KeyPrefix, maxEntries), nil
	default:
		return nil, fmt.Errorf("unknown history store: %s", cfg.Type)
	}
}
