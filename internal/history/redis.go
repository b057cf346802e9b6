package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"engagerag/internal/domain"
)

// Redis stores each session as a list of JSON-encoded exchanges.
type Redis struct {
	client *redis.Client
	prefix string
	max    int
}

func NewRedis(client *redis.Client, prefix string, maxEntries int) *Redis {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Redis{client: client, prefix: prefix, max: maxEntries}
}

func (r *Redis) key(sessionID string) string { return r.prefix + sessionID }

func (r *Redis) Recent(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	raw, err := r.client.LRange(ctx, r.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]domain.Exchange, 0, len(raw))
	for _, item := range raw {
		var e domain.Exchange
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Append pushes and trims inside one MULTI/EXEC so concurrent writers to the
// same session never observe more than max entries.
func (r *Redis) Append(ctx context.Context, sessionID string, entries ...domain.Exchange) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values[i] = data
	}
	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-r.max), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
