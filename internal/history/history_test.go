package history

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/config"
	"engagerag/internal/domain"
)

func setupTestRedis(t *testing.T) *Redis {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	store := NewRedis(client, "test:history:", DefaultMaxEntries)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(DefaultMaxEntries),
		"redis":  setupTestRedis(t),
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			empty, err := s.Recent(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, s.Append(ctx, "u1", domain.UserSaid("hi"), domain.AssistantSaid("Hello!")))
			require.NoError(t, s.Append(ctx, "u2", domain.UserSaid("other")))

			got, err := s.Recent(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, []domain.Exchange{domain.UserSaid("hi"), domain.AssistantSaid("Hello!")}, got)
		})
	}
}

func TestStore_TrimsToTwenty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 21; i++ {
				require.NoError(t, s.Append(ctx, "u1", domain.UserSaid(fmt.Sprintf("m%d", i))))
			}
			got, err := s.Recent(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, got, 20)
			assert.Equal(t, "m1", got[0].Text)
			assert.Equal(t, "m20", got[19].Text)
		})
	}
}

func TestPrior(t *testing.T) {
	var h []domain.Exchange
	for i := 0; i < 20; i++ {
		h = append(h, domain.UserSaid(fmt.Sprintf("m%d", i)))
	}
	got := Prior(h, 20)
	require.Len(t, got, 19)
	assert.Equal(t, "m1", got[0].Text)

	assert.Len(t, Prior(h, 0), 19)
	assert.Len(t, Prior(h[:5], 20), 5)
	assert.Empty(t, Prior(nil, 20))
}

func TestStore_ConcurrentAppendsStayBounded(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 30; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, s.Append(ctx, "shared", domain.UserSaid(fmt.Sprintf("q%d", i)), domain.AssistantSaid("a")))
				}()
			}
			wg.Wait()
			got, err := s.Recent(ctx, "shared")
			require.NoError(t, err)
			assert.Len(t, got, 20)
		})
	}
}

func TestNew(t *testing.T) {
	s, err := New(config.HistoryConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = New(config.HistoryConfig{Type: "redis"})
	assert.Error(t, err)
	_, err = New(config.HistoryConfig{Type: "etcd"})
	assert.Error(t, err)
}
