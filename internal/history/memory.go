package history

import (
	"context"
	"sync"

	"engagerag/internal/domain"
)

// Memory is a process-local Store.
type Memory struct {
	mu       sync.Mutex
	max      int
	sessions map[string][]domain.Exchange
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{max: maxEntries, sessions: make(map[string][]domain.Exchange)}
}

func (m *Memory) Recent(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Exchange(nil), m.sessions[sessionID]...), nil
}

func (m *Memory) Append(ctx context.Context, sessionID string, entries ...domain.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append(m.sessions[sessionID], entries...)
	if len(h) > m.max {
		h = append([]domain.Exchange(nil), h[len(h)-m.max:]...)
	}
	m.sessions[sessionID] = h
	return nil
}

func (m *Memory) Close() error { return nil }
