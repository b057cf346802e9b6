package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/domain"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Document{
			{ID: "a", Text: "alpha", Category: domain.CategoryStatistics},
			{ID: "b", Text: "beta", Category: domain.CategoryTimeAnalysis},
			{ID: "c", Text: "gamma", Category: domain.CategoryDayAnalysis},
		},
		[][]float64{{1, 0}, {0, 1}, {0.6, 0.8}},
	))
	return s
}

func TestStorage_SearchOrdersByScore(t *testing.T) {
	s := seeded(t)
	res, err := s.Search(context.Background(), []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Document.ID)
	assert.Equal(t, "c", res[1].Document.ID)
}

func TestStorage_UpsertValidates(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	assert.Error(t, s.Upsert(ctx, []domain.Document{{ID: "x"}}, nil))
	assert.Error(t, s.Upsert(ctx, []domain.Document{{ID: "x"}}, [][]float64{{1, 2, 3}}))
	assert.Error(t, s.Init(ctx, 0))
}

func TestStorage_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := seeded(t)
	require.NoError(t, s.Persist(ctx, dir))

	restored := NewStorage()
	ok, err := restored.Load(ctx, dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, restored.Len())

	res, err := restored.Search(ctx, []float64{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", res[0].Document.ID)
}

func TestStorage_LoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ok, err := NewStorage().Load(ctx, dir)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("garbage"), 0o644))
	_, err = NewStorage().Load(ctx, dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{"dimension":2,"documents":[{"id":"a"}],"vectors":[]}`), 0o644))
	_, err = NewStorage().Load(ctx, dir)
	assert.Error(t, err)
}
