package tfidf

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Detailed analysis for reel posts: average likes 420",
	"Detailed analysis for image posts: average likes 210",
	"Day of week engagement ranking, best day Sunday",
}

func TestEmbedder_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "reel")
	assert.Error(t, err)
}

func TestEmbedder_NormalizedVectors(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	assert.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed(context.Background(), "reel likes")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	zero, err := e.Embed(context.Background(), "zzz qqq")
	require.NoError(t, err)
	for _, v := range zero {
		assert.Zero(t, v)
	}
}

func TestEmbedder_StateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tfidf.json")
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	require.NoError(t, e.SaveState(path))

	restored := NewEmbedder()
	require.NoError(t, restored.LoadState(path))
	assert.Equal(t, e.Dimension(), restored.Dimension())

	a, err := e.Embed(context.Background(), "best day sunday")
	require.NoError(t, err)
	b, err := restored.Embed(context.Background(), "best day sunday")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
