package domain

import "context"

// SearchResult represents a matching document with a relevance score.
type SearchResult struct {
	Document Document
	Score    float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// StatefulEmbedder is implemented by embedders whose vector space depends on
// the corpus they were prepared with. The index persists that state next to
// the vectors so query embeddings stay comparable after a restart.
type StatefulEmbedder interface {
	Embedder
	SaveState(path string) error
	LoadState(path string) error
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, docs []Document, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
	// Persist writes the store to dir, overwriting any earlier copy.
	Persist(ctx context.Context, dir string) error
	// Load restores the store from dir. It reports false when nothing was
	// persisted there.
	Load(ctx context.Context, dir string) (bool, error)
	Len() int
}

// Completer is a single-turn, stateless language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
