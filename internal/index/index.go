// Package index owns the retrieval index lifecycle: restoring a persisted
// index, deciding when it is stale, rebuilding it from synthesized documents
// and answering nearest-neighbour queries against it.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"engagerag/internal/docs"
	"engagerag/internal/domain"
	"engagerag/internal/metrics"
)

const (
	manifestFile = "manifest.json"
	embedderFile = "embedder.json"

	// DefaultTopK is the number of documents retrieved per query.
	DefaultTopK = 20
)

// ErrNotReady is returned by Retrieve before a successful Load or Build.
var ErrNotReady = errors.New("retrieval index not ready")

// State of the index lifecycle.
type State int

const (
	Absent State = iota
	Loading
	Building
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Building:
		return "building"
	case Ready:
		return "ready"
	default:
		return "absent"
	}
}

// Manifest describes a persisted index.
type Manifest struct {
	docs.Shape
	Embedder  string    `json:"embedder"`
	Dimension int       `json:"dimension"`
	BuiltAt   time.Time `json:"built_at"`
}

// Options tunes an Index. Zero values pick defaults.
type Options struct {
	Dir         string
	Concurrency int
	CacheSize   int64
	Log         *logrus.Logger
}

// Index binds an embedder and a vector store to a directory on disk.
type Index struct {
	embedder    domain.Embedder
	store       domain.VectorStore
	dir         string
	concurrency int
	log         *logrus.Logger
	cache       *ristretto.Cache

	mu       sync.RWMutex
	state    State
	manifest Manifest
}

// New creates an Absent index. Call Load or Build before Retrieve.
func New(embedder domain.Embedder, store domain.VectorStore, opts Options) (*Index, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.CacheSize * 10,
		MaxCost:     opts.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return &Index{
		embedder:    embedder,
		store:       store,
		dir:         opts.Dir,
		concurrency: opts.Concurrency,
		log:         opts.Log,
		cache:       cache,
	}, nil
}

// State reports the current lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// Manifest returns the manifest of the Ready index.
func (ix *Index) Manifest() (Manifest, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.manifest, ix.state == Ready
}

func (ix *Index) setState(s State) {
	ix.mu.Lock()
	ix.state = s
	ix.mu.Unlock()
}

// Load restores a persisted index from the directory. A missing index leaves
// the state Absent and returns nil. An unreadable or inconsistent one also
// leaves it Absent and returns an error wrapping domain.ErrIndexCorrupt.
func (ix *Index) Load(ctx context.Context) error {
	ix.setState(Loading)
	m, err := ix.load(ctx)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err != nil || m == nil {
		ix.state = Absent
		ix.manifest = Manifest{}
		return err
	}
	ix.state = Ready
	ix.manifest = *m
	ix.cache.Clear()
	return nil
}

func (ix *Index) load(ctx context.Context) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(ix.dir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", domain.ErrIndexCorrupt, err)
	}
	if m.Embedder != ix.embedder.Name() {
		ix.log.WithFields(logrus.Fields{
			"persisted": m.Embedder,
			"current":   ix.embedder.Name(),
		}).Info("persisted index was built with another embedder")
		return nil, nil
	}

	ok, err := ix.store.Load(ctx, ix.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: manifest present but no vectors", domain.ErrIndexCorrupt)
	}
	if n := ix.store.Len(); n != m.Count {
		return nil, fmt.Errorf("%w: manifest lists %d documents, store holds %d", domain.ErrIndexCorrupt, m.Count, n)
	}

	if se, ok := ix.embedder.(domain.StatefulEmbedder); ok {
		if err := se.LoadState(filepath.Join(ix.dir, embedderFile)); err != nil {
			return nil, fmt.Errorf("%w: embedder state: %v", domain.ErrIndexCorrupt, err)
		}
	}
	if d := ix.embedder.Dimension(); d > 0 && d != m.Dimension {
		return nil, fmt.Errorf("%w: embedder dimension %d, manifest %d", domain.ErrIndexCorrupt, d, m.Dimension)
	}
	return &m, nil
}

// NeedsRebuild reports whether the index must be rebuilt to serve a document
// set of the expected shape.
func (ix *Index) NeedsRebuild(expected docs.Shape) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state != Ready || !ix.manifest.Shape.Equal(expected)
}

// Build embeds every document, replaces the store contents and persists the
// result, overwriting any earlier copy in the directory.
func (ix *Index) Build(ctx context.Context, documents []domain.Document) error {
	if len(documents) == 0 {
		return errors.New("no documents to index")
	}
	ix.setState(Building)
	m, err := ix.build(ctx, documents)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cache.Clear()
	if err != nil {
		ix.state = Absent
		ix.manifest = Manifest{}
		return err
	}
	ix.state = Ready
	ix.manifest = m
	metrics.IndexBuildsTotal.Inc()
	return nil
}

func (ix *Index) build(ctx context.Context, documents []domain.Document) (Manifest, error) {
	// a stale manifest must never describe half-written vectors
	if err := os.Remove(filepath.Join(ix.dir, manifestFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Manifest{}, err
	}

	texts := make([]string, len(documents))
	for i, d := range documents {
		texts[i] = d.Text
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		return Manifest{}, fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)
	for i := range documents {
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, documents[i].Text)
			if err != nil {
				metrics.ModelErrorsTotal.WithLabelValues("embed").Inc()
				return fmt.Errorf("%w: embed document %s: %w", domain.ErrModelInvocation, documents[i].ID, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	dim := ix.embedder.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	if err := ix.store.Clear(ctx); err != nil {
		return Manifest{}, fmt.Errorf("clear store: %w", err)
	}
	if err := ix.store.Init(ctx, dim); err != nil {
		return Manifest{}, fmt.Errorf("init store: %w", err)
	}
	if err := ix.store.Upsert(ctx, documents, vectors); err != nil {
		return Manifest{}, fmt.Errorf("upsert: %w", err)
	}

	if err := os.MkdirAll(ix.dir, 0o755); err != nil {
		return Manifest{}, err
	}
	if err := ix.store.Persist(ctx, ix.dir); err != nil {
		return Manifest{}, fmt.Errorf("persist store: %w", err)
	}
	if se, ok := ix.embedder.(domain.StatefulEmbedder); ok {
		if err := se.SaveState(filepath.Join(ix.dir, embedderFile)); err != nil {
			return Manifest{}, fmt.Errorf("persist embedder state: %w", err)
		}
	}
	m := Manifest{
		Shape:     docs.ShapeOf(documents),
		Embedder:  ix.embedder.Name(),
		Dimension: dim,
		BuiltAt:   time.Now().UTC(),
	}
	if err := writeManifest(ix.dir, m); err != nil {
		return Manifest{}, fmt.Errorf("persist manifest: %w", err)
	}

	ix.log.WithFields(logrus.Fields{
		"documents": m.Count,
		"embedder":  m.Embedder,
		"dimension": m.Dimension,
	}).Info("retrieval index built")
	return m, nil
}

func writeManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, manifestFile+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, manifestFile))
}

// Retrieve returns the k documents nearest to the query. k <= 0 means DefaultTopK.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if ix.State() != Ready {
		return nil, ErrNotReady
	}
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := ix.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}
	return ix.store.Search(ctx, vec, k)
}

func (ix *Index) queryVector(ctx context.Context, query string) ([]float64, error) {
	if v, ok := ix.cache.Get(query); ok {
		return v.([]float64), nil
	}
	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		metrics.ModelErrorsTotal.WithLabelValues("embed").Inc()
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrModelInvocation, err)
	}
	ix.cache.Set(query, vec, 1)
	return vec, nil
}

// Close releases the query cache.
func (ix *Index) Close() {
	ix.cache.Close()
}
