package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"engagerag/internal/domain"
)

const fileName = "vectors.json"

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	docs      []domain.Document
}

type persisted struct {
	Dimension int               `json:"dimension"`
	Documents []domain.Document `json:"documents"`
	Vectors   [][]float64       `json:"vectors"`
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.docs = nil
	return nil
}

func (s *Storage) Upsert(ctx context.Context, docs []domain.Document, vectors [][]float64) error {
	if len(docs) != len(vectors) {
		return errors.New("documents and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.docs = append(s.docs, docs...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	// compute cosine similarity (vectors are assumed L2-normalized)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], vector)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Document: s.docs[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.docs = nil
	return nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Persist writes documents and vectors as JSON under dir.
func (s *Storage) Persist(ctx context.Context, dir string) error {
	s.mu.RLock()
	data, err := json.Marshal(persisted{Dimension: s.dimension, Documents: s.docs, Vectors: s.vectors})
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileName), data, 0o644)
}

// Load replaces the store contents with what Persist wrote to dir.
func (s *Storage) Load(ctx context.Context, dir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return false, fmt.Errorf("decode %s: %w", fileName, err)
	}
	if p.Dimension <= 0 || len(p.Documents) != len(p.Vectors) {
		return false, fmt.Errorf("%s: %d documents, %d vectors, dimension %d", fileName, len(p.Documents), len(p.Vectors), p.Dimension)
	}
	for _, v := range p.Vectors {
		if len(v) != p.Dimension {
			return false, errors.New("vector dimension mismatch")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = p.Dimension
	s.docs = p.Documents
	s.vectors = p.Vectors
	return true, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// argsortDesc orders indexes by score, highest first; equal scores keep insertion order.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
