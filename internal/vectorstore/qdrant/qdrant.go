package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"engagerag/internal/domain"
)

// pointNamespace seeds deterministic point ids derived from document ids.
var pointNamespace = uuid.MustParse("6f1c3f0e-5a7e-4d55-9a51-8a2b3c7d9e10")

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.RWMutex
	dimension int
	count     int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 OK if collection exists with same schema
	if err := s.do(ctx, http.MethodPut, s.collectionURL(), body, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.dimension = dimension
	s.count = 0
	s.mu.Unlock()
	return nil
}

// PointID maps a document id onto the UUID space Qdrant accepts.
func PointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func (s *Storage) Upsert(ctx context.Context, docs []domain.Document, vectors [][]float64) error {
	if len(docs) != len(vectors) {
		return errors.New("documents and vectors length mismatch")
	}
	points := make([]map[string]any, len(docs))
	for i, d := range docs {
		points[i] = map[string]any{
			"id":     PointID(d.ID),
			"vector": vectors[i],
			"payload": map[string]any{
				"doc_id":   d.ID,
				"text":     d.Text,
				"category": string(d.Category),
				"tags":     d.Tags,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", body, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.count += len(docs)
	s.mu.Unlock()
	return nil
}

type searchPayload struct {
	DocID    string            `json:"doc_id"`
	Text     string            `json:"text"`
	Category string            `json:"category"`
	Tags     map[string]string `json:"tags"`
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64       `json:"score"`
			Payload searchPayload `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{
			Document: domain.Document{
				ID:       r.Payload.DocID,
				Text:     r.Payload.Text,
				Category: domain.Category(r.Payload.Category),
				Tags:     r.Payload.Tags,
			},
			Score: r.Score,
		})
	}
	return results, nil
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.do(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		err = nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.count = 0
	s.mu.Unlock()
	return nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Persist is a no-op: Qdrant keeps the points durably on its side.
func (s *Storage) Persist(ctx context.Context, dir string) error { return nil }

// Load attaches to an existing collection and reports whether it holds points.
func (s *Storage) Load(ctx context.Context, dir string) (bool, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, &resp)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if resp.Result.PointsCount == 0 {
		return false, nil
	}
	s.mu.Lock()
	s.count = resp.Result.PointsCount
	s.dimension = resp.Result.Config.Params.Vectors.Size
	s.mu.Unlock()
	return true, nil
}

type statusError struct {
	method string
	url    string
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
}

func (s *Storage) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
