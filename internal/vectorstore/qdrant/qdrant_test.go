package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/domain"
)

// fakeQdrant records requests and answers the handful of endpoints the store uses.
type fakeQdrant struct {
	mu       sync.Mutex
	exists   bool
	points   []map[string]any
	requests []string
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/collections/engagement":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{
			"points_count": len(f.points),
			"config":       map[string]any{"params": map[string]any{"vectors": map[string]any{"size": 2}}},
		}})
	case r.Method == http.MethodDelete && r.URL.Path == "/collections/engagement":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.exists = false
		f.points = nil
	case r.Method == http.MethodPut && r.URL.Path == "/collections/engagement":
		f.exists = true
	case r.Method == http.MethodPut && r.URL.Path == "/collections/engagement/points":
		var body struct {
			Points []map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points = append(f.points, body.Points...)
	case r.Method == http.MethodPost && r.URL.Path == "/collections/engagement/points/search":
		var result []map[string]any
		for _, p := range f.points {
			result = append(result, map[string]any{"score": 0.9, "payload": p["payload"]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestStorage_Lifecycle(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	ctx := context.Background()

	s := NewStorage(Config{URL: srv.URL, Collection: "engagement"})

	ok, err := s.Load(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Document{{ID: "day_analysis", Text: "Sunday wins", Category: domain.CategoryDayAnalysis, Tags: map[string]string{"day": "Sunday"}}},
		[][]float64{{0.6, 0.8}},
	))
	assert.Equal(t, 1, s.Len())

	res, err := s.Search(ctx, []float64{0.6, 0.8}, 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "day_analysis", res[0].Document.ID)
	assert.Equal(t, domain.CategoryDayAnalysis, res[0].Document.Category)
	assert.Equal(t, "Sunday", res[0].Document.Tags["day"])

	restored := NewStorage(Config{URL: srv.URL, Collection: "engagement"})
	ok, err = restored.Load(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, restored.Len())

	fake.mu.Lock()
	assert.Equal(t, PointID("day_analysis"), fake.points[0]["id"])
	fake.mu.Unlock()
}

func TestPointID_Deterministic(t *testing.T) {
	assert.Equal(t, PointID("statistics"), PointID("statistics"))
	assert.NotEqual(t, PointID("statistics"), PointID("time_analysis"))
}
