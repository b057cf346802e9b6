package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embeddingBody = `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,0.25]}],"model":"test-embed","usage":{"prompt_tokens":1,"total_tokens":1}}`

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("ENGAGERAG_TEST_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "ENGAGERAG_TEST_KEY"})
	assert.Error(t, err)
}

func TestClient_EmbedRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(embeddingBody))
	}))
	defer srv.Close()

	t.Setenv("ENGAGERAG_TEST_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "ENGAGERAG_TEST_KEY", Model: "test-embed"})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "reel performance")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 0.25}, vec)
	assert.Equal(t, 3, c.Dimension())
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_EmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	t.Setenv("ENGAGERAG_TEST_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "ENGAGERAG_TEST_KEY"})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
