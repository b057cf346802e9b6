package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	client     *goopenai.Client
	model      string
	timeout    time.Duration
	maxRetries int

	mu        sync.RWMutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(goopenai.SmallEmbedding3)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: t}
	return &Client{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		timeout:    t,
		maxRetries: 5,
		dimension:  cfg.Dimensions,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Prepare is not required for remote embedding. We will lazily set dimension on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text, retrying rate limits
// and server errors with exponential backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	req := goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(c.model),
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateEmbeddings(ctx, req)
		if err == nil {
			if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
				return nil, errors.New("no embedding returned")
			}
			return c.toFloat64(resp.Data[0].Embedding), nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay(attempt)):
		}
	}
	return nil, fmt.Errorf("openai embeddings failed: %w", lastErr)
}

func (c *Client) toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	c.mu.Lock()
	if c.dimension == 0 {
		c.dimension = len(out)
	}
	c.mu.Unlock()
	return out
}

func retryable(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
