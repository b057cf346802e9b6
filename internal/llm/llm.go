// Package llm talks to an OpenAI-compatible chat completion endpoint
// (Groq, OpenAI or a local Ollama) and exposes it as a domain.Completer.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"engagerag/internal/config"
	"engagerag/internal/domain"
)

// Client sends one user message per call. It keeps no conversation state.
type Client struct {
	client      *goopenai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient builds a completer from config. The API key is read from the
// environment variable named by cfg.APIKeyEnv; only ollama may run without one.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && cfg.Provider != "ollama" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

var _ domain.Completer = (*Client)(nil)

// Complete returns the model's reply to prompt. Transport errors, an empty
// choice list and blank text all wrap domain.ErrModelInvocation.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrModelInvocation, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty chat response", domain.ErrModelInvocation)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: blank completion", domain.ErrModelInvocation)
	}
	return text, nil
}
