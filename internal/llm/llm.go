// Package llm invokes the chat-completion service. The service is addressed
// by endpoint, key, API version and deployment name; all three required
// connection parameters are verified before any network call. Temperature
// defaults low (0.2) because every task in this system demands structured,
// reproducible output rather than creative text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"axinsight/internal/apperr"
	"axinsight/internal/logger"
	"axinsight/internal/prompt"
	"axinsight/internal/store"
)

const (
	// DefaultTemperature keeps structured output stable across calls.
	DefaultTemperature = 0.2
	// DefaultMaxTokens is the budget for analysis tasks.
	DefaultMaxTokens = 800
	// DefaultAPIVersion is used when the deployment does not pin one.
	DefaultAPIVersion = "2024-08-01-preview"
)

// Cache stores completion responses keyed by exact message content.
// Identical prompts yield stable-enough output for the dashboard, so a hit
// skips the network round trip entirely. Lifetime is policy, not
// correctness.
type Cache interface {
	GetCachedCompletion(promptHash string, maxAge time.Duration) (string, bool, error)
	CacheCompletion(promptHash, response string) error
}

// Options contains per-call generation options.
type Options struct {
	MaxTokens   int     // maximum number of tokens to generate
	Temperature float64 // 0 means DefaultTemperature
}

// Client is a chat-completion client.
type Client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string
	client     *http.Client
	cache      Cache // may be nil
	cacheTTL   time.Duration
}

// NewClient creates a completion client. Missing endpoint, key or
// deployment is a configuration error, reported before any network call.
func NewClient(endpoint, apiKey, apiVersion, deployment string) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, apperr.Configuration("completion service is not configured: set AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT")
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		deployment: deployment,
		client:     &http.Client{Timeout: 60 * time.Second},
		cacheTTL:   time.Hour,
	}, nil
}

// WithCache attaches a response cache with the given lifetime.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	if ttl > 0 {
		c.cacheTTL = ttl
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one system/user message pair and returns the raw
// completion text.
func (c *Client) Complete(ctx context.Context, messages prompt.Messages, opts Options) (string, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}

	promptHash := store.Key(
		c.deployment, messages.System, messages.User,
		fmt.Sprintf("%d/%g", opts.MaxTokens, opts.Temperature),
	)
	if c.cache != nil {
		if cached, ok, err := c.cache.GetCachedCompletion(promptHash, c.cacheTTL); err == nil && ok {
			logger.Debug("completion cache hit", "hash", promptHash[:12])
			return cached, nil
		}
	}

	payload, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: messages.System},
			{Role: "user", Content: messages.User},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Retrieval("completion request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperr.RetrievalStatus("completion request failed", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperr.Retrieval("failed to parse completion response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.Retrieval("completion response contained no choices", nil)
	}

	text := parsed.Choices[0].Message.Content
	if c.cache != nil {
		if err := c.cache.CacheCompletion(promptHash, text); err != nil {
			logger.Warn("failed to cache completion", "error", err.Error())
		}
	}
	logger.Info("completion received", "deployment", c.deployment, "chars", len(text))
	return text, nil
}
