package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 5

	maxRetryDelay = 5 * time.Second
)

// ErrNoEmbedding is returned when the provider answers without a vector.
var ErrNoEmbedding = errors.New("embedding: no embedding returned")

// OpenAIConfig configures an OpenAI-compatible embeddings client.
type OpenAIConfig struct {
	BaseURL string
	// APIKey takes precedence over APIKeyEnv.
	APIKey    string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	// MaxRetries < 0 disables retries; 0 selects DefaultMaxRetries.
	MaxRetries int
}

// OpenAI calls POST {base}/embeddings. It also accepts Ollama's native
// {"embedding": [...]} response shape.
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	client     *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewOpenAI builds a client. A named APIKeyEnv that is unset is an error;
// leaving both APIKey and APIKeyEnv empty sends no Authorization header.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	key := cfg.APIKey
	if key == "" && cfg.APIKeyEnv != "" {
		if key = os.Getenv(cfg.APIKeyEnv); key == "" {
			return nil, fmt.Errorf("embedding: missing API key in env %s", cfg.APIKeyEnv)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = DefaultMaxRetries
	case retries < 0:
		retries = 0
	}
	return &OpenAI{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		maxRetries: retries,
		client:     &http.Client{Timeout: cfg.Timeout},
		sleep:      sleepContext,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAI) Model() string { return c.model }

// Embed returns the embedding for text, retrying transport errors, 429 and
// 5xx responses with exponential backoff.
func (c *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(struct {
		Input  string `json:"input"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, err
	}
	url := c.baseURL + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, lastDelay(lastErr, attempt-1)); err != nil {
				return nil, err
			}
		}
		vec, err := c.do(ctx, url, body)
		if err == nil {
			return vec, nil
		}
		var re *retryableError
		if !errors.As(err, &re) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *OpenAI) do(ctx context.Context, url string, body []byte) ([]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		re := &retryableError{err: fmt.Errorf("embedding: request failed: %s", resp.Status)}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			re.after = time.Duration(secs) * time.Second
		}
		return nil, re
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding: request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: err}
	}
	return decodeEmbedding(payload)
}

func decodeEmbedding(payload []byte) ([]float32, error) {
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(out.Data) > 0 && len(out.Data[0].Embedding) > 0 {
		return out.Data[0].Embedding, nil
	}
	if len(out.Embedding) > 0 {
		return out.Embedding, nil
	}
	return nil, ErrNoEmbedding
}

type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

// lastDelay honors Retry-After when the previous failure carried one.
func lastDelay(err error, attempt int) time.Duration {
	var re *retryableError
	if errors.As(err, &re) && re.after > 0 {
		return re.after
	}
	return RetryDelay(attempt)
}

// RetryDelay is the exponential backoff for attempt, starting at 200ms and
// capped at 5s.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 8 {
		return maxRetryDelay
	}
	d := 200 * time.Millisecond << attempt
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
