package labeling

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
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNoChoices is returned when the completion response carries no message
var ErrNoChoices = errors.New("no choices returned from chat completion")

// ChatConfig configures an OpenAI-compatible chat completion labeler.
type ChatConfig struct {
	BaseURL     string
	APIKey      string // takes precedence over APIKeyEnv
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int

	// RequestsPerSecond caps outgoing requests, retries included. Zero means unlimited.
	RequestsPerSecond float64
}

// DefaultChatConfig returns the default chat labeler configuration
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		BaseURL:     "https://api.openai.com/v1",
		APIKeyEnv:   "OPENAI_API_KEY",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.1,
		MaxTokens:   1000,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
	}
}

// ChatLabeler labels groups with a single chat completion call.
type ChatLabeler struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
	client      *http.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewChatLabeler creates a chat labeler. Unset fields take their defaults.
func NewChatLabeler(cfg ChatConfig, logger zerolog.Logger) (*ChatLabeler, error) {
	def := DefaultChatConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = def.APIKeyEnv
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &ChatLabeler{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Model returns the chat model name.
func (c *ChatLabeler) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Label sends every group in one prompt and parses the returned JSON array.
func (c *ChatLabeler) Label(ctx context.Context, groups [][]string) ([]string, error) {
	prompt := BuildPrompt(groups)
	c.logger.Debug().Int("groups", len(groups)).Int("prompt_chars", len(prompt)).Msg("Requesting labels")

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	labels, err := ParseLabels(content)
	if err != nil {
		c.logger.Debug().Err(err).Str("content", content).Msg("Failed to parse labels")
		return nil, err
	}
	c.logger.Debug().Strs("labels", labels).Msg("Parsed labels")
	return labels, nil
}

func (c *ChatLabeler) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}
	url := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(attempt-1, lastErr)); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to build chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			c.logger.Debug().Err(err).Int("attempt", attempt).Msg("Chat request failed")
			continue
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &statusError{code: resp.StatusCode, status: resp.Status, retryAfter: parseRetryAfter(resp.Header)}
			c.logger.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("Chat request throttled")
			continue
		}
		if resp.StatusCode >= 300 {
			return "", &statusError{code: resp.StatusCode, status: resp.Status}
		}

		var out chatResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			return "", fmt.Errorf("failed to decode chat response: %w", err)
		}
		if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
			return "", ErrNoChoices
		}
		return out.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

type statusError struct {
	code       int
	status     string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("chat completion failed: %s", e.status)
}

func parseRetryAfter(h http.Header) time.Duration {
	ra := h.Get("Retry-After")
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

const (
	baseBackoff = 200 * time.Millisecond
	maxBackoff  = 5 * time.Second
)

// retryDelay honours Retry-After and otherwise backs off exponentially, capped at 5s.
func retryDelay(attempt int, lastErr error) time.Duration {
	var se *statusError
	if errors.As(lastErr, &se) && se.retryAfter > 0 {
		return se.retryAfter
	}
	// 200ms << 5 already exceeds the cap; larger shifts would overflow.
	if attempt >= 5 {
		return maxBackoff
	}
	d := baseBackoff << attempt
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
