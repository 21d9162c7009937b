package labeling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/vectrend/internal/testutil"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func newTestLabeler(t *testing.T, url string, retries int) *ChatLabeler {
	t.Helper()
	l, err := NewChatLabeler(ChatConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		MaxRetries: retries,
		Timeout:    5 * time.Second,
	}, testutil.TestLogger(t))
	require.NoError(t, err)
	return l
}

func TestChatLabeler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req chatRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			assert.Equal(t, 1000, req.MaxTokens)
			if assert.Len(t, req.Messages, 1) {
				assert.Contains(t, req.Messages[0].Content, "Feedback 1: slow app")
			}

			w.Write([]byte(completion(`["Performance"]`)))
		}))
		defer srv.Close()

		l := newTestLabeler(t, srv.URL, 0)
		labels, err := l.Label(context.Background(), [][]string{{"slow app"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Performance"}, labels)
		assert.Equal(t, "test-model", l.Model())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(completion(`["A"]`)))
		}))
		defer srv.Close()

		labels, err := newTestLabeler(t, srv.URL, 3).Label(context.Background(), [][]string{{"x"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, labels)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("honours retry-after on 429", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(completion(`["B"]`)))
		}))
		defer srv.Close()

		labels, err := newTestLabeler(t, srv.URL, 1).Label(context.Background(), [][]string{{"x"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, labels)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestLabeler(t, srv.URL, 1).Label(context.Background(), [][]string{{"x"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestLabeler(t, srv.URL, 3).Label(context.Background(), [][]string{{"x"}})
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completion("no idea")))
		}))
		defer srv.Close()

		_, err := newTestLabeler(t, srv.URL, 0).Label(context.Background(), [][]string{{"x"}})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := newTestLabeler(t, srv.URL, 0).Label(context.Background(), [][]string{{"x"}})
		assert.ErrorIs(t, err, ErrNoChoices)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestLabeler(t, srv.URL, 3).Label(ctx, [][]string{{"x"}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewChatLabelerAPIKey(t *testing.T) {
	t.Setenv("VECTREND_TEST_KEY", "from-env")

	l, err := NewChatLabeler(ChatConfig{APIKeyEnv: "VECTREND_TEST_KEY"}, testutil.TestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env", l.apiKey)
	assert.Equal(t, DefaultChatConfig().Model, l.Model())

	t.Setenv("VECTREND_EMPTY_KEY", "")
	_, err = NewChatLabeler(ChatConfig{APIKeyEnv: "VECTREND_EMPTY_KEY"}, testutil.TestLogger(t))
	assert.Error(t, err)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0, nil))
	assert.Equal(t, 800*time.Millisecond, retryDelay(2, nil))
	assert.Equal(t, 3200*time.Millisecond, retryDelay(4, nil))
	assert.Equal(t, 5*time.Second, retryDelay(5, nil))
	assert.Equal(t, 5*time.Second, retryDelay(10, nil))
	// large attempt counts must not wrap around to a zero or negative delay
	for _, attempt := range []int{36, 40, 63, 64, 1000} {
		assert.Equal(t, 5*time.Second, retryDelay(attempt, nil), "attempt %d", attempt)
	}
	assert.Equal(t, 2*time.Second, retryDelay(0, &statusError{code: 429, retryAfter: 2 * time.Second}))
}

func TestChatLabelerRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(completion(`["A"]`)))
	}))
	defer srv.Close()

	l, err := NewChatLabeler(ChatConfig{
		BaseURL:           srv.URL,
		APIKey:            "k",
		RequestsPerSecond: 0.001,
	}, testutil.TestLogger(t))
	require.NoError(t, err)

	// the first request spends the only token; the second cannot wait long enough
	_, err = l.Label(context.Background(), [][]string{{"x"}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Label(ctx, [][]string{{"x"}})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
