package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.HandlerFunc) *ClaudeClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClaudeClient("test-key", "")
	c.endpoint = srv.URL
	return c
}

func TestClaudeClient_Suggest(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "rewrite this", req.Messages[0].Content)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + "```json\\n{\\\"summary\\\": \\\"x\\\"}\\n```" + `"}]}`))
	})
	out, err := c.Suggest(context.Background(), "rewrite this")
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "x"}`, out)
}

func TestClaudeClient_RetryableStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway} {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.Suggest(context.Background(), "p")
		assert.True(t, IsRetryable(err), "status %d", status)
	}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.Suggest(context.Background(), "p")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestWithRetry(t *testing.T) {
	noWait := func(int) time.Duration { return 0 }

	calls := 0
	err := withRetry(context.Background(), noWait, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{StatusCode: 529}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), noWait, func() error {
		calls++
		return &RetryableError{StatusCode: 500}
	})
	assert.True(t, IsRetryable(err))
	assert.Equal(t, MaxRetries+1, calls)

	calls = 0
	permanent := errors.New("bad request")
	err = withRetry(context.Background(), noWait, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestBackoffIsCapped(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 45*time.Second)
	}
}
