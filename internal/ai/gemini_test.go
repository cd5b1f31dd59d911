package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, keys []string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(NewKeyring(keys), zap.NewNop())
	c.baseURL = server.URL
	return c
}

func TestGenerate_Success(t *testing.T) {
	c := newTestClient(t, []string{"key-a"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-a", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"  hello  "}]}}]}`)
	})

	text, err := c.Generate(context.Background(), "say hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestGenerate_RotatesOnQuota(t *testing.T) {
	var calls int
	c := newTestClient(t, []string{"key-a", "key-b", "key-c"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	})

	// Three quota failures rotate through all keys; the fourth attempt
	// (back on the first key) succeeds.
	text, err := c.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 4, calls)
}

func TestGenerate_AllKeysExhausted(t *testing.T) {
	var calls int
	c := newTestClient(t, []string{"key-a", "key-b", "key-c"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `quota exceeded`)
	})

	_, err := c.Generate(context.Background(), "prompt", "")
	assert.ErrorIs(t, err, ErrKeysExhausted)
	assert.Equal(t, 4, calls) // len(keys)+1 attempts
}

func TestGenerate_NonQuotaErrorPropagates(t *testing.T) {
	var calls int
	c := newTestClient(t, []string{"key-a", "key-b"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid argument"}}`)
	})

	_, err := c.Generate(context.Background(), "prompt", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeysExhausted)
	assert.Equal(t, 1, calls) // no rotation, no retry
}

func TestGenerate_QuotaByBodyMarker(t *testing.T) {
	var calls int
	c := newTestClient(t, []string{"key-a"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// 200 OK but the body still signals an exhausted quota
			fmt.Fprint(w, `{"error":{"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded"}}`)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"recovered"}]}}]}`)
	})

	text, err := c.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, calls)
}

func TestGenerate_NoKeys(t *testing.T) {
	c := NewClient(NewKeyring(nil), zap.NewNop())

	_, err := c.Generate(context.Background(), "prompt", "")
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestGenerate_SystemInstruction(t *testing.T) {
	c := newTestClient(t, []string{"key-a"}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"done"}]}}]}`)
	})

	text, err := c.Generate(context.Background(), "prompt", "be terse")
	require.NoError(t, err)
	assert.Equal(t, "done", text)
}
