package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(apiKey, zap.NewNop())
	c.baseURL = server.URL
	return c
}

func TestResolve_FirstHit(t *testing.T) {
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "cat in grass", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `{"hits":[{"webformatURL":"https://img.example/first.jpg"},{"webformatURL":"https://img.example/second.jpg"}]}`)
	})

	got := c.Resolve(context.Background(), "cat in grass", false)
	assert.Equal(t, "https://img.example/first.jpg", got)
}

func TestResolve_RandomUsesLargerPage(t *testing.T) {
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `{"hits":[{"webformatURL":"https://img.example/only.jpg"}]}`)
	})

	got := c.Resolve(context.Background(), "cat", true)
	assert.Equal(t, "https://img.example/only.jpg", got)
}

func TestResolve_NoHits(t *testing.T) {
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits":[]}`)
	})

	assert.Equal(t, "", c.Resolve(context.Background(), "xyzzy", false))
}

func TestResolve_DisabledWithoutKey(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	assert.Equal(t, "", c.Resolve(context.Background(), "cat", false))
	assert.False(t, called, "no request should leave the process without an API key")
}

func TestResolve_EmptyQuery(t *testing.T) {
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty query")
	})

	assert.Equal(t, "", c.Resolve(context.Background(), "", false))
}

func TestResolve_ServerError(t *testing.T) {
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Equal(t, "", c.Resolve(context.Background(), "cat", false))
}
