package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(zap.NewNop())
	c.baseURL = server.URL
	return c
}

func TestTranslate_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hello", r.URL.Query().Get("q"))
		assert.Equal(t, "uk", r.URL.Query().Get("tl"))
		fmt.Fprint(w, `[[["привіт","hello",null,null,10]],null,"en"]`)
	})

	assert.Equal(t, "привіт", c.Translate(context.Background(), "hello"))
}

func TestTranslate_MultipleSentences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[["перша частина. ","first part. "],["друга частина","second part"]],null,"en"]`)
	})

	assert.Equal(t, "перша частина. друга частина", c.Translate(context.Background(), "first part. second part"))
}

func TestTranslate_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	assert.Equal(t, ErrorMarker, c.Translate(context.Background(), "hello"))
}

func TestTranslate_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	})

	assert.Equal(t, ErrorMarker, c.Translate(context.Background(), "hello"))
}

func TestTranslate_Unreachable(t *testing.T) {
	c := NewClient(zap.NewNop())
	c.baseURL = "http://127.0.0.1:1"

	assert.Equal(t, ErrorMarker, c.Translate(context.Background(), "hello"))
}
