package commentary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virelia/pancrisk/internal/resilience"
)

func TestHTTPLLMComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"narrative text"}}]}`))
	}))
	defer srv.Close()

	llm := NewHTTPLLM(srv.URL, "test-key", "test-model", time.Second)
	out, err := llm.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "narrative text", out)
}

func TestHTTPLLMErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	llm := NewHTTPLLM(srv.URL, "k", "m", time.Second)
	_, err := llm.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPLLMBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	llm := NewHTTPLLM(srv.URL, "k", "m", time.Second)
	for i := 0; i < 6; i++ {
		_, _ = llm.Complete(context.Background(), "prompt")
	}

	_, err := llm.Complete(context.Background(), "prompt")
	var openErr *resilience.OpenError
	require.ErrorAs(t, err, &openErr)
}
