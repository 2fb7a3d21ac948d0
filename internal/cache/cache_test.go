package cache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virelia/pancrisk/internal/monitoring"
)

func TestSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("k", []byte("payload"))

	data, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, 1, c.Size())
}

func TestGetMissing(t *testing.T) {
	c := NewCache(time.Minute)

	_, found := c.Get("absent")
	assert.False(t, found)
}

func TestExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	c.Set("k", []byte("payload"))
	time.Sleep(25 * time.Millisecond)

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestDeleteAndClear(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestGenerateKeyStable(t *testing.T) {
	c := NewCache(time.Minute)

	assert.Equal(t, c.generateKey(`{"glucose":7.2}`), c.generateKey(`{"glucose":7.2}`))
	assert.NotEqual(t, c.generateKey(`{"glucose":7.2}`), c.generateKey(`{"glucose":5.0}`))
}

func TestStats(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("k", []byte("payload"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, 60.0, stats["ttl_seconds"])
}

func cachedRouter(c *Cache) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)

	hits := 0
	r := gin.New()
	r.Use(c.Middleware(monitoring.NewMetrics()))
	r.POST("/api/predict", func(ctx *gin.Context) {
		hits++
		ctx.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	return r, &hits
}

func TestMiddlewareServesCachedResponse(t *testing.T) {
	c := NewCache(time.Minute)
	r, hits := cachedRouter(c)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"glucose":7.2}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := do()
	second := do()

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *hits)
}

func TestMiddlewareDistinctBodies(t *testing.T) {
	c := NewCache(time.Minute)
	r, hits := cachedRouter(c)

	for _, body := range []string{`{"glucose":7.2}`, `{"glucose":5.0}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, *hits)
	assert.Equal(t, 2, c.Size())
}

func TestMiddlewareSkipsOtherPaths(t *testing.T) {
	c := NewCache(time.Minute)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(c.Middleware(monitoring.NewMetrics()))
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 0, c.Size())
}
