package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecordPrediction(t *testing.T) {
	m := NewMetrics()

	m.RecordPrediction("High")
	m.RecordPrediction("High")
	m.RecordPrediction("Low")

	body := scrape(t, m)
	assert.Regexp(t, regexp.MustCompile(`pancrisk_predictions_total\{risk_level="High"\} 2`), body)
	assert.Regexp(t, regexp.MustCompile(`pancrisk_predictions_total\{risk_level="Low"\} 1`), body)
}

func TestRecordBatch(t *testing.T) {
	m := NewMetrics()

	m.RecordBatch(5, 2)

	body := scrape(t, m)
	assert.Regexp(t, regexp.MustCompile(`pancrisk_batch_rows_total\{outcome="processed"\} 5`), body)
	assert.Regexp(t, regexp.MustCompile(`pancrisk_batch_rows_total\{outcome="failed"\} 2`), body)
}

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(http.MethodPost, "/api/predict", http.StatusOK, 12*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `pancrisk_http_requests_total{method="POST",path="/api/predict",status="200"} 1`)
	assert.Contains(t, body, "pancrisk_http_request_duration_seconds")
}

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementRateLimitBlock()
	m.IncrementLLMFallback()

	body := scrape(t, m)
	assert.Contains(t, body, "pancrisk_cache_hits_total 1")
	assert.Contains(t, body, "pancrisk_cache_misses_total 1")
	assert.Contains(t, body, "pancrisk_rate_limit_blocks_total 1")
	assert.Contains(t, body, "pancrisk_llm_fallbacks_total 1")
}

func TestUptime(t *testing.T) {
	m := NewMetrics()
	assert.GreaterOrEqual(t, m.Uptime(), time.Duration(0))
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMetrics()
	logger := NewLogger()

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(Middleware(m, logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := scrape(t, m)
	assert.Contains(t, body, `pancrisk_http_requests_total{method="GET",path="/ping",status="200"} 1`)
}

func TestRequestIDReused(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Body.String())
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
