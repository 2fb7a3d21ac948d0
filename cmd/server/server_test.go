package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virelia/pancrisk/internal/config"
)

func testApp(t *testing.T) (*app, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:            "8000",
		DataDir:         t.TempDir(),
		GinMode:         gin.TestMode,
		LogLevel:        slog.LevelError,
		CacheTTL:        time.Minute,
		IPLimitPerMin:   10000,
		MaxBatchRecords: 250,
		AllowedOrigins:  []string{"http://localhost:5173"},
	}

	a := newApp(cfg, nil)
	return a, setupRouter(a)
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "model_metrics")
}

func TestPredictHappyPath(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/predict", `{
		"glucose": 7.2, "bilirubin": 24, "plt": 400, "hgb": 115,
		"wbc": 9.8, "mpv": 10.5, "act": 36, "mono": 0.65,
		"language": "en", "client_type": "doctor"
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "High", body["risk_level"])
	assert.Equal(t, float64(1), body["prediction"])
	assert.NotEmpty(t, body["ai_explanation"])
	assert.NotEmpty(t, body["ai_explanation_b64"])
	assert.NotEmpty(t, body["processing_time"])

	shap, ok := body["shap_values"].([]interface{})
	require.True(t, ok)
	assert.LessOrEqual(t, len(shap), 8)
	assert.Contains(t, body, "waterfall")
	assert.Contains(t, body, "summary")
}

func TestPredictRateLimitHeaders(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/predict", `{"glucose": 5.0}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestPredictValidationFailure(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/predict", `{"plt": 9000}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "accepted ranges")
}

func TestPredictMalformedJSON(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/predict", `{"glucose": `)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictRejectsWrongContentType(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("glucose=7.2"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictResponseCached(t *testing.T) {
	a, r := testApp(t)

	body := `{"glucose": 7.2, "bilirubin": 24}`
	first := postJSON(r, "/api/predict", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(r, "/api/predict", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, a.respCache.Size())
}

func TestCommentaryEndpoint(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/commentary", `{
		"patient_values": {"glucose": 7.2, "bilirubin": 24},
		"probability": 0.62,
		"language": "ru",
		"client_type": "scientist"
	}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ru", body["language"])
	assert.Equal(t, "scientist", body["client_type"])
	assert.NotEmpty(t, body["ai_explanation"])
}

func TestCommentaryRequiresValues(t *testing.T) {
	_, r := testApp(t)

	w := postJSON(r, "/api/commentary", `{"probability": 0.5}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	_, r := testApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "panel.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("glucose,bilirubin,plt\n7.2,24,400\n5.0,10,250\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])

	summary, ok := body["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), summary["processed"])
	assert.Equal(t, float64(0), summary["failed"])
}

func TestBatchMissingFile(t *testing.T) {
	_, r := testApp(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChartsRequirePriorAnalysis(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/bar", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartsAfterPredict(t *testing.T) {
	_, r := testApp(t)

	require.Equal(t, http.StatusOK, postJSON(r, "/api/predict", `{"glucose": 7.2}`).Code)

	for _, kind := range []string{"bar", "waterfall", "beeswarm", "trajectory"} {
		req := httptest.NewRequest(http.MethodGet, "/api/charts/"+kind, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, kind)
		assert.Contains(t, w.Body.String(), "echarts", kind)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/charts/donut", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportAfterPredict(t *testing.T) {
	_, r := testApp(t)

	require.Equal(t, http.StatusOK, postJSON(r, "/api/predict", `{"glucose": 7.2, "bilirubin": 24}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/report/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestReportWithoutAnalysis(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/report/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := testApp(t)

	warm := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pancrisk_")
}

func TestSecurityHeaders(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAuditsWithoutDatabase(t *testing.T) {
	_, r := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "audits")
}
