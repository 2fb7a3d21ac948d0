package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	predictionsTotal *prometheus.CounterVec
	batchRows        *prometheus.CounterVec

	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	rateLimitBlocks prometheus.Counter
	llmFallbacks    prometheus.Counter

	startTime time.Time
}

// NewMetrics builds a registry with all service collectors registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancrisk_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pancrisk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancrisk_predictions_total",
			Help: "Scored panels by risk level.",
		}, []string{"risk_level"}),
		batchRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pancrisk_batch_rows_total",
			Help: "Batch CSV rows by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pancrisk_cache_hits_total",
			Help: "Prediction response cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pancrisk_cache_misses_total",
			Help: "Prediction response cache misses.",
		}),
		rateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pancrisk_rate_limit_blocks_total",
			Help: "Requests rejected by the per-IP limiter.",
		}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pancrisk_llm_fallbacks_total",
			Help: "Commentary generations that fell back to templates.",
		}),
		startTime: time.Now(),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.predictionsTotal,
		m.batchRows,
		m.cacheHits,
		m.cacheMisses,
		m.rateLimitBlocks,
		m.llmFallbacks,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordPrediction counts one scored panel.
func (m *Metrics) RecordPrediction(riskLevel string) {
	m.predictionsTotal.WithLabelValues(riskLevel).Inc()
}

// RecordBatch counts the rows of one batch run.
func (m *Metrics) RecordBatch(processed, failed int) {
	m.batchRows.WithLabelValues("processed").Add(float64(processed))
	m.batchRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) IncrementCacheHit()       { m.cacheHits.Inc() }
func (m *Metrics) IncrementCacheMiss()      { m.cacheMisses.Inc() }
func (m *Metrics) IncrementRateLimitBlock() { m.rateLimitBlocks.Inc() }
func (m *Metrics) IncrementLLMFallback()    { m.llmFallbacks.Inc() }

// Uptime reports time since metrics initialization.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
