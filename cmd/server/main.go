package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/virelia/pancrisk/internal/batch"
	"github.com/virelia/pancrisk/internal/cache"
	"github.com/virelia/pancrisk/internal/charts"
	"github.com/virelia/pancrisk/internal/commentary"
	"github.com/virelia/pancrisk/internal/config"
	"github.com/virelia/pancrisk/internal/database"
	apperrors "github.com/virelia/pancrisk/internal/errors"
	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/model"
	"github.com/virelia/pancrisk/internal/monitoring"
	"github.com/virelia/pancrisk/internal/ratelimit"
	"github.com/virelia/pancrisk/internal/report"
	"github.com/virelia/pancrisk/internal/security"
	"github.com/virelia/pancrisk/internal/types"
)

const maxUploadBytes = 10 << 20

// analysisState holds the most recent scored panel so commentary, report
// and chart endpoints can reuse it without rescoring.
type analysisState struct {
	Prediction    int
	Probability   float64
	RiskLevel     string
	Values        map[string]float64
	Decomposition *explain.Decomposition
	Commentary    string
	Language      string
	ClientType    string
}

type app struct {
	cfg       *config.Config
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	respCache *cache.Cache
	limiter   *ratelimit.Limiter
	generator *commentary.Generator
	commCache *commentary.Cache
	processor *batch.Processor
	audits    *database.AuditService

	mu   sync.RWMutex
	last *analysisState
}

func newApp(cfg *config.Config, audits *database.AuditService) *app {
	logger := monitoring.NewLogger()
	logger.SetLevel(cfg.LogLevel)

	metrics := monitoring.NewMetrics()

	var llm commentary.LLMClient
	if cfg.LLMEnabled() {
		llm = commentary.NewHTTPLLM(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		logger.Info("External commentary backend configured", "model", cfg.LLMModel)
	} else {
		logger.Info("No commentary backend configured, using templates")
	}
	generator := commentary.NewGenerator(llm, cfg.LLMTimeout, logger.Logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		respCache: cache.NewCache(cfg.CacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			IPLimitPerMin:   cfg.IPLimitPerMin,
			BurstMultiplier: 2,
		}, metrics),
		generator: generator,
		commCache: commentary.NewCache(),
		processor: batch.NewProcessor(cfg.MaxBatchRecords, generator, logger.Logger),
		audits:    audits,
	}
}

func setupRouter(a *app) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.Middleware(a.metrics, a.logger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())
	r.Use(security.HeadersMiddleware())
	r.Use(security.ValidateContentType())
	r.Use(security.MaxBodySize(maxUploadBytes))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(ratelimit.Middleware(a.limiter))
	r.Use(a.respCache.Middleware(a.metrics))

	api := r.Group("/api")
	{
		api.POST("/predict", a.handlePredict)
		api.POST("/commentary", a.handleCommentary)
		api.POST("/batch", a.handleBatch)
		api.POST("/report", a.handleReportFor)
		api.GET("/report/pdf", a.handleReportLast)
		api.GET("/charts/:kind", a.handleChart)
		api.GET("/audit/recent", a.handleAudits)
	}

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// score runs the full pipeline for one panel and refreshes shared state.
func (a *app) score(ctx context.Context, values map[string]float64, language, clientType string) *analysisState {
	vector := model.RebuildVector(values)
	prediction, probability := model.PredictRisk(vector)
	d := explain.Decompose(model.Attribute(vector), nil, &probability)

	state := &analysisState{
		Prediction:    prediction,
		Probability:   probability,
		RiskLevel:     model.RiskLevel(probability),
		Values:        values,
		Decomposition: d,
		Language:      commentary.NormalizeLocale(language),
		ClientType:    clientType,
	}

	a.commCache.Reset()
	state.Commentary = a.commCache.GetOrGenerate(ctx, a.generator, commentary.Input{
		Prediction:    prediction,
		Probability:   probability,
		Decomposition: d,
		PatientValues: values,
		Audience:      commentary.NormalizeAudience(clientType),
		Locale:        state.Language,
	})

	a.mu.Lock()
	a.last = state
	a.mu.Unlock()

	return state
}

func (a *app) lastState() *analysisState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func (a *app) handlePredict(c *gin.Context) {
	start := time.Now()

	var req types.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewPayloadError("Invalid JSON payload", err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	values := req.Values()
	if violations := model.Validate(values); len(violations) > 0 {
		appErr := apperrors.NewValidationError("Patient values out of accepted ranges", violations...)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	state := a.score(c.Request.Context(), values, req.Language, req.ClientType)

	processing := time.Since(start)
	a.metrics.RecordPrediction(state.RiskLevel)
	a.logger.PredictionLogger(state.RiskLevel, state.Probability, processing, false)

	if a.audits != nil {
		a.audits.Record(database.Audit{
			RequestID:    c.GetString("request_id"),
			Prediction:   state.Prediction,
			Probability:  state.Probability,
			RiskLevel:    state.RiskLevel,
			Language:     state.Language,
			ClientType:   req.ClientType,
			ProcessingMS: processing.Milliseconds(),
		})
	}

	c.JSON(http.StatusOK, types.PredictResponse{
		Prediction:       state.Prediction,
		Probability:      state.Probability,
		RiskLevel:        state.RiskLevel,
		PatientValues:    state.Values,
		ShapValues:       state.Decomposition.Top(),
		Baseline:         state.Decomposition.Baseline,
		Waterfall:        state.Decomposition.Waterfall,
		Summary:          state.Decomposition.Summary,
		Clusters:         state.Decomposition.Clusters,
		Commentary:       state.Commentary,
		CommentaryBase64: base64.StdEncoding.EncodeToString([]byte(state.Commentary)),
		Metrics:          model.ModelMetrics,
		ProcessingTime:   fmt.Sprintf("%.3fs", processing.Seconds()),
		Timestamp:        time.Now().Format(time.RFC3339),
		Status:           "success",
	})
}

func (a *app) handleCommentary(c *gin.Context) {
	var req types.CommentaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewPayloadError("Invalid JSON payload", err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	if len(req.Features) == 0 && len(req.PatientValues) == 0 {
		appErr := apperrors.NewValidationError("Patient values are required to regenerate commentary")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	var vector []float64
	values := req.PatientValues
	if len(req.Features) == len(model.FeatureOrder) {
		vector = req.Features
		if values == nil {
			values = make(map[string]float64, len(model.FeatureOrder))
			for i, key := range model.FeatureOrder {
				values[key] = vector[i]
			}
		}
	} else {
		vector = model.RebuildVector(values)
	}

	probability := req.Probability
	prediction := 0
	if probability > 0.5 {
		prediction = 1
	}
	if req.Prediction != nil {
		prediction = *req.Prediction
	}

	d := explain.Decompose(model.Attribute(vector), nil, &probability)
	locale := commentary.NormalizeLocale(req.Language)
	audience := commentary.NormalizeAudience(req.ClientType)

	text := a.commCache.GetOrGenerate(c.Request.Context(), a.generator, commentary.Input{
		Prediction:    prediction,
		Probability:   probability,
		Decomposition: d,
		PatientValues: values,
		Audience:      audience,
		Locale:        locale,
	})

	c.JSON(http.StatusOK, types.CommentaryResponse{
		Commentary:       text,
		CommentaryBase64: base64.StdEncoding.EncodeToString([]byte(text)),
		Language:         locale,
		ClientType:       string(audience),
		Status:           "success",
	})
}

func (a *app) handleBatch(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		appErr := apperrors.NewPayloadError("CSV file upload required in field 'file'", err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		appErr := apperrors.NewPayloadError("Failed to read uploaded CSV", err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	result, err := a.processor.Process(c.Request.Context(), data, batch.Options{
		Language:          c.PostForm("language"),
		ClientType:        c.PostForm("client_type"),
		IncludeCommentary: c.PostForm("include_commentary") == "true",
	})
	if err != nil {
		appErr := apperrors.NewValidationError(err.Error())
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	a.metrics.RecordBatch(result.Summary.Processed, result.Summary.Failed)

	c.JSON(http.StatusOK, types.BatchResponse{Result: result, Status: "success"})
}

func (a *app) handleReportFor(c *gin.Context) {
	var req types.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewPayloadError("Invalid JSON payload", err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	values := req.Values()
	if violations := model.Validate(values); len(violations) > 0 {
		appErr := apperrors.NewValidationError("Patient values out of accepted ranges", violations...)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	state := a.score(c.Request.Context(), values, req.Language, req.ClientType)
	a.writeReport(c, state)
}

func (a *app) handleReportLast(c *gin.Context) {
	state := a.lastState()
	if state == nil {
		appErr := apperrors.NewValidationError("No analysis available yet, run a prediction first")
		c.AbortWithStatusJSON(http.StatusNotFound, appErr)
		return
	}
	a.writeReport(c, state)
}

func (a *app) writeReport(c *gin.Context, state *analysisState) {
	pdf, err := report.Build(report.Input{
		Prediction:    state.Prediction,
		Probability:   state.Probability,
		RiskLevel:     state.RiskLevel,
		PatientValues: state.Values,
		Decomposition: state.Decomposition,
		Commentary:    state.Commentary,
		GeneratedAt:   time.Now().UTC(),
	})
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to render report", err))
		c.Abort()
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pancreatic-risk-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (a *app) handleChart(c *gin.Context) {
	state := a.lastState()
	if state == nil {
		appErr := apperrors.NewValidationError("No analysis available yet, run a prediction first")
		c.AbortWithStatusJSON(http.StatusNotFound, appErr)
		return
	}

	html, err := charts.Render(c.Param("kind"), state.Decomposition)
	if err != nil {
		appErr := apperrors.NewValidationError(err.Error())
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (a *app) handleAudits(c *gin.Context) {
	if a.audits == nil {
		c.JSON(http.StatusOK, gin.H{"audits": []database.Audit{}, "status": "success"})
		return
	}

	audits, err := a.audits.Recent(c.Request.Context(), 50)
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to load audit trail", err))
		c.Abort()
		return
	}

	counts, err := a.audits.RiskCounts(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("Failed to load audit trail", err))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits":      audits,
		"risk_counts": counts,
		"status":      "success",
	})
}

func (a *app) handleHealth(c *gin.Context) {
	resp := types.HealthResponse{
		Status:        "ok",
		UptimeSeconds: a.metrics.Uptime().Seconds(),
		ModelMetrics:  model.ModelMetrics,
		Cache:         a.respCache.Stats(),
		RateLimit:     a.limiter.Stats(),
	}
	c.JSON(http.StatusOK, resp)
}

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer apperrors.SafeClose(db, "database")

	audits := database.NewAuditService(database.NewAuditRepository(db), logger)

	a := newApp(cfg, audits)
	r := setupRouter(a)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
