package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oncallpulse/burnout-meter/internal/adapters"
	"github.com/oncallpulse/burnout-meter/internal/analysis"
	"github.com/oncallpulse/burnout-meter/internal/collect"
	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/correlate"
	apperrors "github.com/oncallpulse/burnout-meter/internal/errors"
	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/report"
	"github.com/oncallpulse/burnout-meter/internal/store"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

func main() {
	// .env is optional, real deployments use environment variables
	_ = godotenv.Load()

	logger := monitoring.NewLogger(slog.LevelInfo)
	slog.SetDefault(logger.Logger)

	configPath := getEnvOrDefault("CONFIG_PATH", "burnout.yaml")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}

	analyzer, err := analysis.NewAnalyzer(cfg)
	if err != nil {
		slog.Error("Invalid scoring configuration", "error", err)
		os.Exit(1)
	}

	runStore, err := store.Open(dataDir)
	if err != nil {
		slog.Error("Failed to open run store", "data_dir", dataDir, "error", err)
		os.Exit(1)
	}
	defer runStore.Close()

	srv := &server{
		cfg:       cfg,
		analyzer:  analyzer,
		store:     runStore,
		reports:   report.NewGenerator(5),
		collector: collectorFromEnv(cfg, logger),
		logger:    logger,
	}

	r := newRouter(srv, logger)

	httpSrv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.SystemLogger("server_starting", "listening on :"+port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.SystemLogger("server_stopping", "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

type server struct {
	cfg       config.ScoringConfig
	analyzer  *analysis.Analyzer
	store     *store.Store
	reports   *report.Generator
	collector *collect.Collector
	logger    *monitoring.Logger
}

// analyzerFor returns the shared analyzer, or one rebuilt over the
// requested window so per-week rates reflect it.
func (s *server) analyzerFor(windowDays int) (*analysis.Analyzer, error) {
	if windowDays == s.cfg.WindowDays {
		return s.analyzer, nil
	}
	cfg := s.cfg
	cfg.WindowDays = windowDays
	return analysis.NewAnalyzer(cfg)
}

func (s *server) logResults(results []analysis.UserBurnoutAnalysis) {
	for _, r := range results {
		sources := make([]string, 0, len(r.DataSources))
		for _, src := range r.DataSources {
			sources = append(sources, string(src))
		}
		s.logger.AnalysisLogger(r.UserID, r.BurnoutScore, string(r.RiskLevel), sources)
	}
}

// collectorFromEnv builds the source collector when upstream credentials
// are configured. The incident API is the mandatory source; GitHub and
// Slack are attached when their tokens are present.
func collectorFromEnv(cfg config.ScoringConfig, logger *monitoring.Logger) *collect.Collector {
	base := os.Getenv("INCIDENT_API_URL")
	if base == "" {
		return nil
	}
	incidents := adapters.NewIncidentAdapter(base, os.Getenv("INCIDENT_API_TOKEN"), logger)

	var code collect.CodeSource
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		code = adapters.NewGitHubAdapter(token, splitList(os.Getenv("GITHUB_ORGS")), cfg.BusinessHours, logger)
	}
	var chat collect.ChatSource
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		chat = adapters.NewSlackAdapter(token, logger)
	}

	return collect.New(incidents, code, chat, logger)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func newRouter(srv *server, logger *monitoring.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(monitoring.RequestMiddleware(logger))
	r.Use(apperrors.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", srv.handleHealth)

	api := r.Group("/api/v1")
	{
		api.POST("/analyze", srv.handleAnalyze)
		api.POST("/collect", srv.handleCollect)
		api.GET("/runs", srv.handleListRuns)
		api.GET("/runs/:id", srv.handleGetRun)
	}

	return r
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "burnout-meter",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type analyzeRequest struct {
	Engineers  []types.EngineerInput `json:"engineers" binding:"required"`
	WindowDays int                   `json:"window_days"`
	Workers    int                   `json:"workers"`
	Persist    *bool                 `json:"persist"`
}

type analyzeResponse struct {
	RunID   string                         `json:"run_id,omitempty"`
	Summary report.Summary                 `json:"summary"`
	Results []analysis.UserBurnoutAnalysis `json:"results"`
}

func (s *server) handleAnalyze(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	var req analyzeRequest
	if err := c.BindJSON(&req); err != nil {
		appErr := apperrors.NewValidationError("invalid request body", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	if len(req.Engineers) == 0 {
		appErr := apperrors.NewValidationError("engineers list cannot be empty", nil)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	analyzer, err := s.analyzerFor(windowDays)
	if err != nil {
		appErr := apperrors.NewValidationError("invalid analysis window", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	start := time.Now()
	results := analyzer.AnalyzeBatch(ctx, req.Engineers, req.Workers)
	summary := s.reports.Summarize(results, windowDays, time.Now())
	s.logResults(results)
	s.logger.BatchLogger(summary.TotalAnalyzed, summary.Degraded, summary.Status, time.Since(start))

	resp := analyzeResponse{Summary: summary, Results: results}
	if req.Persist == nil || *req.Persist {
		runID, err := s.store.SaveRun(ctx, summary, results)
		if err != nil {
			slog.Error("Failed to persist run", "error", err)
		} else {
			resp.RunID = runID
		}
	}

	c.JSON(http.StatusOK, resp)
}

type collectRequest struct {
	WindowDays      int               `json:"window_days"`
	Workers         int               `json:"workers"`
	Persist         *bool             `json:"persist"`
	GitHubOverrides map[string]string `json:"github_overrides"`
}

type collectResponse struct {
	RunID       string                         `json:"run_id,omitempty"`
	Correlation correlate.Report               `json:"correlation"`
	Summary     report.Summary                 `json:"summary"`
	Results     []analysis.UserBurnoutAnalysis `json:"results"`
}

// handleCollect gathers inputs from the configured upstream sources and
// runs the analysis on them in one pass.
func (s *server) handleCollect(c *gin.Context) {
	if s.collector == nil {
		appErr := apperrors.NewConfigurationError("no data sources configured, set INCIDENT_API_URL", nil)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	// Collection walks external APIs, so it gets a longer budget than analyze.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
	defer cancel()

	var req collectRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			appErr := apperrors.NewValidationError("invalid request body", err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	analyzer, err := s.analyzerFor(windowDays)
	if err != nil {
		appErr := apperrors.NewValidationError("invalid analysis window", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	start := time.Now()
	gathered, err := s.collector.Gather(ctx, req.GitHubOverrides, windowDays, time.Now())
	if err != nil {
		appErr := apperrors.ToAppError(err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	results := analyzer.AnalyzeBatch(ctx, gathered.Inputs, req.Workers)
	summary := s.reports.Summarize(results, windowDays, time.Now())
	s.logResults(results)
	s.logger.BatchLogger(summary.TotalAnalyzed, summary.Degraded, summary.Status, time.Since(start))

	resp := collectResponse{Correlation: gathered.Correlation, Summary: summary, Results: results}
	if req.Persist == nil || *req.Persist {
		runID, err := s.store.SaveRun(ctx, summary, results)
		if err != nil {
			slog.Error("Failed to persist run", "error", err)
		} else {
			resp.RunID = runID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *server) handleListRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		appErr := apperrors.NewInternalError("failed to list runs", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *server) handleGetRun(c *gin.Context) {
	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		appErr := apperrors.NewInternalError("failed to load run", err)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	c.JSON(http.StatusOK, run)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
