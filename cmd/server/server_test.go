package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallpulse/burnout-meter/internal/analysis"
	"github.com/oncallpulse/burnout-meter/internal/collect"
	"github.com/oncallpulse/burnout-meter/internal/config"
	"github.com/oncallpulse/burnout-meter/internal/monitoring"
	"github.com/oncallpulse/burnout-meter/internal/report"
	"github.com/oncallpulse/burnout-meter/internal/store"
	"github.com/oncallpulse/burnout-meter/internal/types"
)

func newTestServer(t *testing.T) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	analyzer, err := analysis.NewAnalyzer(cfg)
	require.NoError(t, err)

	runStore, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { runStore.Close() })

	logger := monitoring.NewLogger(slog.LevelError)
	srv := &server{
		cfg:      cfg,
		analyzer: analyzer,
		store:    runStore,
		reports:  report.NewGenerator(5),
		logger:   logger,
	}
	return srv, newRouter(srv, logger)
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func analyzeBody(t *testing.T, engineers int) *bytes.Buffer {
	t.Helper()
	type engineerInput struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
		Incidents []map[string]any `json:"incidents"`
	}

	var inputs []engineerInput
	for i := 0; i < engineers; i++ {
		var e engineerInput
		e.User.ID = fmt.Sprintf("u%d", i)
		e.User.Name = fmt.Sprintf("Engineer %d", i)
		e.Incidents = []map[string]any{
			{
				"id":          "inc-1",
				"severity":    "sev2",
				"created_at":  time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC),
				"resolved_at": time.Date(2025, 1, 7, 11, 0, 0, 0, time.UTC),
			},
		}
		inputs = append(inputs, e)
	}

	body, err := json.Marshal(map[string]any{"engineers": inputs, "window_days": 30})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 3))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Summary.TotalAnalyzed)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "u0", resp.Results[0].UserID)
	assert.Equal(t, analysis.RiskLow, resp.Results[0].RiskLevel)
}

func TestAnalyzeEndpointWindowDaysAffectsScoring(t *testing.T) {
	_, r := newTestServer(t)

	post := func(windowDays int) analyzeResponse {
		t.Helper()
		var incidents []map[string]any
		for i := 0; i < 20; i++ {
			incidents = append(incidents, map[string]any{
				"id":          fmt.Sprintf("inc-%d", i),
				"severity":    "sev2",
				"created_at":  time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC),
				"resolved_at": time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC),
			})
		}
		body, err := json.Marshal(map[string]any{
			"engineers": []map[string]any{
				{"user": map[string]any{"id": "u1", "name": "Jordan Lee"}, "incidents": incidents},
			},
			"window_days": windowDays,
			"persist":     false,
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	packed := post(30)
	spread := post(60)

	assert.Equal(t, 30, packed.Summary.WindowDays)
	assert.Equal(t, 60, spread.Summary.WindowDays)
	// The same load over twice the window halves the weekly rate, so the
	// score must drop.
	require.Len(t, spread.Results, 1)
	assert.Less(t, spread.Results[0].BurnoutScore, packed.Results[0].BurnoutScore)
}

func TestAnalyzeEndpointRejectsEmptyBatch(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(`{"engineers": []}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointRejectsMalformedJSON(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(`{"engineers": [`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubIncidentSource struct {
	users     []types.Engineer
	incidents []types.IncidentRecord
}

func (s *stubIncidentSource) FetchUsers(ctx context.Context) ([]types.Engineer, error) {
	return s.users, nil
}

func (s *stubIncidentSource) FetchIncidents(ctx context.Context, since time.Time) ([]types.IncidentRecord, error) {
	return s.incidents, nil
}

func TestCollectEndpointUnconfigured(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/collect", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no data sources configured")
}

func TestCollectEndpoint(t *testing.T) {
	srv, r := newTestServer(t)
	srv.collector = collect.New(&stubIncidentSource{
		users: []types.Engineer{{ID: "u1", Name: "Jordan Lee", Email: "jordan@example.com"}},
		incidents: []types.IncidentRecord{
			{ID: "inc-1", Severity: "sev2", CreatedAt: time.Now().AddDate(0, 0, -2), AssigneeIDs: []string{"u1"}},
		},
	}, nil, nil, srv.logger)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/collect", bytes.NewBufferString(`{"window_days": 14}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp collectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Summary.TotalAnalyzed)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "u1", resp.Results[0].UserID)
	assert.Equal(t, 14, resp.Summary.WindowDays)
}

func TestRunsEndpoints(t *testing.T) {
	_, r := newTestServer(t)

	// Seed one run through the API.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 1))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.RunID)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Runs, 1)
	assert.Equal(t, created.RunID, listed.Runs[0].ID)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/"+created.RunID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var run store.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Len(t, run.Results, 1)
}

func TestGetRunNotFound(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/runs/missing-id", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	_, r := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "propagated-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "propagated-id", w.Header().Get("X-Request-ID"))
}
