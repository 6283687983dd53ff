package monitoring

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging for the analysis pipeline.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to stdout.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip, requestID string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"request_id", requestID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AnalysisLogger logs one completed engineer analysis.
func (l *Logger) AnalysisLogger(userID string, score float64, riskLevel string, sources []string) {
	l.Info("Analysis Completed",
		"user_id", userID,
		"burnout_score", score,
		"risk_level", riskLevel,
		"data_sources", sources,
	)
}

// BatchLogger logs a completed batch run.
func (l *Logger) BatchLogger(total, degraded int, orgStatus string, duration time.Duration) {
	l.Info("Batch Completed",
		"total", total,
		"degraded", degraded,
		"org_status", orgStatus,
		"duration_ms", duration.Milliseconds(),
	)
}

// CollectorLogger logs external data source calls.
func (l *Logger) CollectorLogger(source, endpoint string, statusCode int, duration time.Duration, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "Collector Call",
		"source", source,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// SystemLogger logs process lifecycle events.
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
