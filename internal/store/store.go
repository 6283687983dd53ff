package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/oncallpulse/burnout-meter/internal/analysis"
	"github.com/oncallpulse/burnout-meter/internal/report"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted analysis run with its org summary and per-engineer
// results.
type Run struct {
	ID         string                         `json:"id"`
	CreatedAt  time.Time                      `json:"created_at"`
	WindowDays int                            `json:"window_days"`
	Analyzed   int                            `json:"analyzed"`
	Degraded   int                            `json:"degraded"`
	Summary    report.Summary                 `json:"summary"`
	Results    []analysis.UserBurnoutAnalysis `json:"results,omitempty"`
}

// Store persists analysis run history in sqlite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL,
	window_days INTEGER NOT NULL,
	analyzed    INTEGER NOT NULL,
	degraded    INTEGER NOT NULL,
	summary     TEXT NOT NULL,
	results     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Open creates or opens the run-history database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "burnout_meter.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a run and returns its generated ID.
func (s *Store) SaveRun(ctx context.Context, summary report.Summary, results []analysis.UserBurnoutAnalysis) (string, error) {
	id := uuid.NewString()

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, window_days, analyzed, degraded, summary, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, summary.GeneratedAt, summary.WindowDays, summary.TotalAnalyzed, summary.Degraded,
		string(summaryJSON), string(resultsJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, without per-engineer
// results.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, window_days, analyzed, degraded, summary
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var summaryJSON string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.WindowDays, &r.Analyzed, &r.Degraded, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with full per-engineer results.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var summaryJSON, resultsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, window_days, analyzed, degraded, summary, results
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.WindowDays, &r.Analyzed, &r.Degraded, &summaryJSON, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary for run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &r.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results for run %s: %w", id, err)
	}
	return &r, nil
}
