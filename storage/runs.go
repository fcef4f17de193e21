package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"rea_scraper/models"
)

// RunStore is the local history of runs and the warnings they logged.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &RunStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		job_type TEXT NOT NULL,
		portal TEXT NOT NULL,
		category TEXT NOT NULL,
		mode INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		report JSON
	);

	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY,
		run_name TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		source TEXT,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_run_logs_run ON run_logs(run_name, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *RunStore) SaveRun(ctx context.Context, rec *models.RunRecord) error {
	report := string(rec.Report)
	if report == "" {
		report = "{}"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, name, job_type, portal, category, mode, started_at, finished_at, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Name, string(rec.JobType), string(rec.Portal), string(rec.Category),
		int(rec.Mode), rec.StartedAt.UTC(), nullTime(rec), report)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.Name, err)
	}
	return nil
}

func nullTime(rec *models.RunRecord) sql.NullTime {
	if rec.FinishedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: rec.FinishedAt.UTC(), Valid: true}
}

// ListRuns returns the most recent runs first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, job_type, portal, category, mode, started_at, finished_at, report
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var (
			rec      models.RunRecord
			id       string
			job      string
			portal   string
			category string
			mode     int
			finished sql.NullTime
			report   string
		)
		if err := rows.Scan(&id, &rec.Name, &job, &portal, &category, &mode, &rec.StartedAt, &finished, &report); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run %s: %w", rec.Name, err)
		}
		rec.JobType = models.JobType(job)
		rec.Portal = models.Portal(portal)
		rec.Category = models.Category(category)
		rec.Mode = models.Mode(mode)
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		rec.Report = json.RawMessage(report)
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

func (s *RunStore) SaveLog(ctx context.Context, entry *models.RunLog) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO run_logs (run_name, timestamp, level, source, message)
		VALUES (?, ?, ?, ?, ?)`,
		entry.RunName, entry.Timestamp.UTC(), string(entry.Level), entry.Source, entry.Message)
	if err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

func (s *RunStore) RunLogs(ctx context.Context, runName string) ([]models.RunLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_name, timestamp, level, source, message
		FROM run_logs WHERE run_name = ? ORDER BY timestamp, id`, runName)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var (
			entry models.RunLog
			level string
		)
		if err := rows.Scan(&entry.ID, &entry.RunName, &entry.Timestamp, &level, &entry.Source, &entry.Message); err != nil {
			return nil, err
		}
		entry.Level = models.LogLevel(level)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
