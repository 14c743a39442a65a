package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jchen-labs/media-summary/internal/models"
)

// SQLiteStore persists job records in a local SQLite database. The full
// record is stored as JSON; indexed columns are duplicated for queries.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		job_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		entry_point TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		credits_consumed INTEGER NOT NULL DEFAULT 0,
		record TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_user_id ON jobs(user_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *models.PipelineResult) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}

	query := `
	INSERT INTO jobs (job_id, user_id, status, entry_point, created_at, credits_consumed, record)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(job_id) DO UPDATE SET
		status = excluded.status,
		credits_consumed = excluded.credits_consumed,
		record = excluded.record
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.JobID, rec.UserID, string(rec.Status), string(rec.EntryPoint),
		rec.CreatedAt, rec.CreditsConsumed, string(data))
	if err != nil {
		return fmt.Errorf("save job record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, jobID string) (*models.PipelineResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM jobs WHERE job_id = ?`, jobID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job record: %w", err)
	}

	var rec models.PipelineResult
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("parse job record: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*models.PipelineResult, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `SELECT record FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var out []*models.PipelineResult
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		var rec models.PipelineResult
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, jobID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return fmt.Errorf("delete job record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CheckQuota(ctx context.Context, userID string) (Quota, error) {
	var consumed int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(credits_consumed), 0) FROM jobs WHERE user_id = ?`, userID).Scan(&consumed)
	if err != nil {
		return Quota{}, fmt.Errorf("check quota: %w", err)
	}
	return quotaFor(userID, consumed), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
