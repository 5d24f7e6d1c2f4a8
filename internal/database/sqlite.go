package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a file-backed UserStore for local runs and tests.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps upserts serialized without busy errors
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("✅ SQLite store ready", zap.String("path", dbPath))
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_records (
  user_id TEXT PRIMARY KEY,
  thought_history TEXT NOT NULL DEFAULT '[]',
  suggestion_history TEXT NOT NULL DEFAULT '[]',
  mood_history TEXT NOT NULL DEFAULT '[]',
  tasks TEXT NOT NULL DEFAULT '[]',
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create user_records table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.UserRecord, error) {
	const query = `
SELECT user_id, thought_history, suggestion_history, mood_history, tasks, updated_at
FROM user_records
WHERE user_id = ?`

	rec := &models.UserRecord{}
	var cols userColumns
	var updatedAt string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&cols.thoughts,
		&cols.suggestions,
		&cols.moods,
		&cols.tasks,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user record: %w", err)
	}

	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if err := cols.decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, userID string, data models.UserData) (*models.UserRecord, error) {
	cols, err := encodeUserData(data)
	if err != nil {
		return nil, err
	}

	const stmt = `
INSERT INTO user_records (user_id, thought_history, suggestion_history, mood_history, tasks, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  thought_history=excluded.thought_history,
  suggestion_history=excluded.suggestion_history,
  mood_history=excluded.mood_history,
  tasks=excluded.tasks,
  updated_at=excluded.updated_at;
`
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, stmt,
		userID,
		string(cols.thoughts),
		string(cols.suggestions),
		string(cols.moods),
		string(cols.tasks),
		now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("upsert user record: %w", err)
	}

	rec := &models.UserRecord{UserID: userID, UpdatedAt: now, UserData: data.Clone()}
	rec.Normalize()
	return rec, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close sqlite store", zap.Error(err))
	}
}
