package database

import (
	"context"
	"fmt"
)

// userRecordsTable stores one JSONB document per history kind, keyed by
// the caller-supplied user id.
const userRecordsTable = `
CREATE TABLE IF NOT EXISTS user_records (
	user_id TEXT PRIMARY KEY,
	thought_history JSONB NOT NULL DEFAULT '[]',
	suggestion_history JSONB NOT NULL DEFAULT '[]',
	mood_history JSONB NOT NULL DEFAULT '[]',
	tasks JSONB NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_user_records_updated ON user_records(updated_at DESC);
`

// CreateTables creates all necessary database tables
func (db *DB) CreateTables(ctx context.Context) error {
	db.logger.Info("Creating database tables...")

	if _, err := db.Pool.Exec(ctx, userRecordsTable); err != nil {
		return fmt.Errorf("failed to create user_records: %w", err)
	}

	db.logger.Info("✅ All tables created successfully")
	return nil
}
