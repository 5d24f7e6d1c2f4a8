package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shubh-37/decluttr/internal/models"
)

// UserRepository is the PostgreSQL UserStore.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user's record by id
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*models.UserRecord, error) {
	query := `
		SELECT user_id, thought_history, suggestion_history, mood_history, tasks, updated_at
		FROM user_records
		WHERE user_id = $1
	`

	rec := &models.UserRecord{}
	var cols userColumns
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&cols.thoughts,
		&cols.suggestions,
		&cols.moods,
		&cols.tasks,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user record: %w", err)
	}

	if err := cols.decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertUser replaces the whole record for userID and returns what was stored
func (r *UserRepository) UpsertUser(ctx context.Context, userID string, data models.UserData) (*models.UserRecord, error) {
	cols, err := encodeUserData(data)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO user_records (user_id, thought_history, suggestion_history, mood_history, tasks, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			thought_history = EXCLUDED.thought_history,
			suggestion_history = EXCLUDED.suggestion_history,
			mood_history = EXCLUDED.mood_history,
			tasks = EXCLUDED.tasks,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	rec := &models.UserRecord{UserID: userID, UserData: data.Clone()}
	err = r.db.Pool.QueryRow(ctx, query,
		userID,
		cols.thoughts,
		cols.suggestions,
		cols.moods,
		cols.tasks,
		time.Now().UTC(),
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user record: %w", err)
	}

	rec.Normalize()
	return rec, nil
}

// Count returns total number of stored users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_records`

	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

func (r *UserRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func (r *UserRepository) Close() {
	r.db.Close()
}
