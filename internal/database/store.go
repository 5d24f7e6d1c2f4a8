package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

// ErrUserNotFound is returned by GetUser for ids that were never saved.
var ErrUserNotFound = errors.New("user not found")

// UserStore persists one UserData document per user id. Upserts replace
// the whole document; the last writer wins.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.UserRecord, error)
	UpsertUser(ctx context.Context, userID string, data models.UserData) (*models.UserRecord, error)
	Count(ctx context.Context) (int, error)
	Health(ctx context.Context) error
	Close()
}

// Open picks the store implementation from the URL scheme:
// postgres:// or postgresql:// for PostgreSQL, sqlite://<path> for SQLite.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (UserStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		db, err := NewDB(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := db.CreateTables(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		return NewUserRepository(db), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(databaseURL, "sqlite://"), logger)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
}

// userColumns is the JSON encoding of the four history columns.
type userColumns struct {
	thoughts    []byte
	suggestions []byte
	moods       []byte
	tasks       []byte
}

func encodeUserData(data models.UserData) (userColumns, error) {
	data.Normalize()

	var cols userColumns
	var err error
	if cols.thoughts, err = json.Marshal(data.ThoughtHistory); err != nil {
		return cols, fmt.Errorf("failed to marshal thought history: %w", err)
	}
	if cols.suggestions, err = json.Marshal(data.SuggestionHistory); err != nil {
		return cols, fmt.Errorf("failed to marshal suggestion history: %w", err)
	}
	if cols.moods, err = json.Marshal(data.MoodHistory); err != nil {
		return cols, fmt.Errorf("failed to marshal mood history: %w", err)
	}
	if cols.tasks, err = json.Marshal(data.Tasks); err != nil {
		return cols, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return cols, nil
}

func (cols userColumns) decode(rec *models.UserRecord) error {
	if err := json.Unmarshal(cols.thoughts, &rec.ThoughtHistory); err != nil {
		return fmt.Errorf("failed to unmarshal thought history: %w", err)
	}
	if err := json.Unmarshal(cols.suggestions, &rec.SuggestionHistory); err != nil {
		return fmt.Errorf("failed to unmarshal suggestion history: %w", err)
	}
	if err := json.Unmarshal(cols.moods, &rec.MoodHistory); err != nil {
		return fmt.Errorf("failed to unmarshal mood history: %w", err)
	}
	if err := json.Unmarshal(cols.tasks, &rec.Tasks); err != nil {
		return fmt.Errorf("failed to unmarshal tasks: %w", err)
	}
	rec.Normalize()
	return nil
}
