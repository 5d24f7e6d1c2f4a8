package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shubh-37/decluttr/internal/models"
)

func sampleData() models.UserData {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return models.UserData{
		ThoughtHistory:    []models.ThoughtEntry{{Text: "exam friday, call mom", Date: at}},
		SuggestionHistory: []models.SuggestionHistoryEntry{{Text: `{"Academic":["exam friday → review notes"]}`, Date: at}},
		MoodHistory:       []models.MoodEntry{{Mood: 3, Date: at}},
		Tasks:             []models.Task{{Text: "review notes", Done: false}, {Text: "call mom", Done: true}},
	}
}

// exerciseStore runs the UserStore contract against any implementation.
func exerciseStore(t *testing.T, store UserStore) {
	ctx := context.Background()

	_, err := store.GetUser(ctx, "guest_unknown")
	assert.ErrorIs(t, err, ErrUserNotFound)

	saved, err := store.UpsertUser(ctx, "guest_abc123xyz", sampleData())
	require.NoError(t, err)
	assert.Equal(t, "guest_abc123xyz", saved.UserID)
	assert.False(t, saved.UpdatedAt.IsZero())

	loaded, err := store.GetUser(ctx, "guest_abc123xyz")
	require.NoError(t, err)
	assert.Equal(t, sampleData(), loaded.UserData)

	// upsert replaces the whole document
	replacement := models.UserData{Tasks: []models.Task{{Text: "only task"}}}
	_, err = store.UpsertUser(ctx, "guest_abc123xyz", replacement)
	require.NoError(t, err)

	loaded, err = store.GetUser(ctx, "guest_abc123xyz")
	require.NoError(t, err)
	assert.Equal(t, []models.Task{{Text: "only task"}}, loaded.Tasks)
	assert.Empty(t, loaded.ThoughtHistory)
	assert.NotNil(t, loaded.ThoughtHistory)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NoError(t, store.Health(ctx))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "nested", "decluttr.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestOpen_SQLiteScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	store, err := Open(context.Background(), "sqlite://"+path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "mongodb://localhost/decluttr", zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unsupported")
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, url, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	repo := store.(*UserRepository)
	_, err = repo.db.Pool.Exec(ctx, `TRUNCATE user_records`)
	require.NoError(t, err)

	exerciseStore(t, store)
}
