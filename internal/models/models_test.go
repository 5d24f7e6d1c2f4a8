package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionHistoryEntry_Suggestions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want SuggestionMap
	}{
		{"json map", `{"Academic":["exam → review notes"]}`, SuggestionMap{CategoryAcademic: {"exam → review notes"}}},
		{"empty", "", SuggestionMap{}},
		{"null", "null", SuggestionMap{}},
		{"legacy string", "exam → review notes", SuggestionMap{CategoryOther: {"exam → review notes"}}},
		{"broken json", `{"Academic":`, SuggestionMap{CategoryOther: {`{"Academic":`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestionHistoryEntry{Text: tt.text}.Suggestions())
		})
	}
}

func TestClassificationResult_SuggestionsJSON(t *testing.T) {
	assert.Equal(t, "{}", ClassificationResult{}.SuggestionsJSON())

	r := ClassificationResult{Suggestions: SuggestionMap{CategorySocial: {FormatSuggestion("text Sam", "send it tonight")}}}
	assert.Equal(t, `{"Social":["text Sam → send it tonight"]}`, r.SuggestionsJSON())
}

func TestMood(t *testing.T) {
	assert.True(t, ValidMood(0))
	assert.True(t, ValidMood(4))
	assert.False(t, ValidMood(5))
	assert.False(t, ValidMood(-1))

	assert.Equal(t, "Great", MoodEntry{Mood: 4}.Level().Label)
	assert.Equal(t, MoodLevel{}, MoodEntry{Mood: 9}.Level())
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("Work").Valid())
	assert.False(t, Category("academic").Valid())
}

func TestUserRecordJSON(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewUserRecord("guest_abc")
	rec.UpdatedAt = at
	rec.MoodHistory = append(rec.MoodHistory, MoodEntry{Mood: 1, Date: at})

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"userId": "guest_abc",
		"updatedAt": "2025-01-02T03:04:05Z",
		"thoughtHistory": [],
		"suggestionHistory": [],
		"moodHistory": [{"mood": 1, "date": "2025-01-02T03:04:05Z"}],
		"tasks": []
	}`, string(data))
}

func TestUserData_NormalizeAndClone(t *testing.T) {
	var d UserData
	d.Normalize()
	assert.NotNil(t, d.Tasks)
	assert.NotNil(t, d.ThoughtHistory)

	d.Tasks = append(d.Tasks, NewTask("a"))
	c := d.Clone()
	c.Tasks[0].Done = true
	assert.False(t, d.Tasks[0].Done)
	assert.Len(t, DefaultTasks(), 5)
}

func TestNewGuestID(t *testing.T) {
	id := NewGuestID()
	assert.Regexp(t, `^guest_[0-9a-f]{9}$`, id)
	assert.NotEqual(t, id, NewGuestID())
}

func TestStoredTypesCarryOnlyJSONTags(t *testing.T) {
	for _, v := range []any{UserData{}, UserRecord{}, Task{}, ThoughtEntry{}, SuggestionHistoryEntry{}, MoodEntry{}} {
		typ := reflect.TypeOf(v)
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if f.Tag == "" {
				continue
			}
			_, ok := f.Tag.Lookup("json")
			assert.True(t, ok, "%s.%s has no json tag", typ.Name(), f.Name)
			_, ok = f.Tag.Lookup("bson")
			assert.False(t, ok, "%s.%s has a bson tag", typ.Name(), f.Name)
		}
	}
}
