package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserData is the persisted payload for one user. Field names match the
// JSON documents the REST backend accepts and returns.
type UserData struct {
	ThoughtHistory    []ThoughtEntry           `json:"thoughtHistory"`
	SuggestionHistory []SuggestionHistoryEntry `json:"suggestionHistory"`
	MoodHistory       []MoodEntry              `json:"moodHistory"`
	Tasks             []Task                   `json:"tasks"`
}

// UserRecord is a stored UserData keyed by an opaque user id.
type UserRecord struct {
	UserID    string    `json:"userId"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserData
}

// NewUserRecord creates an empty record for userID with non-nil slices
func NewUserRecord(userID string) *UserRecord {
	return &UserRecord{
		UserID: userID,
		UserData: UserData{
			ThoughtHistory:    []ThoughtEntry{},
			SuggestionHistory: []SuggestionHistoryEntry{},
			MoodHistory:       []MoodEntry{},
			Tasks:             []Task{},
		},
	}
}

// Normalize replaces nil slices with empty ones so the record always
// serializes as arrays.
func (d *UserData) Normalize() {
	if d.ThoughtHistory == nil {
		d.ThoughtHistory = []ThoughtEntry{}
	}
	if d.SuggestionHistory == nil {
		d.SuggestionHistory = []SuggestionHistoryEntry{}
	}
	if d.MoodHistory == nil {
		d.MoodHistory = []MoodEntry{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}

// Clone returns a deep copy of d
func (d UserData) Clone() UserData {
	return UserData{
		ThoughtHistory:    append([]ThoughtEntry{}, d.ThoughtHistory...),
		SuggestionHistory: append([]SuggestionHistoryEntry{}, d.SuggestionHistory...),
		MoodHistory:       append([]MoodEntry{}, d.MoodHistory...),
		Tasks:             append([]Task{}, d.Tasks...),
	}
}

// GuestPrefix marks user ids minted for anonymous clients.
const GuestPrefix = "guest_"

// NewGuestID returns "guest_" followed by nine random lowercase
// alphanumerics
func NewGuestID() string {
	return GuestPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
