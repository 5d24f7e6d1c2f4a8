package models

import "time"

// ThoughtEntry is one submitted thought dump, kept verbatim in history.
type ThoughtEntry struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// NewThoughtEntry stamps a thought dump with the given time in UTC
func NewThoughtEntry(text string, at time.Time) ThoughtEntry {
	return ThoughtEntry{
		Text: text,
		Date: at.UTC(),
	}
}

// SuggestionHistoryEntry records the suggestions produced for one dump.
// Text holds the JSON form of a SuggestionMap. Entries written by older
// clients may hold a plain "<thought> → <suggestion>" string instead.
type SuggestionHistoryEntry struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}
