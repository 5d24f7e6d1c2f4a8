package models

import "time"

// MoodLevel is one step on the five-point mood scale.
type MoodLevel struct {
	Label string
	Icon  string
}

// MoodLevels is ordered from worst to best; a MoodEntry indexes into it.
var MoodLevels = []MoodLevel{
	{Label: "Sad", Icon: "😞"},
	{Label: "Meh", Icon: "😐"},
	{Label: "Okay", Icon: "🙂"},
	{Label: "Good", Icon: "😊"},
	{Label: "Great", Icon: "😁"},
}

// MoodEntry is one mood check-in.
type MoodEntry struct {
	Mood int       `json:"mood"`
	Date time.Time `json:"date"`
}

// ValidMood reports whether idx is a position in MoodLevels
func ValidMood(idx int) bool {
	return idx >= 0 && idx < len(MoodLevels)
}

// Level returns the labelled level for the entry, or a zero MoodLevel when
// the stored index is out of range.
func (m MoodEntry) Level() MoodLevel {
	if !ValidMood(m.Mood) {
		return MoodLevel{}
	}
	return MoodLevels[m.Mood]
}
