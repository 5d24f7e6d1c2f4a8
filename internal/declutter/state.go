// Package declutter holds the application state around the classification
// pipeline: the result merger, the client session and the server-side
// dump service.
package declutter

import (
	"strings"
	"time"

	"github.com/shubh-37/decluttr/internal/models"
)

// State is everything a client shows for one user. UserData is persisted;
// the categorization view and the input draft are not.
type State struct {
	models.UserData
	Categories  models.CategoryMap   `json:"categories"`
	Suggestions models.SuggestionMap `json:"suggestions"`
	Draft       string               `json:"draft,omitempty"`
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	return State{
		UserData:    s.UserData.Clone(),
		Categories:  cloneMap(s.Categories),
		Suggestions: models.SuggestionMap(cloneMap(models.CategoryMap(s.Suggestions))),
		Draft:       s.Draft,
	}
}

// Apply merges a classification result for rawText into prev and returns
// the new state. prev is not modified.
//
// Categories and suggestions are replaced, tasks are appended, and one
// entry is added to each history log. Blank input returns prev unchanged.
func Apply(prev State, rawText string, result models.ClassificationResult, now time.Time) State {
	if strings.TrimSpace(rawText) == "" {
		return prev
	}

	next := State{
		UserData:    prev.UserData.Clone(),
		Categories:  cloneMap(result.Categories),
		Suggestions: models.SuggestionMap(cloneMap(models.CategoryMap(result.Suggestions))),
	}
	next.Normalize()

	for _, task := range result.Tasks {
		next.Tasks = append(next.Tasks, models.NewTask(task))
	}

	entry := models.NewThoughtEntry(rawText, now)
	next.ThoughtHistory = append(next.ThoughtHistory, entry)
	next.SuggestionHistory = append(next.SuggestionHistory, models.SuggestionHistoryEntry{
		Text: result.SuggestionsJSON(),
		Date: entry.Date,
	})

	return next
}

func cloneMap(in models.CategoryMap) models.CategoryMap {
	out := make(models.CategoryMap, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}
