package models

import (
	"encoding/json"
	"strings"
)

// Category is one label of the fixed thought taxonomy.
type Category string

const (
	CategoryAcademic  Category = "Academic"
	CategoryProject   Category = "Project"
	CategoryEmotional Category = "Emotional"
	CategorySocial    Category = "Social"
	CategoryPersonal  Category = "Personal"
	CategoryOther     Category = "Other"
)

// Categories lists the taxonomy in display order.
var Categories = []Category{
	CategoryAcademic,
	CategoryProject,
	CategoryEmotional,
	CategorySocial,
	CategoryPersonal,
	CategoryOther,
}

// Valid reports whether c belongs to the taxonomy
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryMap groups thought fragments by category.
type CategoryMap map[Category][]string

// SuggestionMap holds "<thought> → <suggestion>" strings by category.
type SuggestionMap map[Category][]string

// SuggestionArrow separates a thought from its suggestion.
const SuggestionArrow = " → "

// FormatSuggestion renders a suggestion line for a thought
func FormatSuggestion(thought, suggestion string) string {
	return thought + SuggestionArrow + suggestion
}

// ResultKind tags how a ClassificationResult was produced.
type ResultKind string

const (
	// ResultValid is a provider payload that passed validation.
	ResultValid ResultKind = "valid"
	// ResultEmpty is a provider reply whose payload was unusable.
	ResultEmpty ResultKind = "empty"
	// ResultStub is the offline fallback.
	ResultStub ResultKind = "stub"
)

// ClassificationResult is the structured output of the classification
// pipeline. Categories and Suggestions always share a key set.
type ClassificationResult struct {
	Kind        ResultKind    `json:"kind"`
	Source      string        `json:"source"`
	Categories  CategoryMap   `json:"categories"`
	Tasks       []string      `json:"tasks"`
	Suggestions SuggestionMap `json:"suggestions"`
}

// EmptyResult is the valid-but-empty result used when a provider answers
// with a payload that cannot be used.
func EmptyResult(source string) ClassificationResult {
	return ClassificationResult{
		Kind:        ResultEmpty,
		Source:      source,
		Categories:  CategoryMap{},
		Tasks:       []string{},
		Suggestions: SuggestionMap{},
	}
}

// SuggestionsJSON serializes the suggestion map for the history log
func (r ClassificationResult) SuggestionsJSON() string {
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = SuggestionMap{}
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Suggestions decodes the entry's payload. Legacy plain-string entries are
// returned under CategoryOther.
func (e SuggestionHistoryEntry) Suggestions() SuggestionMap {
	text := strings.TrimSpace(e.Text)
	if text == "" || text == "null" {
		return SuggestionMap{}
	}
	var m SuggestionMap
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &m); err == nil {
			return m
		}
	}
	return SuggestionMap{CategoryOther: {e.Text}}
}
