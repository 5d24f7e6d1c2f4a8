package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shubh-37/decluttr/internal/models"
)

type classificationPayload struct {
	Categories  map[string][]string `json:"categories"`
	Tasks       []string            `json:"tasks"`
	Suggestions map[string][]string `json:"suggestions"`
}

// ParsePayload turns a provider's reply text into a result. Replies that
// are not a JSON object of the expected shape, or that name a category
// outside the taxonomy, yield the empty result together with the reason.
func ParsePayload(source, text string) (models.ClassificationResult, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return models.EmptyResult(source), fmt.Errorf("no JSON object in reply")
	}

	var p classificationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.EmptyResult(source), fmt.Errorf("invalid payload: %w", err)
	}
	if p.Categories == nil {
		return models.EmptyResult(source), fmt.Errorf("payload has no categories")
	}

	result := models.ClassificationResult{
		Kind:        models.ResultValid,
		Source:      source,
		Categories:  models.CategoryMap{},
		Tasks:       []string{},
		Suggestions: models.SuggestionMap{},
	}

	for name, thoughts := range p.Categories {
		cat := models.Category(name)
		if !cat.Valid() {
			return models.EmptyResult(source), fmt.Errorf("unknown category %q", name)
		}
		kept := nonBlank(thoughts)
		if len(kept) == 0 {
			continue
		}
		result.Categories[cat] = kept
	}

	for name, lines := range p.Suggestions {
		cat := models.Category(name)
		if !cat.Valid() {
			return models.EmptyResult(source), fmt.Errorf("unknown suggestion category %q", name)
		}
		if _, ok := result.Categories[cat]; !ok {
			continue
		}
		result.Suggestions[cat] = nonBlank(lines)
	}
	// every category with thoughts gets a suggestion entry, even if empty
	for cat := range result.Categories {
		if _, ok := result.Suggestions[cat]; !ok {
			result.Suggestions[cat] = []string{}
		}
	}

	result.Tasks = nonBlank(p.Tasks)
	return result, nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// extractJSONObject strips markdown fences and any prose around the
// outermost braces.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
