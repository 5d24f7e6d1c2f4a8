package declutter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubh-37/decluttr/internal/agents"
	"github.com/shubh-37/decluttr/internal/models"
)

var fixedNow = time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)

func baseState() State {
	return State{
		UserData: models.UserData{
			ThoughtHistory:    []models.ThoughtEntry{{Text: "old dump", Date: fixedNow.Add(-time.Hour)}},
			SuggestionHistory: []models.SuggestionHistoryEntry{{Text: "{}", Date: fixedNow.Add(-time.Hour)}},
			MoodHistory:       []models.MoodEntry{{Mood: 2, Date: fixedNow.Add(-time.Hour)}},
			Tasks:             []models.Task{{Text: "existing", Done: true}},
		},
		Categories:  models.CategoryMap{models.CategorySocial: {"old thought"}},
		Suggestions: models.SuggestionMap{models.CategorySocial: {"old thought → old suggestion"}},
		Draft:       "finish essay, feeling anxious",
	}
}

func essayResult() models.ClassificationResult {
	return models.ClassificationResult{
		Kind:   models.ResultValid,
		Source: "openai",
		Categories: models.CategoryMap{
			models.CategoryAcademic:  {"finish essay"},
			models.CategoryEmotional: {"feeling anxious"},
		},
		Tasks: []string{"outline essay", "book a walk"},
		Suggestions: models.SuggestionMap{
			models.CategoryAcademic:  {"finish essay → outline first"},
			models.CategoryEmotional: {"feeling anxious → take a short walk"},
		},
	}
}

func TestApply(t *testing.T) {
	prev := baseState()
	raw := "finish essay, feeling anxious"

	got := Apply(prev, raw, essayResult(), fixedNow)

	want := State{
		UserData: models.UserData{
			ThoughtHistory: []models.ThoughtEntry{
				{Text: "old dump", Date: fixedNow.Add(-time.Hour)},
				{Text: raw, Date: fixedNow},
			},
			SuggestionHistory: []models.SuggestionHistoryEntry{
				{Text: "{}", Date: fixedNow.Add(-time.Hour)},
				{Text: essayResult().SuggestionsJSON(), Date: fixedNow},
			},
			MoodHistory: []models.MoodEntry{{Mood: 2, Date: fixedNow.Add(-time.Hour)}},
			Tasks: []models.Task{
				{Text: "existing", Done: true},
				{Text: "outline essay"},
				{Text: "book a walk"},
			},
		},
		Categories:  essayResult().Categories,
		Suggestions: essayResult().Suggestions,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}

	// prev is untouched
	if diff := cmp.Diff(baseState(), prev); diff != "" {
		t.Errorf("Apply() mutated its input (-want +got):\n%s", diff)
	}
}

func TestApply_BlankInputIsNoop(t *testing.T) {
	prev := baseState()
	for _, raw := range []string{"", "   ", "\n\t"} {
		got := Apply(prev, raw, essayResult(), fixedNow)
		if diff := cmp.Diff(prev, got); diff != "" {
			t.Errorf("Apply(%q) changed state:\n%s", raw, diff)
		}
	}
}

func TestApply_TwiceAppendsTasksAndReplacesCategories(t *testing.T) {
	result := essayResult()
	once := Apply(baseState(), "dump", result, fixedNow)
	twice := Apply(once, "dump", result, fixedNow.Add(time.Minute))

	assert.Len(t, once.Tasks, 1+len(result.Tasks))
	assert.Len(t, twice.Tasks, 1+2*len(result.Tasks))
	assert.Equal(t, result.Categories, twice.Categories)
	assert.Equal(t, result.Suggestions, twice.Suggestions)
	assert.Len(t, twice.ThoughtHistory, 3)
	assert.Len(t, twice.SuggestionHistory, 3)
}

func TestApply_StubSuggestionHistoryIsJSON(t *testing.T) {
	raw := "too many things"
	got := Apply(State{}, raw, agents.StubResult(raw), fixedNow)

	require.Len(t, got.SuggestionHistory, 1)
	var decoded models.SuggestionMap
	require.NoError(t, json.Unmarshal([]byte(got.SuggestionHistory[0].Text), &decoded))
	assert.Equal(t, models.SuggestionMap{
		models.CategoryOther: {raw + " → Try breaking your thoughts into categories for better clarity."},
	}, decoded)

	assert.Equal(t, []models.Task{{Text: "Mock task 1"}, {Text: "Mock task 2"}}, got.Tasks)
	assert.Equal(t, models.CategoryMap{models.CategoryOther: {raw}}, got.Categories)
}

func TestApply_ResultMapsAreCopied(t *testing.T) {
	result := essayResult()
	got := Apply(State{}, "dump", result, fixedNow)

	result.Categories[models.CategoryAcademic][0] = "changed"
	assert.Equal(t, "finish essay", got.Categories[models.CategoryAcademic][0])
}
