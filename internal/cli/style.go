package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	categoryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	suggestionStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	doneStyle       = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	boxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

const dateLayout = "Jan 02 15:04"

func renderResult(w io.Writer, result models.ClassificationResult) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Decluttered"))
	b.WriteString(mutedStyle.Render(" via " + result.Source))
	b.WriteString("\n")

	for _, category := range models.Categories {
		thoughts := result.Categories[category]
		if len(thoughts) == 0 {
			continue
		}
		b.WriteString("\n" + categoryStyle.Render(string(category)) + "\n")
		for _, thought := range thoughts {
			b.WriteString("  • " + thought + "\n")
		}
		for _, suggestion := range result.Suggestions[category] {
			b.WriteString("    " + suggestionStyle.Render(suggestion) + "\n")
		}
	}

	if len(result.Tasks) > 0 {
		b.WriteString("\n" + categoryStyle.Render("New tasks") + "\n")
		for _, task := range result.Tasks {
			b.WriteString("  [ ] " + task + "\n")
		}
	}

	switch result.Kind {
	case models.ResultStub:
		b.WriteString("\n" + warnStyle.Render("Providers unavailable, used the offline fallback."))
	case models.ResultEmpty:
		b.WriteString("\n" + warnStyle.Render("The provider reply could not be read."))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func renderTasks(w io.Writer, tasks []models.Task) {
	fmt.Fprintln(w, titleStyle.Render("Tasks"))
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no tasks"))
		return
	}
	for i, task := range tasks {
		if task.Done {
			fmt.Fprintf(w, "%3d. [x] %s\n", i+1, doneStyle.Render(task.Text))
			continue
		}
		fmt.Fprintf(w, "%3d. [ ] %s\n", i+1, task.Text)
	}
}

func renderMoods(w io.Writer, moods []models.MoodEntry) {
	fmt.Fprintln(w, titleStyle.Render("Mood log"))
	if len(moods) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no check-ins"))
		return
	}
	for i, entry := range moods {
		level := entry.Level()
		fmt.Fprintf(w, "%3d. %s %s %s\n", i+1, level.Icon, level.Label, mutedStyle.Render(entry.Date.Local().Format(dateLayout)))
	}
}

func renderHistory(w io.Writer, state declutter.State) {
	fmt.Fprintln(w, titleStyle.Render("Thought history"))
	if len(state.ThoughtHistory) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no thought dumps"))
	}
	for i, entry := range state.ThoughtHistory {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, mutedStyle.Render(entry.Date.Local().Format(dateLayout)), entry.Text)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Suggestion history"))
	if len(state.SuggestionHistory) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no suggestions"))
	}
	for i, entry := range state.SuggestionHistory {
		fmt.Fprintf(w, "%3d. %s\n", i+1, mutedStyle.Render(entry.Date.Local().Format(dateLayout)))
		suggestions := entry.Suggestions()
		for _, category := range models.Categories {
			for _, s := range suggestions[category] {
				fmt.Fprintf(w, "     %s %s\n", categoryStyle.Render(string(category)+":"), suggestionStyle.Render(s))
			}
		}
	}
}

func moodScale() string {
	parts := make([]string, len(models.MoodLevels))
	for i, level := range models.MoodLevels {
		parts[i] = fmt.Sprintf("%d=%s %s", i, level.Icon, level.Label)
	}
	return strings.Join(parts, ", ")
}
