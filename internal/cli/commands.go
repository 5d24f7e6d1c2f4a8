package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDumpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <text...>",
		Short: "Classify a thought dump and add its tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			app.session.SetDraft(text)

			result, err := app.session.Submit(cmd.Context(), text)
			if result.Kind != "" {
				renderResult(app.out, result)
			}
			return app.report(err)
		},
	}
}

func newTasksCommand(app *App) *cobra.Command {
	tasks := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderTasks(app.out, app.session.Snapshot().Tasks)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.AddTask(cmd.Context(), strings.Join(args, " ")); err != nil {
				return app.report(err)
			}
			renderTasks(app.out, app.session.Snapshot().Tasks)
			return nil
		},
	}

	done := &cobra.Command{
		Use:     "done <n>",
		Short:   "Toggle task n",
		Aliases: []string{"toggle"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			if _, err := app.session.ToggleTask(cmd.Context(), i); err != nil {
				return app.report(err)
			}
			renderTasks(app.out, app.session.Snapshot().Tasks)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <n>",
		Short:   "Delete task n",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			if err := app.session.DeleteTask(cmd.Context(), i); err != nil {
				return app.report(err)
			}
			renderTasks(app.out, app.session.Snapshot().Tasks)
			return nil
		},
	}

	tasks.AddCommand(add, done, rm)
	return tasks
}

func newMoodCommand(app *App) *cobra.Command {
	mood := &cobra.Command{
		Use:   "mood [0-4]",
		Short: "Log a mood, or show the mood log",
		Long:  "Log how you feel: " + moodScale() + ".\nWithout an argument the mood log is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				level, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("mood must be a number: %s", moodScale())
				}
				if err := app.session.SelectMood(cmd.Context(), level); err != nil {
					return app.report(err)
				}
			}
			renderMoods(app.out, app.session.Snapshot().MoodHistory)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <n>",
		Short: "Delete mood check-in n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			if err := app.session.DeleteMood(cmd.Context(), i); err != nil {
				return app.report(err)
			}
			renderMoods(app.out, app.session.Snapshot().MoodHistory)
			return nil
		},
	}

	mood.AddCommand(rm)
	return mood
}

func newHistoryCommand(app *App) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Show thought and suggestion history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderHistory(app.out, app.session.Snapshot())
			return nil
		},
	}

	rm := &cobra.Command{
		Use:       "rm <thought|suggestion> <n>",
		Short:     "Delete history entry n",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"thought", "suggestion"},
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			switch args[0] {
			case "thought":
				err = app.session.DeleteThought(cmd.Context(), i)
			case "suggestion":
				err = app.session.DeleteSuggestion(cmd.Context(), i)
			default:
				return fmt.Errorf("unknown history kind %q, want thought or suggestion", args[0])
			}
			if err != nil {
				return app.report(err)
			}
			renderHistory(app.out, app.session.Snapshot())
			return nil
		},
	}

	history.AddCommand(rm)
	return history
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user id and where data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(app.out, "%s %s\n", titleStyle.Render("user:"), app.session.UserID())
			fmt.Fprintf(app.out, "%s %s\n", titleStyle.Render("data:"), app.target)
			providers := "offline fallback only"
			if len(app.providers) > 0 {
				providers = strings.Join(app.providers, " → ")
			}
			fmt.Fprintf(app.out, "%s %s\n", titleStyle.Render("providers:"), providers)
			return nil
		},
	}
}

// parsePosition turns a 1-based position into an index
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q, want a number from 1", arg)
	}
	return n - 1, nil
}
