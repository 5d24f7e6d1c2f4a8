package slack

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

// UserLocker serializes read-modify-write cycles on one user's record.
// declutter.Service implements it.
type UserLocker interface {
	LockUser(userID string) func()
}

// CommandHandler answers the mention commands that read or change a Slack
// user's stored record.
type CommandHandler struct {
	messenger  Messenger
	persister  declutter.Persister
	classifier declutter.Classifier
	locker     UserLocker
	logger     *zap.Logger
}

func NewCommandHandler(
	messenger Messenger,
	persister declutter.Persister,
	classifier declutter.Classifier,
	locker UserLocker,
	logger *zap.Logger,
) *CommandHandler {
	return &CommandHandler{
		messenger:  messenger,
		persister:  persister,
		classifier: classifier,
		locker:     locker,
		logger:     logger,
	}
}

// session loads userID's record with the user locked. The caller must
// call unlock once its change has been saved.
func (h *CommandHandler) session(ctx context.Context, userID string) (s *declutter.Session, unlock func(), err error) {
	unlock = h.locker.LockUser(userID)
	s = declutter.NewSession(userID, h.classifier, h.persister, h.logger)
	if err = s.Load(ctx); err != nil {
		unlock()
		return nil, nil, err
	}
	return s, unlock, nil
}

// HandleTasks lists the user's tasks
func (h *CommandHandler) HandleTasks(ctx context.Context, channelID, userID string) error {
	s, unlock, err := h.session(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load tasks", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to load your tasks")
	}
	unlock()
	return h.messenger.SendMessage(channelID, formatTasks(s.Snapshot().Tasks))
}

// HandleDone toggles task n (1-based)
func (h *CommandHandler) HandleDone(ctx context.Context, channelID, userID string, args []string) error {
	n, err := parseIndex(args)
	if err != nil {
		return h.messenger.SendMessage(channelID, "Usage: `done [task number]`")
	}

	s, unlock, err := h.session(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load tasks", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to load your tasks")
	}
	defer unlock()

	done, err := s.ToggleTask(ctx, n-1)
	switch {
	case errors.Is(err, declutter.ErrIndexOutOfRange):
		return h.messenger.SendMessage(channelID, fmt.Sprintf("❌ There is no task %d", n))
	case err != nil:
		h.logger.Error("Failed to save task", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to save your tasks")
	}

	task := s.Snapshot().Tasks[n-1]
	if done {
		return h.messenger.SendMessage(channelID, fmt.Sprintf("✅ Done: %s", task.Text))
	}
	return h.messenger.SendMessage(channelID, fmt.Sprintf("↩️ Reopened: %s", task.Text))
}

// HandleMood logs a mood from 0 (Sad) to 4 (Great)
func (h *CommandHandler) HandleMood(ctx context.Context, channelID, userID string, args []string) error {
	if len(args) == 0 {
		return h.messenger.SendMessage(channelID, "Usage: `mood [0-4]` "+moodScale())
	}
	mood, err := strconv.Atoi(args[0])
	if err != nil || !models.ValidMood(mood) {
		return h.messenger.SendMessage(channelID, "❌ Mood must be a number from 0 to 4 "+moodScale())
	}

	s, unlock, err := h.session(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load moods", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to load your mood log")
	}
	defer unlock()
	if err := s.SelectMood(ctx, mood); err != nil {
		h.logger.Error("Failed to save mood", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to save your mood")
	}

	level := models.MoodLevels[mood]
	return h.messenger.SendMessage(channelID, fmt.Sprintf("%s Logged mood: *%s*", level.Icon, level.Label))
}

// HandleHistory shows the most recent thought dumps
func (h *CommandHandler) HandleHistory(ctx context.Context, channelID, userID string) error {
	s, unlock, err := h.session(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load history", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendMessage(channelID, "❌ Failed to load your history")
	}
	unlock()

	history := s.Snapshot().ThoughtHistory
	if len(history) == 0 {
		return h.messenger.SendMessage(channelID, "📭 No thought dumps yet. Just send me what's on your mind!")
	}

	message := "🗂️ *Recent thought dumps*\n\n"
	start := 0
	if len(history) > 5 {
		start = len(history) - 5
	}
	for i := len(history) - 1; i >= start; i-- {
		entry := history[i]
		message += fmt.Sprintf("*%s*\n%s\n\n", entry.Date.Format("Jan 02 at 3:04 PM"), preview(entry.Text, 80))
	}
	message += fmt.Sprintf("_Total: %d dumps_", len(history))

	return h.messenger.SendMessage(channelID, message)
}

func formatTasks(tasks []models.Task) string {
	if len(tasks) == 0 {
		return "📭 No tasks yet."
	}
	var b strings.Builder
	b.WriteString("📝 *Your tasks*\n\n")
	for i, task := range tasks {
		mark := "☐"
		if task.Done {
			mark = "☑"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, mark, task.Text)
	}
	return b.String()
}

// preview shortens text to at most n runes plus an ellipsis
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func moodScale() string {
	parts := make([]string, len(models.MoodLevels))
	for i, level := range models.MoodLevels {
		parts[i] = fmt.Sprintf("%d=%s", i, level.Icon)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func parseIndex(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing index")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("index must be positive")
	}
	return n, nil
}
