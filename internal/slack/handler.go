package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

// UserPrefix namespaces Slack users in the record store.
const UserPrefix = "slack_"

// Dumper runs one thought dump for a user.
type Dumper interface {
	Dump(ctx context.Context, userID, text string) (declutter.Outcome, error)
}

// MessageHandler treats plain channel messages as thought dumps and
// mentions as commands.
type MessageHandler struct {
	messenger Messenger
	dumper    Dumper
	commands  *CommandHandler
	logger    *zap.Logger
}

func NewMessageHandler(messenger Messenger, dumper Dumper, commands *CommandHandler, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messenger: messenger,
		dumper:    dumper,
		commands:  commands,
		logger:    logger,
	}
}

func recordID(slackUser string) string {
	return UserPrefix + slackUser
}

func (h *MessageHandler) HandleMessage(ctx context.Context, event *slackevents.MessageEvent) error {
	if event.BotID != "" {
		return nil
	}

	if event.User == "" || event.User == h.messenger.BotID() {
		return nil
	}

	if event.SubType != "" {
		return nil
	}

	if strings.TrimSpace(event.Text) == "" {
		return nil
	}

	if event.ThreadTimeStamp != "" && event.ThreadTimeStamp != event.TimeStamp {
		return nil
	}

	// mentions arrive again as app_mention events
	if strings.HasPrefix(strings.TrimSpace(event.Text), "<@") {
		return nil
	}

	return h.dump(ctx, event.Channel, event.TimeStamp, event.User, event.Text)
}

func (h *MessageHandler) HandleAppMention(ctx context.Context, event *slackevents.AppMentionEvent) error {
	text := strings.TrimSpace(strings.Replace(event.Text, "<@"+h.messenger.BotID()+">", "", 1))
	userID := recordID(event.User)

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return h.sendHelpMessage(event.Channel)
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "help":
		return h.sendHelpMessage(event.Channel)
	case "tasks":
		return h.commands.HandleTasks(ctx, event.Channel, userID)
	case "done":
		return h.commands.HandleDone(ctx, event.Channel, userID, args)
	case "mood":
		return h.commands.HandleMood(ctx, event.Channel, userID, args)
	case "history":
		return h.commands.HandleHistory(ctx, event.Channel, userID)
	}

	return h.dump(ctx, event.Channel, event.TimeStamp, event.User, text)
}

func (h *MessageHandler) dump(ctx context.Context, channelID, ts, slackUser, text string) error {
	userID := recordID(slackUser)

	out, err := h.dumper.Dump(ctx, userID, text)
	switch {
	case errors.Is(err, declutter.ErrEmptyThought):
		return nil
	case errors.Is(err, declutter.ErrSubmissionInFlight):
		return h.messenger.SendThreadReply(channelID, ts, "⏳ Still working on your last dump, try again in a moment.")
	case err != nil:
		h.logger.Error("Failed to process thought dump", zap.String("user_id", userID), zap.Error(err))
		return h.messenger.SendThreadReply(channelID, ts, "❌ Couldn't process that one. Please try again.")
	}

	return h.messenger.SendThreadReply(channelID, ts, summarize(out))
}

// summarize renders a dump outcome as Slack mrkdwn
func summarize(out declutter.Outcome) string {
	var b strings.Builder
	b.WriteString("🧠 *Decluttered!*\n")

	for _, category := range models.Categories {
		thoughts := out.Result.Categories[category]
		if len(thoughts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n*%s*\n", category)
		for _, thought := range thoughts {
			fmt.Fprintf(&b, "• %s\n", thought)
		}
		for _, suggestion := range out.Result.Suggestions[category] {
			fmt.Fprintf(&b, "  💡 _%s_\n", suggestion)
		}
	}

	if len(out.Result.Tasks) > 0 {
		b.WriteString("\n*New tasks*\n")
		for _, task := range out.Result.Tasks {
			fmt.Fprintf(&b, "☐ %s\n", task)
		}
	}

	switch out.Result.Kind {
	case models.ResultStub:
		b.WriteString("\n_Providers unavailable, used the offline fallback._")
	case models.ResultEmpty:
		b.WriteString("\n_I couldn't make sense of the reply this time._")
	}
	if !out.Saved {
		b.WriteString("\n⚠️ _Couldn't save this dump._")
	}
	return b.String()
}

func (h *MessageHandler) sendHelpMessage(channelID string) error {
	helpText := `*decluttr*

Send me whatever is on your mind and I'll sort it into categories, tasks and suggestions.

*Commands:*
- @decluttr tasks - List your tasks
- @decluttr done [n] - Toggle task n
- @decluttr mood [0-4] - Log how you feel ` + moodScale() + `
- @decluttr history - Recent thought dumps
- @decluttr help - Show this help

*Categories:*
Academic, Project, Emotional, Social, Personal, Other`

	return h.messenger.SendMessage(channelID, helpText)
}
