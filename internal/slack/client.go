package slack

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Messenger is the part of the Slack API the handlers use.
type Messenger interface {
	BotID() string
	SendMessage(channelID, message string) error
	SendThreadReply(channelID, threadTS, message string) error
}

type Client struct {
	api   *slack.Client
	botID string
}

// NewClient authenticates with token and remembers the bot's user id
func NewClient(token string, options ...slack.Option) (*Client, error) {
	api := slack.New(token, options...)

	authTest, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}

	return &Client{
		api:   api,
		botID: authTest.UserID,
	}, nil
}

func (c *Client) BotID() string {
	return c.botID
}

func (c *Client) SendMessage(channelID, message string) error {
	_, _, err := c.api.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
	)
	return err
}

func (c *Client) SendThreadReply(channelID, threadTS, message string) error {
	_, _, err := c.api.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionTS(threadTS),
	)
	return err
}
