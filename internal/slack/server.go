package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

const eventTimeout = 2 * time.Minute

// Server verifies and dispatches Slack Events API requests. Callback
// events are acknowledged immediately and handled in the background.
type Server struct {
	messageHandler *MessageHandler
	signingSecret  string
	logger         *zap.Logger

	wg sync.WaitGroup
}

func NewServer(messageHandler *MessageHandler, signingSecret string, logger *zap.Logger) *Server {
	logger.Info("Slack signing secret configured", zap.Int("length", len(signingSecret)))
	return &Server{
		messageHandler: messageHandler,
		signingSecret:  signingSecret,
		logger:         logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("Error reading body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Verify the request signature
	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		s.logger.Warn("Error creating secrets verifier", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, err := sv.Write(body); err != nil {
		s.logger.Error("Error writing to verifier", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := sv.Ensure(); err != nil {
		s.logger.Warn("Error verifying signature", zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.logger.Error("Error parsing event", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if eventsAPIEvent.Type == slackevents.URLVerification {
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			s.logger.Error("Error unmarshaling challenge", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.logger.Info("Responding to URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))
		return
	}

	// Slack redelivers events it thinks timed out; the first delivery is
	// already being handled.
	if r.Header.Get("X-Slack-Retry-Num") != "" {
		s.logger.Debug("Ignoring Slack retry", zap.String("reason", r.Header.Get("X-Slack-Retry-Reason")))
		w.WriteHeader(http.StatusOK)
		return
	}

	if eventsAPIEvent.Type == slackevents.CallbackEvent {
		s.dispatch(eventsAPIEvent.InnerEvent)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(innerEvent slackevents.EventsAPIInnerEvent) {
	s.logger.Debug("Inner event", zap.String("type", innerEvent.Type))

	var handle func(ctx context.Context) error
	switch ev := innerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		handle = func(ctx context.Context) error { return s.messageHandler.HandleMessage(ctx, ev) }
	case *slackevents.AppMentionEvent:
		handle = func(ctx context.Context) error { return s.messageHandler.HandleAppMention(ctx, ev) }
	default:
		s.logger.Debug("Unsupported event type", zap.String("type", innerEvent.Type))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := handle(ctx); err != nil {
			s.logger.Error("Error handling event", zap.String("type", innerEvent.Type), zap.Error(err))
		}
	}()
}

// Wait blocks until all background event handlers have returned
func (s *Server) Wait() {
	s.wg.Wait()
}
