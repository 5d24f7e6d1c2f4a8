package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shubh-37/decluttr/internal/agents"
	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

type sentMessage struct {
	Channel  string
	ThreadTS string
	Text     string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeMessenger) BotID() string { return "UBOT" }

func (f *fakeMessenger) SendMessage(channelID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Channel: channelID, Text: message})
	return nil
}

func (f *fakeMessenger) SendThreadReply(channelID, threadTS, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Channel: channelID, ThreadTS: threadTS, Text: message})
	return nil
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage{}, f.sent...)
}

type fixture struct {
	server    *Server
	messenger *fakeMessenger
	store     database.UserStore
	service   *declutter.Service
	commands  *CommandHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := database.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "slack.db"), logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	classifier := agents.NewOrchestrator(logger, nil)
	messenger := &fakeMessenger{}
	service := declutter.NewService(store, classifier, logger)
	commands := NewCommandHandler(messenger, declutter.NewStorePersister(store), classifier, service, logger)
	handler := NewMessageHandler(messenger, service, commands, logger)

	return &fixture{
		server:    NewServer(handler, testSecret, logger),
		messenger: messenger,
		store:     store,
		service:   service,
		commands:  commands,
	}
}

func signedRequest(t *testing.T, secret, body string, ts time.Time) *http.Request {
	t.Helper()
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", stamp, body)

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Slack-Request-Timestamp", stamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func (f *fixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, signedRequest(t, testSecret, body, time.Now()))
	f.server.Wait()
	return rec
}

func callback(inner string) string {
	return `{"token":"x","team_id":"T1","api_app_id":"A1","type":"event_callback","event_id":"Ev1","event_time":1700000000,"event":` + inner + `}`
}

func TestURLVerification(t *testing.T) {
	f := newFixture(t)
	body := `{"token":"x","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","type":"url_verification"}`

	rec := f.post(t, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", rec.Body.String())
}

func TestRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	body := `{"token":"x","challenge":"abc","type":"url_verification"}`

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, signedRequest(t, "wrong-secret", body, time.Now()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "abc")

	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, signedRequest(t, testSecret, body, time.Now().Add(-time.Hour)))
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageBecomesDump(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, callback(`{"type":"message","channel":"C1","user":"U42","text":"exam friday, call mom","ts":"1700000000.000100"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	sent := f.messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "C1", sent[0].Channel)
	assert.Equal(t, "1700000000.000100", sent[0].ThreadTS)
	assert.Contains(t, sent[0].Text, "*Other*")
	assert.Contains(t, sent[0].Text, "Mock task 1")
	assert.Contains(t, sent[0].Text, "offline fallback")

	stored, err := f.store.GetUser(context.Background(), "slack_U42")
	require.NoError(t, err)
	require.Len(t, stored.ThoughtHistory, 1)
	assert.Equal(t, "exam friday, call mom", stored.ThoughtHistory[0].Text)
}

func TestIgnoredMessages(t *testing.T) {
	f := newFixture(t)

	for _, inner := range []string{
		`{"type":"message","channel":"C1","bot_id":"B1","text":"hi","ts":"1.1"}`,
		`{"type":"message","channel":"C1","user":"UBOT","text":"hi","ts":"1.1"}`,
		`{"type":"message","subtype":"message_changed","channel":"C1","user":"U1","text":"hi","ts":"1.1"}`,
		`{"type":"message","channel":"C1","user":"U1","text":"   ","ts":"1.1"}`,
		`{"type":"message","channel":"C1","user":"U1","text":"reply","ts":"1.2","thread_ts":"1.1"}`,
		`{"type":"message","channel":"C1","user":"U1","text":"<@UBOT> tasks","ts":"1.1"}`,
	} {
		rec := f.post(t, callback(inner))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, f.messenger.messages())

	n, err := f.store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetriesAreAcknowledged(t *testing.T) {
	f := newFixture(t)
	req := signedRequest(t, testSecret, callback(`{"type":"message","channel":"C1","user":"U1","text":"hi","ts":"1.1"}`), time.Now())
	req.Header.Set("X-Slack-Retry-Num", "1")
	req.Header.Set("X-Slack-Retry-Reason", "http_timeout")

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	f.server.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.messenger.messages())
}

func mention(text string) string {
	return callback(`{"type":"app_mention","channel":"C1","user":"U7","text":"<@UBOT> ` + text + `","ts":"1.1"}`)
}

func TestMentionCommands(t *testing.T) {
	f := newFixture(t)

	f.post(t, mention("tasks"))
	f.post(t, mention("done 2"))
	f.post(t, mention("mood 4"))
	f.post(t, mention("mood 9"))
	f.post(t, mention("history"))
	f.post(t, mention("help"))

	sent := f.messenger.messages()
	require.Len(t, sent, 6)
	assert.Contains(t, sent[0].Text, "1. ☐ Prepare presentation")
	assert.Equal(t, "✅ Done: Wish mom a happy birthday", sent[1].Text)
	assert.Contains(t, sent[2].Text, "Great")
	assert.Contains(t, sent[3].Text, "0 to 4")
	assert.Contains(t, sent[4].Text, "No thought dumps yet")
	assert.Contains(t, sent[5].Text, "Commands")

	stored, err := f.store.GetUser(context.Background(), "slack_U7")
	require.NoError(t, err)
	assert.True(t, stored.Tasks[1].Done)
	require.Len(t, stored.MoodHistory, 1)
	assert.Equal(t, 4, stored.MoodHistory[0].Mood)
}

func TestMentionWithoutCommandIsDump(t *testing.T) {
	f := newFixture(t)

	f.post(t, mention("renew passport before june"))

	sent := f.messenger.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "renew passport before june")

	stored, err := f.store.GetUser(context.Background(), "slack_U7")
	require.NoError(t, err)
	assert.Equal(t, "renew passport before june", stored.ThoughtHistory[0].Text)
}

type failingDumper struct{ err error }

func (d failingDumper) Dump(ctx context.Context, userID, text string) (declutter.Outcome, error) {
	return declutter.Outcome{}, d.err
}

func TestDumpFailureReplies(t *testing.T) {
	logger := zaptest.NewLogger(t)
	messenger := &fakeMessenger{}
	h := NewMessageHandler(messenger, failingDumper{err: declutter.ErrSubmissionInFlight}, nil, logger)

	require.NoError(t, h.dump(context.Background(), "C1", "1.1", "U1", "x"))
	h.dumper = failingDumper{err: errors.New("db down")}
	require.NoError(t, h.dump(context.Background(), "C1", "1.1", "U1", "x"))

	sent := messenger.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Text, "Still working")
	assert.Contains(t, sent[1].Text, "Couldn't process")
}

func TestSummarize(t *testing.T) {
	out := declutter.Outcome{
		Result: models.ClassificationResult{
			Kind:        models.ResultValid,
			Categories:  models.CategoryMap{models.CategoryAcademic: {"exam friday"}},
			Tasks:       []string{"review notes"},
			Suggestions: models.SuggestionMap{models.CategoryAcademic: {"exam friday → review notes"}},
		},
		Saved: false,
	}

	text := summarize(out)
	assert.Contains(t, text, "*Academic*\n• exam friday")
	assert.Contains(t, text, "💡 _exam friday → review notes_")
	assert.Contains(t, text, "☐ review notes")
	assert.Contains(t, text, "Couldn't save")
	assert.NotContains(t, text, "offline fallback")
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("a", 79) + "→ review notes"
	got := preview(text, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 79)+"→...", got)
	assert.Equal(t, "short → fine", preview("short → fine", 80))
}

func TestHistoryPreviewIsValidUTF8(t *testing.T) {
	f := newFixture(t)
	text := strings.Repeat("a", 79) + "→ review notes before friday"
	_, err := f.service.Dump(context.Background(), "slack_U9", text)
	require.NoError(t, err)

	require.NoError(t, f.commands.HandleHistory(context.Background(), "C1", "slack_U9"))
	sent := f.messenger.messages()
	require.Len(t, sent, 1)
	assert.True(t, utf8.ValidString(sent[0].Text))
	assert.Contains(t, sent[0].Text, strings.Repeat("a", 79)+"→...")
}

func TestCommandWaitsForUserLock(t *testing.T) {
	f := newFixture(t)
	unlock := f.service.LockUser("slack_U5")

	done := make(chan error, 1)
	go func() {
		done <- f.commands.HandleMood(context.Background(), "C1", "slack_U5", []string{"2"})
	}()

	select {
	case <-done:
		t.Fatal("mood command ran while the user was locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	require.NoError(t, <-done)
	stored, err := f.store.GetUser(context.Background(), "slack_U5")
	require.NoError(t, err)
	assert.Len(t, stored.MoodHistory, 1)
}
