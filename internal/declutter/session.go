package declutter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

// Classifier turns a thought dump into a result. It must not fail; the
// agents.Orchestrator is the production implementation.
type Classifier interface {
	Classify(ctx context.Context, rawText string) models.ClassificationResult
}

// Persister loads and saves one user's data. Unknown users load as empty
// data without error.
type Persister interface {
	Load(ctx context.Context, userID string) (models.UserData, error)
	Save(ctx context.Context, userID string, data models.UserData) (models.UserData, error)
}

// Session is the client-side state for one user id.
//
// Every change to tasks, moods or histories is pushed to the Persister
// once the session has been loaded. Push failures are logged and returned
// wrapped in ErrSyncFailed but never retried; the in-memory state stays
// authoritative until the next successful save.
type Session struct {
	userID     string
	classifier Classifier
	persister  Persister
	logger     *zap.Logger
	now        func() time.Time

	mu     sync.Mutex
	state  State
	loaded bool

	// saveMu keeps saves in order; each save pushes the latest state
	saveMu sync.Mutex

	submitting atomic.Bool
}

func NewSession(userID string, classifier Classifier, persister Persister, logger *zap.Logger) *Session {
	return &Session{
		userID:     userID,
		classifier: classifier,
		persister:  persister,
		logger:     logger.With(zap.String("user_id", userID)),
		now:        time.Now,
		state:      State{UserData: *emptyUserData()},
	}
}

func emptyUserData() *models.UserData {
	d := &models.UserData{}
	d.Normalize()
	return d
}

func (s *Session) UserID() string { return s.userID }

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Load replaces the state with the stored data. Users without stored
// tasks get models.DefaultTasks. When loading fails the defaults are used
// as well and the error is returned for reporting; the session is usable
// either way.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.persister.Load(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true

	if err != nil {
		s.logger.Error("Load error, using default tasks", zap.Error(err))
		s.state.UserData = *emptyUserData()
		s.state.Tasks = models.DefaultTasks()
		return fmt.Errorf("failed to load user data: %w", err)
	}

	data.Normalize()
	if len(data.Tasks) == 0 {
		data.Tasks = models.DefaultTasks()
	}
	s.state.UserData = data
	s.logger.Debug("Loaded user data",
		zap.Int("tasks", len(data.Tasks)),
		zap.Int("thoughts", len(data.ThoughtHistory)),
		zap.Int("moods", len(data.MoodHistory)))
	return nil
}

// SetDraft replaces the input buffer
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.state.Draft = text
	s.mu.Unlock()
}

// Submit classifies text and merges the result. Blank text returns
// ErrEmptyThought and an overlapping call returns ErrSubmissionInFlight,
// both without touching the state. A sync failure is returned alongside
// the valid result.
func (s *Session) Submit(ctx context.Context, text string) (models.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.ClassificationResult{}, ErrEmptyThought
	}
	if !s.submitting.CompareAndSwap(false, true) {
		return models.ClassificationResult{}, ErrSubmissionInFlight
	}
	defer s.submitting.Store(false)

	result := s.classifier.Classify(ctx, text)

	s.mu.Lock()
	s.state = Apply(s.state, text, result, s.now())
	s.mu.Unlock()

	return result, s.sync(ctx)
}

// AddTask appends an open task. Blank text is ignored.
func (s *Session) AddTask(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.mutate(ctx, func(st *State) error {
		st.Tasks = append(st.Tasks, models.NewTask(text))
		return nil
	})
}

// ToggleTask flips the done flag of task i and reports the new value
func (s *Session) ToggleTask(ctx context.Context, i int) (bool, error) {
	var done bool
	err := s.mutate(ctx, func(st *State) error {
		if i < 0 || i >= len(st.Tasks) {
			return ErrIndexOutOfRange
		}
		st.Tasks[i].Done = !st.Tasks[i].Done
		done = st.Tasks[i].Done
		return nil
	})
	return done, err
}

func (s *Session) DeleteTask(ctx context.Context, i int) error {
	return s.mutate(ctx, func(st *State) error {
		var err error
		st.Tasks, err = removeAt(st.Tasks, i)
		return err
	})
}

// SelectMood logs a mood check-in at the current time
func (s *Session) SelectMood(ctx context.Context, mood int) error {
	if !models.ValidMood(mood) {
		return ErrInvalidMood
	}
	return s.mutate(ctx, func(st *State) error {
		st.MoodHistory = append(st.MoodHistory, models.MoodEntry{Mood: mood, Date: s.now().UTC()})
		return nil
	})
}

func (s *Session) DeleteMood(ctx context.Context, i int) error {
	return s.mutate(ctx, func(st *State) error {
		var err error
		st.MoodHistory, err = removeAt(st.MoodHistory, i)
		return err
	})
}

func (s *Session) DeleteThought(ctx context.Context, i int) error {
	return s.mutate(ctx, func(st *State) error {
		var err error
		st.ThoughtHistory, err = removeAt(st.ThoughtHistory, i)
		return err
	})
}

func (s *Session) DeleteSuggestion(ctx context.Context, i int) error {
	return s.mutate(ctx, func(st *State) error {
		var err error
		st.SuggestionHistory, err = removeAt(st.SuggestionHistory, i)
		return err
	})
}

// mutate applies fn to a copy of the state, commits it when fn succeeds
// and then syncs.
func (s *Session) mutate(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	return s.sync(ctx)
}

// sync saves the state as it is once earlier saves have finished, so a
// slow save never overwrites a newer one.
func (s *Session) sync(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	loaded := s.loaded
	data := s.state.UserData.Clone()
	s.mu.Unlock()
	if !loaded {
		// nothing is saved before the first load, so stored data is never
		// overwritten by an empty session
		return nil
	}

	if _, err := s.persister.Save(ctx, s.userID, data); err != nil {
		s.logger.Error("Save error", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	s.logger.Debug("Saved user data", zap.Int("tasks", len(data.Tasks)))
	return nil
}

func removeAt[T any](items []T, i int) ([]T, error) {
	if i < 0 || i >= len(items) {
		return items, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}
