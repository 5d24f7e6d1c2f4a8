package declutter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/models"
)

// RecordStore is the part of database.UserStore the service needs.
type RecordStore interface {
	GetUser(ctx context.Context, userID string) (*models.UserRecord, error)
	UpsertUser(ctx context.Context, userID string, data models.UserData) (*models.UserRecord, error)
}

// Outcome is the result of one server-side dump.
type Outcome struct {
	Result models.ClassificationResult `json:"result"`
	State  State                       `json:"state"`
	Saved  bool                        `json:"saved"`
}

// Service runs thought dumps against stored user records. At most one
// dump per user id is processed at a time.
type Service struct {
	store      RecordStore
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time

	inflight sync.Map
	locks    userLocks
}

func NewService(store RecordStore, classifier Classifier, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// LockUser blocks until no other read-modify-write of userID's record is
// running through this service and returns the unlock func. Callers that
// load and save a record outside Dump hold it for the whole cycle.
func (s *Service) LockUser(userID string) func() {
	return s.locks.lock(userID)
}

// Dump classifies text, then loads the user's record, merges and saves
// under the user's lock. A load failure is returned as an error. A save
// failure is logged and reported through Outcome.Saved; the
// classification is still returned.
func (s *Service) Dump(ctx context.Context, userID, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyThought
	}
	if _, busy := s.inflight.LoadOrStore(userID, struct{}{}); busy {
		return Outcome{}, ErrSubmissionInFlight
	}
	defer s.inflight.Delete(userID)

	result := s.classifier.Classify(ctx, text)

	unlock := s.LockUser(userID)
	defer unlock()

	rec, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		rec = models.NewUserRecord(userID)
	} else if err != nil {
		return Outcome{}, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	state := Apply(State{UserData: rec.UserData}, text, result, s.now())

	out := Outcome{Result: result, State: state}
	if _, err := s.store.UpsertUser(ctx, userID, state.UserData); err != nil {
		s.logger.Error("Failed to save dump",
			zap.String("user_id", userID),
			zap.Error(err))
		return out, nil
	}
	out.Saved = true

	s.logger.Info("Thought dump stored",
		zap.String("user_id", userID),
		zap.String("source", result.Source),
		zap.Int("new_tasks", len(result.Tasks)))
	return out, nil
}

// StorePersister lets a Session work directly against a RecordStore.
type StorePersister struct {
	store RecordStore
}

func NewStorePersister(store RecordStore) *StorePersister {
	return &StorePersister{store: store}
}

func (p *StorePersister) Load(ctx context.Context, userID string) (models.UserData, error) {
	rec, err := p.store.GetUser(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		return *emptyUserData(), nil
	}
	if err != nil {
		return models.UserData{}, err
	}
	return rec.UserData, nil
}

func (p *StorePersister) Save(ctx context.Context, userID string, data models.UserData) (models.UserData, error) {
	rec, err := p.store.UpsertUser(ctx, userID, data)
	if err != nil {
		return models.UserData{}, err
	}
	return rec.UserData, nil
}
