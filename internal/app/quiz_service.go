package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/domain"
	"weapon-quiz-service/internal/selector"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CatalogRepository serves normalized quiz items (from cache/backing source).
type CatalogRepository interface {
	Items(ctx context.Context, limit int) ([]domain.Item, error)
}

// Options sizes the catalog request and the session pool.
type Options struct {
	CatalogLimit int
	PoolSize     int
}

const (
	DefaultCatalogLimit = 100
	DefaultPoolSize     = 25
)

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions SessionRepository
	catalog  CatalogRepository
	opts     Options
	log      *zap.Logger

	now   func() time.Time
	newID func() string

	rndMu sync.Mutex
	rnd   selector.Rand
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithRand fixes the randomness used for item selection.
func WithRand(rnd selector.Rand) ServiceOption {
	return func(s *QuizService) { s.rnd = rnd }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator replaces the UUID session ids.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(store SessionRepository, catalog CatalogRepository, opts Options, log *zap.Logger, options ...ServiceOption) *QuizService {
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = DefaultCatalogLimit
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &QuizService{
		sessions: store,
		catalog:  catalog,
		opts:     opts,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Start loads the catalog, selects a pool and registers a new session.
func (s *QuizService) Start(ctx context.Context) (*Session, error) {
	items, err := s.catalog.Items(ctx, s.opts.CatalogLimit)
	if err != nil {
		s.log.Warn("catalog load failed", zap.Error(err))
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.rndMu.Lock()
	pool := selector.Select(items, s.opts.PoolSize, s.rnd)
	s.rndMu.Unlock()

	session := NewSessionWithClock(s.newID(), pool, s.now)
	s.sessions.Save(session)
	s.log.Info("session started",
		zap.String("session_id", session.ID()),
		zap.Int("candidates", len(items)),
		zap.Int("pool", len(pool)),
	)
	return session, nil
}

// Restart starts a fresh session and then discards the old one. If the new
// session cannot be built the old one stays live so the caller can retry.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.Start(ctx)
	if err != nil {
		return nil, err
	}
	s.sessions.Delete(sessionID)
	return session, nil
}

// Abandon drops a session without computing results.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// Session looks up a live session.
func (s *QuizService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// CurrentItem returns the item awaiting an answer in the session.
func (s *QuizService) CurrentItem(_ context.Context, sessionID string) (domain.Item, domain.Progress, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.Item{}, domain.Progress{}, err
	}
	item, err := session.CurrentItem()
	return item, session.Progress(), err
}

// SubmitGuess validates a single answer for the current item.
func (s *QuizService) SubmitGuess(ctx context.Context, sessionID, answer string) (domain.GuessResult, error) {
	return s.SubmitGuesses(ctx, sessionID, []string{answer})
}

// SubmitGuesses validates several answers for the current item and advances once.
func (s *QuizService) SubmitGuesses(_ context.Context, sessionID string, answers []string) (domain.GuessResult, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.GuessResult{}, err
	}
	item, correct, err := session.submit(answers)
	if err != nil {
		return domain.GuessResult{}, err
	}
	s.sessions.Save(session)

	progress := session.Progress()
	s.log.Debug("guess recorded",
		zap.String("session_id", sessionID),
		zap.String("item_id", item.ID),
		zap.Bools("correct", correct),
		zap.Int("cursor", progress.Cursor),
	)
	return domain.GuessResult{ItemID: item.ID, Correct: correct, Progress: progress}, nil
}

// Results returns the summary of a finished session.
func (s *QuizService) Results(_ context.Context, sessionID string) (domain.Results, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.Results{}, err
	}
	return session.Results()
}
