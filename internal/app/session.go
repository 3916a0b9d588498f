package app

import (
	"math"
	"sync"
	"time"

	"weapon-quiz-service/internal/domain"
)

// Session is one playthrough over a fixed pool of items.
// The pool is fixed at creation; only guesses mutate the cursor and outcomes.
type Session struct {
	id        string
	createdAt time.Time

	mu       sync.RWMutex
	pool     []domain.Item
	cursor   int
	outcomes []domain.Outcome
}

// NewSession starts a session at the first item of pool.
func NewSession(id string, pool []domain.Item) *Session {
	return NewSessionWithClock(id, pool, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, pool []domain.Item, now func() time.Time) *Session {
	return &Session{
		id:        id,
		createdAt: now(),
		pool:      append([]domain.Item(nil), pool...),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// CurrentItem returns the item awaiting an answer.
func (s *Session) CurrentItem() (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finishedLocked() {
		return domain.Item{}, domain.ErrSessionFinished
	}
	return s.pool[s.cursor], nil
}

// SubmitGuess validates token against the current item, records the outcome
// and advances. It is not idempotent: every call records an outcome.
func (s *Session) SubmitGuess(token string) (bool, error) {
	results, err := s.SubmitGuesses([]string{token})
	if err != nil {
		return false, err
	}
	return results[0], nil
}

// SubmitGuesses validates each token independently against the current item,
// records one outcome per token and advances the cursor exactly once.
func (s *Session) SubmitGuesses(tokens []string) ([]bool, error) {
	_, results, err := s.submit(tokens)
	return results, err
}

// submit returns the answered item alongside the per-token results.
func (s *Session) submit(tokens []string) (domain.Item, []bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return domain.Item{}, nil, domain.ErrSessionFinished
	}
	if len(tokens) == 0 {
		return domain.Item{}, nil, domain.ErrEmptyGuess
	}

	item := s.pool[s.cursor]
	results := make([]bool, len(tokens))
	for i, token := range tokens {
		correct := item.Accepts(token)
		results[i] = correct
		s.outcomes = append(s.outcomes, domain.Outcome{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Guess:      token,
			WasCorrect: correct,
		})
	}
	s.cursor++
	return item, results, nil
}

// IsFinished reports whether every item in the pool has been answered.
func (s *Session) IsFinished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finishedLocked()
}

// Progress reports the cursor position within the pool.
func (s *Session) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

// Outcomes returns a copy of the outcome log in answer order.
func (s *Session) Outcomes() []domain.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Outcome(nil), s.outcomes...)
}

// Results summarizes a finished session.
func (s *Session) Results() (domain.Results, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.finishedLocked() {
		return domain.Results{}, domain.ErrSessionNotFinished
	}
	return summarize(s.outcomes), nil
}

// Snapshot captures the serializable state of the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	correct := 0
	for _, o := range s.outcomes {
		if o.WasCorrect {
			correct++
		}
	}
	return domain.SessionSnapshot{
		ID:           s.id,
		Cursor:       s.cursor,
		PoolSize:     len(s.pool),
		CorrectCount: correct,
		Answered:     len(s.outcomes),
		CreatedAt:    s.createdAt,
	}
}

func (s *Session) finishedLocked() bool {
	return s.cursor >= len(s.pool)
}

func (s *Session) progressLocked() domain.Progress {
	return domain.Progress{
		Cursor:   s.cursor,
		Total:    len(s.pool),
		Finished: s.finishedLocked(),
	}
}

func summarize(outcomes []domain.Outcome) domain.Results {
	res := domain.Results{
		Total:     len(outcomes),
		Correct:   []string{},
		Incorrect: []string{},
	}
	for _, o := range outcomes {
		if o.WasCorrect {
			res.CorrectCount++
			res.Correct = append(res.Correct, o.ItemName)
		} else {
			res.Incorrect = append(res.Incorrect, o.ItemName)
		}
	}
	if res.Total > 0 {
		pct := 100 * float64(res.CorrectCount) / float64(res.Total)
		res.Percentage = math.Round(pct*100) / 100
	}
	return res
}
