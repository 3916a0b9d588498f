package pacing

import (
	"sync"
	"time"

	"weapon-quiz-service/internal/domain"
)

// Gate is a per-player guard in front of a session: it rejects guesses
// during the cooldown after an item is shown and accepts at most one guess
// per shown item. It never touches the session itself.
type Gate struct {
	cooldown   time.Duration
	transition time.Duration
	now        func() time.Time

	mu       sync.Mutex
	cursor   int
	readyAt  time.Time
	accepted bool
}

func NewGate(cooldown, transition time.Duration) *Gate {
	return NewGateWithClock(cooldown, transition, time.Now)
}

// NewGateWithClock allows deterministic timing in tests.
func NewGateWithClock(cooldown, transition time.Duration, now func() time.Time) *Gate {
	return &Gate{
		cooldown:   cooldown,
		transition: transition,
		now:        now,
		cursor:     -1,
	}
}

// Shown marks the item at cursor as displayed and restarts the cooldown.
func (g *Gate) Shown(cursor int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor = cursor
	g.readyAt = g.now().Add(g.cooldown)
	g.accepted = false
}

// Acquire claims the single guess allowed for the item at cursor.
func (g *Gate) Acquire(cursor int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.accepted || cursor != g.cursor {
		return domain.ErrGuessPending
	}
	if g.now().Before(g.readyAt) {
		return domain.ErrGuessTooSoon
	}
	g.accepted = true
	return nil
}

// Release gives the claim back, e.g. when the guess was rejected by the engine.
func (g *Gate) Release(cursor int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cursor == g.cursor {
		g.accepted = false
	}
}

// Transition is how long to wait after a guess before showing the next item.
func (g *Gate) Transition() time.Duration {
	return g.transition
}
