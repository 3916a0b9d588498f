package memory

import (
	"context"
	"sync"
	"time"

	"weapon-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// With an idle TTL, sessions not saved or read within it are evicted lazily
// on Get and in bulk by Sweep.
type SessionStore struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

// StoreOption customizes a SessionStore.
type StoreOption func(*SessionStore)

// WithIdleTTL evicts sessions idle for longer than ttl. Zero keeps them forever.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *SessionStore) { s.idleTTL = ttl }
}

// WithClock is test-only for deterministic expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &storedSession{session: session, lastSeen: s.now()}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.sessions, sessionID)
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep evicts every idle session and returns their ids.
func (s *SessionStore) Sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var evicted []string
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// RunJanitor sweeps every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports how many sessions are held, idle ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(entry *storedSession, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(entry.lastSeen) > s.idleTTL
}
