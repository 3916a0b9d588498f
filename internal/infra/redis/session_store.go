package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/app"
	"weapon-quiz-service/internal/domain"
	"weapon-quiz-service/internal/infra/memory"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Live sessions stay in a local store; the engine state is not rebuilt from Redis.
//   - Redis holds a progress snapshot per session (cursor, score) with a TTL,
//     refreshed on every save, so operators and other instances can see liveness.
//   - Local sessions idle for longer than the same TTL are evicted, so the map
//     never outlives the snapshots it backs.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
	local  *memory.SessionStore
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log *zap.Logger, opts ...memory.StoreOption) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]memory.StoreOption{memory.WithIdleTTL(ttl)}, opts...)
	return &SessionStore{
		client: client,
		ttl:    ttl,
		log:    log,
		local:  memory.NewSessionStore(opts...),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.local.Save(session)

	// best-effort snapshot
	payload, err := json.Marshal(session.Snapshot())
	if err == nil {
		err = s.client.Set(context.Background(), Key(session.ID()), payload, s.ttl).Err()
	}
	if err != nil {
		s.log.Warn("session snapshot write failed", zap.String("session_id", session.ID()), zap.Error(err))
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	return s.local.Get(sessionID)
}

func (s *SessionStore) Delete(sessionID string) {
	s.local.Delete(sessionID)
	s.dropSnapshot(sessionID)
}

// Sweep evicts idle local sessions along with their snapshots.
func (s *SessionStore) Sweep() []string {
	evicted := s.local.Sweep()
	for _, id := range evicted {
		s.dropSnapshot(id)
	}
	if len(evicted) > 0 {
		s.log.Debug("evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return evicted
}

// RunJanitor sweeps every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
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

// Len reports how many sessions are held locally.
func (s *SessionStore) Len() int {
	return s.local.Len()
}

func (s *SessionStore) dropSnapshot(sessionID string) {
	if err := s.client.Del(context.Background(), Key(sessionID)).Err(); err != nil {
		s.log.Warn("session snapshot delete failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Snapshot reads the last progress snapshot written for a session.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	raw, err := s.client.Get(ctx, Key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	var snap domain.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return snap, nil
}

// Key is the Redis key holding a session's snapshot.
func Key(sessionID string) string {
	return "quiz:session:" + sessionID
}
