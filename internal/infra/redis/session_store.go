package redis

import (
	"context"
	"sync"
	"time"

	"alumni-quiz-proctor/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - Live sessions hold timers and connections, so the sessions themselves
//     stay in a local map.
//   - Redis carries a liveness marker per session token so other instances
//     (and operators) can see which attempts are in progress.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Register(token string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(token), "1", s.ttl).Err()
}

// Get also reports sessions that are live on another instance; those return a
// nil session with ok=true.
func (s *SessionStore) Get(token string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if ok {
		return session, true
	}
	n, err := s.client.Exists(context.Background(), s.key(token)).Result()
	return nil, err == nil && n > 0
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	_ = s.client.Del(context.Background(), s.key(token)).Err()
}

func (s *SessionStore) List() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
