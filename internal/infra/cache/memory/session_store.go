package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	now      func() time.Time
}

func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{sessions: make(map[string]session.Session), now: now}
}

func (s *SessionStore) Save(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.Expired(s.now()) {
		return session.Session{}, session.ErrInvalid
	}
	return sess, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) Run(ctx context.Context, interval time.Duration) error {
	return runEvery(ctx, interval, func() { s.Sweep() })
}
