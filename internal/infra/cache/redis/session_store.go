package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
)

const sessionPrefix = "tp:session:"

// SessionStore keeps sessions as JSON values that expire with the session.
type SessionStore struct {
	rdb *goredis.Client
}

func NewSessionStore(rdb *goredis.Client) *SessionStore { return &SessionStore{rdb: rdb} }

func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return session.ErrInvalid
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionPrefix+sess.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	data, err := s.rdb.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return session.Session{}, session.ErrInvalid
	}
	if err != nil {
		return session.Session{}, err
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return session.Session{}, session.ErrInvalid
	}
	if sess.Expired(time.Now()) {
		return session.Session{}, session.ErrInvalid
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionPrefix+id).Err()
}
