package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalid     = errors.New("invalid session")
	ErrBadPassword = errors.New("invalid username or password")
)

type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Store keeps live sessions. Get returns ErrInvalid for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
