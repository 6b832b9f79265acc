// Package auth logs users in against the configured demo credentials and
// issues signed session cookies backed by a server-side session store.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
)

// Claims is the cookie payload. The session id travels as jti.
type Claims struct {
	Username string `json:"usr"`
	jwtlib.RegisteredClaims
}

type Service struct {
	Sessions session.Store
	Username string
	// Password is either plain text or a bcrypt hash ("$2a$...").
	Password string
	Secret   []byte
	TTL      time.Duration
	Clock    application.Clock
}

// Login checks the credentials and opens a session. The returned token is
// the cookie value.
func (s *Service) Login(ctx context.Context, username, password string) (string, session.Session, error) {
	if !s.checkCredentials(username, password) {
		return "", session.Session{}, session.ErrBadPassword
	}
	now := s.Clock.Now()
	sess := session.Session{
		ID:        uuid.NewString(),
		Username:  s.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return "", session.Session{}, fmt.Errorf("save session: %w", err)
	}
	token, err := s.sign(sess)
	if err != nil {
		return "", session.Session{}, err
	}
	return token, sess, nil
}

// Authenticate verifies the token and requires its session to be live.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return session.Session{}, err
	}
	sess, err := s.Sessions.Get(ctx, claims.ID)
	if err != nil {
		return session.Session{}, err
	}
	if sess.Expired(s.Clock.Now()) {
		return session.Session{}, session.ErrInvalid
	}
	return sess, nil
}

// Logout deletes the session behind token. Unknown or broken tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.Sessions.Delete(ctx, claims.ID)
}

func (s *Service) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	var passOK bool
	if strings.HasPrefix(s.Password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.Password)) == 1
	}
	return userOK && passOK
}

func (s *Service) sign(sess session.Session) (string, error) {
	claims := Claims{
		Username: sess.Username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.Username,
			IssuedAt:  jwtlib.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwtlib.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *Service) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, session.ErrInvalid
	}
	t, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwtlib.WithTimeFunc(s.Clock.Now), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(session.ErrInvalid, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.ID == "" {
		return nil, session.ErrInvalid
	}
	return claims, nil
}
