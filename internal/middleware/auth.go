package middleware

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a session cookie value.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

var publicPaths = map[string]bool{
	"/login":  true,
	"/logout": true,
	"/health": true,
	"/livez":  true,
}

var staticExt = map[string]bool{
	".css": true, ".js": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".ico": true, ".svg": true, ".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".map": true,
}

// IsPublicPath reports whether path is reachable without a session.
// Asset extensions only count outside /api/.
func IsPublicPath(p string) bool {
	if publicPaths[p] {
		return true
	}
	return !strings.HasPrefix(p, "/api/") && staticExt[strings.ToLower(path.Ext(p))]
}

// Auth gates everything outside the allow-list behind a live session.
// Unauthenticated API calls get 401 JSON, pages are redirected to /login.
func Auth(a Authenticator, cookieName string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok, failed := check(a, cookieName, r, log)
			switch {
			case failed:
				WriteError(w, http.StatusInternalServerError, "internal server error")
			case !ok && strings.HasPrefix(r.URL.Path, "/api/"):
				WriteError(w, http.StatusUnauthorized, "authentication required")
			case !ok:
				http.Redirect(w, r, "/login", http.StatusFound)
			default:
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
			}
		})
	}
}

// check reports failed for backend errors and panics, which are not the
// caller's fault.
func check(a Authenticator, cookieName string, r *http.Request, log *logger.Logger) (sess session.Session, ok, failed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("auth check panicked", zap.String("path", r.URL.Path), zap.Any("panic", rec))
			ok, failed = false, true
		}
	}()
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return session.Session{}, false, false
	}
	sess, err = a.Authenticate(r.Context(), c.Value)
	switch {
	case errors.Is(err, session.ErrInvalid):
		log.Security("invalid session", zap.String("path", r.URL.Path), zap.String("ip", ClientIP(r)), zap.Error(err))
		return session.Session{}, false, false
	case err != nil:
		log.Error("session lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
		return session.Session{}, false, true
	}
	return sess, true, false
}

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session placed by Auth.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

// UsernameFrom returns the logged in user or "".
func UsernameFrom(ctx context.Context) string {
	s, _ := SessionFrom(ctx)
	return s.Username
}
