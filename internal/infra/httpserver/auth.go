package httpserver

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
)

// POST /login
// Body: form fields or {"username","password"}. Forms are redirected, JSON
// callers get {ok:true} or 401.
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	asJSON := isJSON(req)
	if asJSON {
		if err := r.decodeJSON(w, req, &creds); err != nil {
			return err
		}
	} else {
		req.Body = http.MaxBytesReader(w, req.Body, r.opts.BodyLimit)
		if err := req.ParseForm(); err != nil {
			return badRequest("invalid form")
		}
		creds.Username, creds.Password = req.PostFormValue("username"), req.PostFormValue("password")
	}

	token, sess, err := r.Auth.Login(req.Context(), middleware.SanitizeString(creds.Username), creds.Password)
	if errors.Is(err, session.ErrBadPassword) {
		r.Log.Security("login failed",
			zap.String("username", creds.Username),
			zap.String("ip", middleware.ClientIP(req)),
		)
		if asJSON {
			return err
		}
		http.Redirect(w, req, "/login?error=1", http.StatusSeeOther)
		return nil
	}
	if err != nil {
		return err
	}

	r.Log.Info("login", zap.String("username", sess.Username), zap.String("ip", middleware.ClientIP(req)))
	http.SetCookie(w, r.sessionCookie(token, sess.ExpiresAt))
	if asJSON {
		middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return nil
	}
	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

// POST /logout
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	if c, err := req.Cookie(r.opts.CookieName); err == nil {
		if err := r.Auth.Logout(req.Context(), c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, r.sessionCookie("", time.Unix(0, 0)))
	http.Redirect(w, req, "/login", http.StatusSeeOther)
	return nil
}

func (r *Router) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     r.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}

func isJSON(req *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	return mt == "application/json"
}
