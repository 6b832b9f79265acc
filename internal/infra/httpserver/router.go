package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/application/analysis"
	appauth "github.com/bryanwahyu/teampulse-turbo/internal/application/auth"
	appsalary "github.com/bryanwahyu/teampulse-turbo/internal/application/salary"
	appworkspace "github.com/bryanwahyu/teampulse-turbo/internal/application/workspace"
	domai "github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/salary"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/textextract"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
)

const (
	msgUnavailable = "AI service unavailable"
	msgUnparseable = "AI response could not be parsed"
	msgInternal    = "internal server error"
	msgInvalidJSON = "invalid JSON"
	msgNotObject   = "invalid data, JSON object expected."
)

// Deps are the services behind the routes.
type Deps struct {
	Auth      *appauth.Service
	Analysis  *analysis.Service
	Salary    *appsalary.Service
	Workspace *appworkspace.Service
	Log       *logger.Logger
	Static    fs.FS
	Health    map[string]middleware.HealthChecker
}

type Options struct {
	Version        string
	Production     bool
	CookieName     string
	SecureCookie   bool
	AllowedOrigins []string
	BodyLimit      int64
	UploadLimit    int64
	Global         *middleware.RateLimiter // nil disables
	API            *middleware.RateLimiter // nil disables
	FinishTimeout  time.Duration
}

type Router struct {
	Deps
	opts Options
}

func NewRouter(deps Deps, opts Options) http.Handler {
	if opts.FinishTimeout == 0 {
		opts.FinishTimeout = 30 * time.Second
	}
	r := &Router{Deps: deps, opts: opts}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Recover(deps.Log))
	mux.Use(middleware.SecurityHeaders)
	mux.Use(middleware.Logging(deps.Log))
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if opts.Global != nil {
		mux.Use(middleware.RateLimit(opts.Global, "too many requests, please try again later"))
	}
	mux.Use(middleware.Auth(deps.Auth, opts.CookieName, deps.Log))

	mux.Get("/health", middleware.HealthHandler(opts.Version, deps.Health))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/login", r.serveFile("login.html"))
	mux.Post("/login", r.wrap(r.handleLogin))
	mux.Post("/logout", r.wrap(r.handleLogout))

	mux.Route("/api", func(rt chi.Router) {
		rt.Group(func(ai chi.Router) {
			if opts.API != nil {
				ai.Use(middleware.RateLimit(opts.API, "too many analysis requests, please wait a minute"))
			}
			ai.Post("/analyze", r.wrap(r.handleAnalyze))
			ai.Post("/salary", r.wrapEnvelope("ok", r.handleSalaryTeam))
			ai.Post("/salary-employee", r.wrapEnvelope("success", r.handleSalaryEmployee))
			ai.Post("/salary-text", r.wrapEnvelope("success", r.handleSalaryText))
		})
		rt.Post("/highlight", r.wrap(r.handleHighlight))

		rt.Get("/profile", r.wrap(r.handleGetProfile))
		rt.Put("/profile", r.wrap(r.handlePutProfile))
		rt.Get("/clients", r.wrap(r.handleListClients))
		rt.Put("/clients", r.wrap(r.handleSaveClient))
		rt.Delete("/clients/{id}", r.wrap(r.handleDeleteClient))
		rt.Get("/history", r.wrap(r.handleListHistory))
		rt.Post("/history", r.wrap(r.handleAddHistory))
		rt.Delete("/history", r.wrap(r.handleClearHistory))

		rt.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			middleware.WriteError(w, http.StatusNotFound, "not found")
		})
	})

	mux.Get("/*", r.handleStatic)

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError is an error that already knows its status and public message.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, message: msg} }

// classify maps an error to the status, public message and optional details.
func (r *Router) classify(err error) (int, string, any) {
	var (
		he   *httpError
		verr *middleware.ValidationError
		qerr *quota.ExceededError
		mbe  *http.MaxBytesError
		syn  *json.SyntaxError
		typ  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &he):
		return he.status, he.message, nil
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error(), verr.Fields
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, "request body too large", nil
	case errors.Is(err, salary.ErrNotObject):
		return http.StatusBadRequest, msgNotObject, nil
	case errors.As(err, &syn), errors.As(err, &typ), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return http.StatusBadRequest, msgInvalidJSON, nil
	case errors.Is(err, analysis.ErrEmptyInput),
		errors.Is(err, textextract.ErrUnsupported),
		errors.Is(err, appworkspace.ErrInvalidProfile),
		errors.Is(err, appworkspace.ErrCompanyMissing),
		errors.Is(err, appworkspace.ErrInvalidItem):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, session.ErrBadPassword):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, session.ErrInvalid):
		return http.StatusUnauthorized, "authentication required", nil
	case errors.As(err, &qerr):
		return http.StatusTooManyRequests, qerr.Error(), nil
	case domai.IsUpstream(err):
		return http.StatusServiceUnavailable, msgUnavailable, nil
	case errors.Is(err, domai.ErrUnparseable):
		return http.StatusBadGateway, msgUnparseable, nil
	case errors.Is(err, workspace.ErrNotFound):
		return http.StatusNotFound, "not found", nil
	}
	if r.opts.Production {
		return http.StatusInternalServerError, msgInternal, nil
	}
	return http.StatusInternalServerError, msgInternal, err.Error()
}

func (r *Router) logFailure(req *http.Request, status int, err error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", chimw.GetReqID(req.Context())),
		zap.Error(err),
	}
	if status >= 500 {
		r.Log.Error("request failed", fields...)
		return
	}
	r.Log.Debug("request rejected", fields...)
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg, details := r.classify(err)
			r.logFailure(req, status, err)
			middleware.WriteJSON(w, status, middleware.ErrorBody{Error: msg, Details: details})
		}
	}
}

// wrapEnvelope answers failures as {<flag>: false, error, details?}, the
// shape the salary endpoints have always used.
func (r *Router) wrapEnvelope(flag string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg, details := r.classify(err)
			r.logFailure(req, status, err)
			body := map[string]any{flag: false, "error": msg}
			if details != nil {
				body["details"] = details
			}
			middleware.WriteJSON(w, status, body)
		}
	}
}

// decodeJSON reads a size-limited JSON body into v.
func (r *Router) decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.BodyLimit)
	return json.NewDecoder(req.Body).Decode(v)
}

func (r *Router) readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.BodyLimit)
	return io.ReadAll(req.Body)
}

func caller(req *http.Request) application.Caller {
	return application.Caller{IP: middleware.ClientIP(req), User: middleware.UsernameFrom(req.Context())}
}
