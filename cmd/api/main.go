package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/teampulse-turbo/internal/application"
	"github.com/bryanwahyu/teampulse-turbo/internal/application/analysis"
	appauth "github.com/bryanwahyu/teampulse-turbo/internal/application/auth"
	appsalary "github.com/bryanwahyu/teampulse-turbo/internal/application/salary"
	appworkspace "github.com/bryanwahyu/teampulse-turbo/internal/application/workspace"
	"github.com/bryanwahyu/teampulse-turbo/internal/config"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
	anthropicai "github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/anthropic"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/demo"
	openaiai "github.com/bryanwahyu/teampulse-turbo/internal/infra/ai/openai"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/cache/memory"
	redisc "github.com/bryanwahyu/teampulse-turbo/internal/infra/cache/redis"
	dbmemory "github.com/bryanwahyu/teampulse-turbo/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/teampulse-turbo/internal/infra/db/mysql"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/db/postgres"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/httpserver"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/logger"
	"github.com/bryanwahyu/teampulse-turbo/internal/infra/storage"
	"github.com/bryanwahyu/teampulse-turbo/internal/middleware"
	"github.com/bryanwahyu/teampulse-turbo/web"
)

const (
	sweepInterval = 5 * time.Minute
	limiterIdle   = 30 * time.Minute
	demoDelay     = 40 * time.Millisecond
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Dir:         cfg.Log.Dir,
		Environment: cfg.Server.Env,
		Version:     cfg.Server.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	v := cfg.Validate()
	for _, w := range v.Warnings {
		log.Warn("config warning", zap.String("warning", w))
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Error("config error", zap.String("error", e))
		}
		log.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	clock := application.SystemClock{}
	health := map[string]middleware.HealthChecker{}
	g, gctx := errgroup.WithContext(ctx)

	// sessions + quota: redis when enabled, otherwise in-process
	var (
		sessions   session.Store
		quotaStore quota.Store
	)
	if cfg.Redis.Enabled {
		rdb, err := redisc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redisc.NewSessionStore(rdb)
		quotaStore = redisc.NewQuotaStore(rdb)
		health["redis"] = redisc.HealthChecker{Client: rdb}
		log.Info("using redis for sessions and quota", zap.String("addr", cfg.Redis.Addr))
	} else {
		ms := memory.NewSessionStore(time.Now)
		mq := memory.NewQuotaStore(time.Now)
		sessions, quotaStore = ms, mq
		g.Go(func() error { return ms.Run(gctx, sweepInterval) })
		g.Go(func() error { return mq.Run(gctx, sweepInterval) })
	}

	repo, db, err := openWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	log.Info("workspace storage ready", zap.String("driver", cfg.Storage.Driver))

	var archive analysis.Archive
	if cfg.Minio.Enabled {
		store, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.Minio.Endpoint,
			Region:    cfg.Minio.Region,
			Bucket:    cfg.Minio.BucketName,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		archive = store
		health["archive"] = middleware.CheckFunc(store.Check)
	}

	client, demoMode := newAIClient(cfg)
	if demoMode {
		log.Warn("no AI credential configured, running in demo mode")
	}
	client = middleware.InstrumentAI(client)

	ws := appworkspace.NewService(repo, clock)
	svcAuth := &appauth.Service{
		Sessions: sessions,
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
		Secret:   []byte(cfg.Auth.SessionSecret),
		TTL:      cfg.Auth.SessionTTL,
		Clock:    clock,
	}
	svcAnalysis := &analysis.Service{
		AI:          client,
		History:     ws,
		Log:         log,
		Clock:       clock,
		Model:       cfg.AI.StreamModel,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}
	if archive != nil {
		svcAnalysis.Archive = archive
	}
	svcSalary := &appsalary.Service{
		AI:          client,
		Demo:        demoMode,
		History:     ws,
		Log:         log,
		Clock:       clock,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}
	if cfg.Limits.QuotaEnabled {
		svcAnalysis.Quota = &quota.Budget{
			Service: quota.ServiceNegotiation,
			Store:   quotaStore,
			Limit:   cfg.Limits.NegotiationDailyTokens,
			Window:  time.Duration(cfg.Limits.NegotiationWindowHours) * time.Hour,
		}
		svcSalary.Quota = &quota.Budget{
			Service: quota.ServiceSalary,
			Store:   quotaStore,
			Limit:   cfg.Limits.SalaryDailyTokens,
			Window:  time.Duration(cfg.Limits.SalaryWindowHours) * time.Hour,
		}
	}

	static := web.Static()
	if cfg.Server.StaticDir != "" {
		static = os.DirFS(cfg.Server.StaticDir)
	}
	if _, err := fs.Stat(static, "index.html"); err != nil {
		return fmt.Errorf("static dir: %w", err)
	}

	globalLimiter := middleware.NewRateLimiter(cfg.Limits.GlobalRequests, cfg.Limits.GlobalWindow)
	apiLimiter := middleware.NewRateLimiter(cfg.Limits.APIRequests, cfg.Limits.APIWindow)
	g.Go(func() error { return globalLimiter.Run(gctx, sweepInterval, limiterIdle) })
	g.Go(func() error { return apiLimiter.Run(gctx, sweepInterval, limiterIdle) })

	handler := httpserver.NewRouter(httpserver.Deps{
		Auth:      svcAuth,
		Analysis:  svcAnalysis,
		Salary:    svcSalary,
		Workspace: ws,
		Log:       log,
		Static:    static,
		Health:    health,
	}, httpserver.Options{
		Version:        cfg.Server.Version,
		Production:     cfg.IsProduction(),
		CookieName:     cfg.Auth.CookieName,
		SecureCookie:   cfg.Auth.SecureCookie,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		BodyLimit:      int64(cfg.Server.BodyLimitMB) << 20,
		UploadLimit:    int64(cfg.Server.UploadLimitMB) << 20,
		Global:         globalLimiter,
		API:            apiLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       2 * time.Minute,
		// streams run as long as the model writes
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	g.Go(func() error {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Server.Env),
			zap.String("ai_provider", client.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openWorkspace picks the repository for profiles, clients and history.
// db is nil for the memory driver.
func openWorkspace(ctx context.Context, cfg *config.Config) (workspace.Repository, *sql.DB, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("mysql migrate: %w", err)
		}
		return mysqlp.NewWorkspaceRepository(db), db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return postgres.NewWorkspaceRepository(db), db, nil
	default:
		return dbmemory.NewWorkspaceRepository(), nil, nil
	}
}

// newAIClient returns the configured provider, or the demo client when no
// credential is set.
func newAIClient(cfg *config.Config) (ai.Client, bool) {
	if !cfg.HasAICredential() {
		c := demo.NewClient()
		c.Delay = demoDelay
		return c, true
	}
	httpClient := newAIHTTPClient(cfg.AI.Timeout)
	switch cfg.AI.Provider {
	case "anthropic":
		return anthropicai.NewClient(anthropicai.Options{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			BaseURL:    cfg.AI.BaseURL,
			MaxTokens:  cfg.AI.MaxTokens,
			MaxRetries: 2,
			Timeout:    cfg.AI.Timeout,
			HTTPClient: httpClient,
		}), false
	default:
		return openaiai.NewClient(openaiai.Options{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			BaseURL:    cfg.AI.BaseURL,
			MaxTokens:  cfg.AI.MaxTokens,
			Timeout:    cfg.AI.Timeout,
			HTTPClient: httpClient,
		}), false
	}
}

// newAIHTTPClient bounds connection setup and the wait for response headers.
// There is no Client.Timeout: it would also cut a stream that is still
// delivering tokens.
func newAIHTTPClient(headerTimeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: tr}
}
