package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"library-api/internal/config"
	"library-api/internal/database"
	"library-api/internal/handler"
	"library-api/internal/middleware"
	"library-api/internal/repository"
	"library-api/internal/router"
	"library-api/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	actionLogRepo := repository.NewActionLogRepository(pool)
	slog.Info("database ready")

	cleanupFuncs := []func(){db.Close}
	healthChecks := map[string]handler.HealthCheck{"postgres": db.Health}

	var sessionStore service.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		sessionStore = repository.NewRedisSessionStore(client, userRepo)
		healthChecks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		cleanupFuncs = append(cleanupFuncs, func() {
			_ = client.Close()
		})
		slog.Info("session backend ready", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		sessionStore = repository.NewSessionRepository(pool)
		slog.Info("session backend ready", "backend", "postgres")
	}

	actionLogService := service.NewActionLogService(actionLogRepo)
	sessionService := service.NewSessionService(sessionStore, cfg.SessionTTL, cfg.SessionRenewThreshold)
	authService, err := service.NewAuthService(userRepo, sessionService, actionLogService)
	if err != nil {
		runCleanup(cleanupFuncs)
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	userService := service.NewUserService(userRepo, authService, actionLogService)
	oauthService := service.NewOAuthService(cfg.OAuthProviders, cfg.OAuthStateSecret, cfg.OAuthStateTTL)

	authMiddleware := middleware.NewAuthMiddleware(sessionService, middleware.AuthOptions{
		PublicRoutes: cfg.PublicRoutes,
		TokenSource:  cfg.TokenSource,
		CookieName:   cfg.SessionCookieName,
		CookieSecure: cfg.CookieSecure,
	})

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.SessionCookieName, cfg.CookieSecure),
		OAuth:     handler.NewOAuthHandler(oauthService),
		User:      handler.NewUserHandler(userService),
		ActionLog: handler.NewActionLogHandler(actionLogService),
		Health:    handler.NewHealthHandler(healthChecks),
		Docs:      handler.NewDocsHandler("./docs/openapi.yaml"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Stores close after in-flight requests drained.
	runCleanup(a.cleanupFuncs)

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func runCleanup(funcs []func()) {
	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}
