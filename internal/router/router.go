package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"library-api/internal/config"
	"library-api/internal/handler"
	"library-api/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	OAuth     *handler.OAuthHandler
	User      *handler.UserHandler
	ActionLog *handler.ActionLogHandler
	Health    *handler.HealthHandler
	Docs      *handler.DocsHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)

	r.Route("/api", func(api chi.Router) {
		// The gate runs outside the timeout so the logging middleware still
		// learns the caller's identity.
		api.Use(authMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/register", h.Auth.Register)
			auth.Post("/logout", h.Auth.Logout)
			auth.Get("/oauth/{provider}", h.OAuth.Start)
			auth.Get("/oauth/{provider}/state", h.OAuth.VerifyState)
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/", h.User.List)
			users.Get("/me", h.User.Me)
			users.Patch("/me", h.User.UpdateMe)
			users.Get("/{id}", h.User.Get)
		})

		api.Get("/action-logs", h.ActionLog.List)
	})

	return r
}
