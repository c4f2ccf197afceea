package server

import (
	"net/http"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/api"
	"github.com/flightdeck-ai/flightdeck/internal/api/handlers"
	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	TokenVerifier       middleware.TokenVerifier
	MaxBodyBytes        int64
	AuthHandler         *handlers.AuthHandler
	DocumentHandler     *handlers.DocumentHandler
	ChatHandler         *handlers.ChatHandler
	ConversationHandler *handlers.ConversationHandler
	UserHandler         *handlers.UserHandler
	AnalyticsHandler    *handlers.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.TokenVerifier))

			r.Post("/chat/query", cfg.ChatHandler.Query)

			r.Get("/conversations", cfg.ConversationHandler.List)
			r.Get("/conversations/{id}/messages", cfg.ConversationHandler.Messages)

			r.Get("/documents", cfg.DocumentHandler.List)
			r.Get("/documents/{id}", cfg.DocumentHandler.Get)

			// Everything below requires the admin role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.UserRoleAdmin))

				r.Post("/auth/register", cfg.AuthHandler.Register)

				r.Post("/documents/upload", cfg.DocumentHandler.Upload)
				r.Delete("/documents/{id}", cfg.DocumentHandler.Delete)
				r.Post("/documents/{id}/restore", cfg.DocumentHandler.Restore)

				r.Get("/users", cfg.UserHandler.List)
				r.Patch("/users/{id}/status", cfg.UserHandler.SetStatus)

				r.Get("/analytics/stats", cfg.AnalyticsHandler.Stats)
			})
		})
	})

	return r
}
