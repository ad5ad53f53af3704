package api

import (
	"net/http"

	"github.com/evanm/mindlog/internal/api/handlers"
	"github.com/evanm/mindlog/internal/api/middleware"
	"github.com/evanm/mindlog/internal/config"
	"github.com/evanm/mindlog/internal/service"
	"github.com/evanm/mindlog/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func NewRouter(services *service.Services, hub *websocket.Hub, redisClient *redis.Client, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	journalHandler := handlers.NewJournalHandler(services.Journal)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes, rate limited per IP
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(redisClient))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Journal routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/journals", func(r chi.Router) {
				r.Post("/", journalHandler.Create)
				r.Get("/", journalHandler.List)
			})
		})

		// WebSocket event feed
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
