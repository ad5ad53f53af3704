package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/evanm/mindlog/internal/api"
	"github.com/evanm/mindlog/internal/config"
	"github.com/evanm/mindlog/internal/events"
	"github.com/evanm/mindlog/internal/repository/postgres"
	"github.com/evanm/mindlog/internal/sentiment"
	"github.com/evanm/mindlog/internal/service"
	"github.com/evanm/mindlog/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Redis backs auth rate limiting; the limiter fails open without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to parse REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("warning: redis unreachable, rate limiting disabled: %v", err)
			redisClient = nil
		}
		cancel()
	} else {
		log.Println("REDIS_URL not set, rate limiting disabled")
	}

	// Sentiment classifier
	var classifierOpts []sentiment.Option
	if cfg.GeminiBaseURL != "" {
		classifierOpts = append(classifierOpts, sentiment.WithBaseURL(cfg.GeminiBaseURL))
	}
	if cfg.GeminiModel != "" {
		classifierOpts = append(classifierOpts, sentiment.WithModel(cfg.GeminiModel))
	}
	classifier := sentiment.NewGeminiClient(cfg.GeminiAPIKey, classifierOpts...)

	// Event bus and websocket feed
	bus := events.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, classifier, bus, cfg)

	// Initialize router
	router := api.NewRouter(services, hub, redisClient, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	hub.Stop()

	log.Println("Server stopped")
}
