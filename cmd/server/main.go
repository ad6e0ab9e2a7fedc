package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aarshiv/grader-api/internal/auth"
	"github.com/aarshiv/grader-api/internal/config"
	"github.com/aarshiv/grader-api/internal/db"
	"github.com/aarshiv/grader-api/internal/repository"
	"github.com/aarshiv/grader-api/internal/router"
	"github.com/aarshiv/grader-api/internal/services"
	"github.com/aarshiv/grader-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	if cfg.GeminiAPIKey == "" {
		logger.Warn("No Gemini API key configured; evaluation requests will fail until one is set")
	}

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize evaluation service
	evalRepo := repository.NewRepository(database)
	evalService := services.NewService(evalRepo, cfg, logger)
	authManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)

	// Setup HTTP router
	handler := router.NewRouter(evalService, authManager, logger)

	// Create HTTP server. Write timeout is generous because an evaluation
	// holds the request open for the whole model call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
