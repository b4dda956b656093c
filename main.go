package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techhub/api"
	"techhub/auth"
	"techhub/config"
	"techhub/db"
	"techhub/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title           Youth Tech Hub API
// @version         1.0.0

// @description     ## Youth Tech Hub API
// @description
// @description     Backend for a small learning platform: tutorials, internships, applications and mentorships,
// @description     persisted to a single JSON file, with JWT authentication and role-gated routes.
// @description
// @description     **Roles:** `student`, `mentor`, `partner` and `admin`. An admin passes every role check.
// @description
// @description     **Responses** always use the envelope `{ "success": bool, "message": string?, "data": any?, "count": int? }`.
// @description
// @description     **Filtering (`filter` parameter):** list endpoints accept repeated `filter` parameters of the form `field eq value`.
// @description     All filters must match. Strings may be quoted (`title eq "Intro to Go"`); numbers, `true`/`false` and `null` keep their JSON type,
// @description     so `duration eq 30` does not match a duration stored as the string `"30"`. Use dots for nested fields (`location.city eq Almaty`).

// @license.name  MIT

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warnf("Could not load .env file: %v", err)
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	server, database, err := setup(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to start: %v", err)
	}

	// --- Start Server ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Log.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Graceful shutdown failed: %v", err)
	}
	if err := database.Close(); err != nil {
		logger.Log.Errorf("Closing database: %v", err)
	}
	logger.Log.Info("Server stopped")
}

// setup opens the store, seeds the first admin outside production and builds the server.
func setup(cfg *config.Config) (*http.Server, *db.Database, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Database ---
	database, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}

	svc := auth.NewService(database, cfg)
	if !cfg.IsProduction() {
		seed, err := auth.SeedAdminRecord(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("build seed admin: %w", err)
		}
		if _, err := svc.BootstrapAdmin(seed); err != nil {
			return nil, nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           api.NewRouter(database, svc, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return server, database, nil
}
