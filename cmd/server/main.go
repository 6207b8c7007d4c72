package main

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

	"github.com/go-chi/httplog/v2"

	"github.com/tendant/studio-site/internal/logging"
	"github.com/tendant/studio-site/pkg/studio/api"
	"github.com/tendant/studio-site/pkg/studio/config"
)

func main() {
	// Load configuration from environment
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(serverConfig.Environment, serverConfig.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build service from configuration
	svc, err := serverConfig.BuildService(ctx, logger)
	if err != nil {
		logging.Fatal("Failed to build service", "error", err)
	}

	router := api.NewRouter(svc, api.Config{
		Environment:        serverConfig.Environment,
		StorageBackend:     serverConfig.Storage.Name,
		MediaURLPrefix:     serverConfig.MediaURLPrefix,
		MaxUploadBytes:     serverConfig.MaxUploadBytes,
		CORSAllowedOrigins: serverConfig.CORSAllowedOrigins,
		AdminJWTSecret:     serverConfig.AdminJWTSecret,
		Logger: httplog.NewLogger("studio-site", httplog.Options{
			JSON:            serverConfig.Environment != "development",
			LogLevel:        logging.ParseLevel(serverConfig.LogLevel),
			Concise:         true,
			QuietDownRoutes: []string{"/health", "/metrics"},
			QuietDownPeriod: 10 * time.Second,
		}),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Studio site server starting",
			"port", serverConfig.Port,
			"environment", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.Storage.Type,
			"notifier", serverConfig.Notifier.Type,
			"admin_auth", serverConfig.AdminJWTSecret != "",
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := svc.Close(); err != nil {
		logger.Error("Failed to release resources", "error", err)
	}

	logger.Info("Server exiting")
}
