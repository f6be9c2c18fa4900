package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/config"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	if err := config.LoadEnv(); err != nil {
		logg.Warn(context.Background(), ".env could not be parsed, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = app.NewLogger(cfg.App, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, *cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap app", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := application.Migrate(ctx); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
	}

	routes.RegisterRoutes(application.Router, application)

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"db":    cfg.DB.Driver,
		"redis": cfg.Redis.Enabled(),
	})
	server := &http.Server{
		Addr:              addr,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}
