package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamwise/dreamwise/internal/app"
	"github.com/dreamwise/dreamwise/internal/config"
	"github.com/dreamwise/dreamwise/internal/logger"
	"github.com/dreamwise/dreamwise/internal/routes"
	"github.com/dreamwise/dreamwise/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg)
	if err != nil {
		slog.Error("server failed", "error", err)
		logger.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	stopCleanup, err := startCleanup(ctx, cfg, a.VerificationService)
	if err != nil {
		return err
	}
	defer stopCleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// startCleanup schedules the expired-code sweep through asynq when Redis is
// configured and falls back to an in-process ticker otherwise.
func startCleanup(ctx context.Context, cfg *config.Config, cleaner worker.Cleaner) (stop func(), err error) {
	if cfg.RedisURL != "" {
		return worker.StartScheduled(worker.ScheduleConfig{
			RedisURL: cfg.RedisURL,
			Schedule: cfg.CleanupSchedule,
		}, cleaner)
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.NewSweeper(cleaner, cfg.CleanupInterval).Run(sweepCtx)
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
