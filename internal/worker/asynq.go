package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const DefaultSchedule = "@hourly"

// asynqLogger routes asynq's own logging through slog.
type asynqLogger struct {
	logger *slog.Logger
}

func (a *asynqLogger) Debug(args ...any) { a.logger.Debug(fmt.Sprint(args...)) }
func (a *asynqLogger) Info(args ...any)  { a.logger.Info(fmt.Sprint(args...)) }
func (a *asynqLogger) Warn(args ...any)  { a.logger.Warn(fmt.Sprint(args...)) }
func (a *asynqLogger) Error(args ...any) { a.logger.Error(fmt.Sprint(args...)) }

func (a *asynqLogger) Fatal(args ...any) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

type ScheduleConfig struct {
	RedisURL string
	Schedule string // cron spec, e.g. "@hourly" or "0 * * * *"
}

// StartScheduled registers the cleanup task with an asynq scheduler and
// starts a worker server that executes it. Both stop when stop is called.
func StartScheduled(cfg ScheduleConfig, cleaner Cleaner) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	logger := slog.Default().With("component", "worker")

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     1,
		ShutdownTimeout: 30 * time.Second,
		ErrorHandler:    asynq.ErrorHandlerFunc(errorHandler(logger)),
		Logger:          &asynqLogger{logger: logger},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskVerificationCleanup, handleCleanup(logger, cleaner))

	err = srv.Start(mux)
	if err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.InfoLevel,
		Logger:   &asynqLogger{logger: logger},
	})

	entryID, err := scheduler.Register(schedule, NewCleanupTask())
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to register cleanup schedule: %w", err)
	}

	err = scheduler.Start()
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	slog.Info("scheduled verification cleanup started", "schedule", schedule, "entry_id", entryID)

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}

func errorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		logger.Error("task execution failed",
			"task_type", task.Type(),
			"retry_count", retried,
			"error", err,
		)
	}
}
