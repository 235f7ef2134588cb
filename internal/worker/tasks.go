package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const TaskVerificationCleanup = "verification:cleanup"

// NewCleanupTask builds the periodic cleanup task. It is never retried:
// the next scheduled run picks up whatever a failed run left behind.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(
		TaskVerificationCleanup,
		nil,
		asynq.MaxRetry(0),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(10*time.Minute), // one enqueue per tick across instances
	)
}

func handleCleanup(logger *slog.Logger, cleaner Cleaner) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := cleaner.CleanupExpired(ctx)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w: %w", err, asynq.SkipRetry)
		}

		logger.Info("expired verification codes removed", "task_type", task.Type(), "count", n)
		return nil
	}
}
