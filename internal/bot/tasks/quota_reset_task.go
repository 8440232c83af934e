package tasks

import (
	"context"
	"fmt"
	"time"
)

// newQuotaResetTask creates the nightly task that returns every subscriber
// to a full daily AI question allowance.
func newQuotaResetTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "quota_reset")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting daily quota reset...")
		startTime := time.Now()

		err := deps.Store.ResetAllDailyCounts(ctx)

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Daily quota reset failed", "error", err, "duration", duration)
			return fmt.Errorf("quota reset failed: %w", err)
		}

		log.InfoContext(ctx, "Daily quota reset completed", "duration", duration)
		return nil
	}
}
