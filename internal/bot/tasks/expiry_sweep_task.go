package tasks

import (
	"context"
	"fmt"
	"time"
)

// newExpirySweepTask creates the nightly task that flips the status flag to
// inactive for every subscription whose end date has passed. Entitlement
// checks already treat expired rows as inactive; the sweep keeps the stored
// flag in line for admin listings and exports.
func newExpirySweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "expiry_sweep")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting subscription expiry sweep...")
		startTime := time.Now()
		now := time.Now()

		subs, err := deps.Store.ActiveSubscribers(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Expiry sweep failed to list subscribers", "error", err)
			return fmt.Errorf("expiry sweep failed: %w", err)
		}

		deactivated := 0
		var firstErr error
		for _, sub := range subs {
			end, ok := sub.SubscriptionEnd()
			if !ok || end.After(now) {
				continue
			}

			if err := deps.Store.Deactivate(ctx, sub.ID); err != nil {
				// Keep sweeping; a failed row is retried tomorrow.
				log.ErrorContext(ctx, "Failed to deactivate expired subscriber", "id", sub.ID, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			deactivated++
		}

		duration := time.Since(startTime)
		log.InfoContext(ctx, "Subscription expiry sweep completed",
			"checked", len(subs), "deactivated", deactivated, "duration", duration)

		if firstErr != nil {
			return fmt.Errorf("expiry sweep finished with errors: %w", firstErr)
		}
		return nil
	}
}
