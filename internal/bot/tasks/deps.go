// Package tasks defines the scheduled maintenance jobs: the nightly AI
// quota reset and the subscription expiry sweep.
package tasks

import (
	"context"
	"log/slog"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/store"
)

// ScheduledTaskFunc is the signature for task functions run by the scheduler.
type ScheduledTaskFunc func(ctx context.Context) error

// TaskDeps holds the dependencies required by scheduled task functions.
type TaskDeps struct {
	Logger *slog.Logger
	Store  store.Store
	Config *config.Config
}
