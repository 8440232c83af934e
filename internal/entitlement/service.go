// Package entitlement implements the subscription gate and the daily AI
// quota gate over the remote subscriber store.
package entitlement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/buddahbase/buddahbot/internal/store"
)

// Service answers "may this subscriber use paid features right now" and
// mutates subscription state on activation. All read paths fail closed:
// a store error reads as "not entitled" / "cannot consume".
type Service struct {
	store            store.Store
	logger           *slog.Logger
	subscriptionDays int
	dailyLimit       int
	now              func() time.Time
}

// NewService creates an entitlement Service.
func NewService(st store.Store, logger *slog.Logger, subscriptionDays, dailyLimit int) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:            st,
		logger:           logger.With("component", "entitlement"),
		subscriptionDays: subscriptionDays,
		dailyLimit:       dailyLimit,
		now:              time.Now,
	}
}

// DailyLimit returns the configured daily AI question allowance.
func (s *Service) DailyLimit() int {
	return s.dailyLimit
}

// IsEntitled reports whether the subscriber currently holds an active,
// unexpired subscription. Absent rows, inactive status, missing expiry,
// passed expiry, and store failures all read as false.
func (s *Service) IsEntitled(ctx context.Context, id int64) bool {
	sub, err := s.store.GetSubscriber(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Entitlement check failed closed", "id", id, "error", err)
		return false
	}
	if sub == nil || sub.Status != store.StatusActive {
		return false
	}

	end, ok := sub.SubscriptionEnd()
	if !ok {
		return false
	}
	return s.now().Before(end)
}

// Activate marks the subscription active for the configured period starting
// now, records the payment method, and resets the daily counter. It writes
// absolute values, so repeated activation for the same payment is safe.
func (s *Service) Activate(ctx context.Context, id int64, paymentMethod string) error {
	until := s.now().Add(time.Duration(s.subscriptionDays) * 24 * time.Hour)
	if err := s.store.Activate(ctx, id, paymentMethod, until); err != nil {
		return fmt.Errorf("failed to activate subscription for %d: %w", id, err)
	}
	return nil
}

// CanConsume reports whether the subscriber still has daily AI questions
// left. Absent rows and store failures read as false.
func (s *Service) CanConsume(ctx context.Context, id int64) bool {
	sub, err := s.store.GetSubscriber(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Quota check failed closed", "id", id, "error", err)
		return false
	}
	if sub == nil {
		return false
	}
	return sub.DailyRequests < s.dailyLimit
}

// Consume burns one daily AI question. The check-then-increment pair is not
// atomic for concurrent requests from the same subscriber; that race is
// tolerated.
func (s *Service) Consume(ctx context.Context, id int64) error {
	if err := s.store.IncrementDailyCount(ctx, id); err != nil {
		return fmt.Errorf("failed to consume quota for %d: %w", id, err)
	}
	return nil
}

// Remaining returns how many daily AI questions the subscriber has left,
// floored at zero.
func (s *Service) Remaining(ctx context.Context, id int64) int {
	sub, err := s.store.GetSubscriber(ctx, id)
	if err != nil || sub == nil {
		return 0
	}
	if sub.DailyRequests >= s.dailyLimit {
		return 0
	}
	return s.dailyLimit - sub.DailyRequests
}
