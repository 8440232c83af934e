package payment

import (
	"context"
	"io"
	"log/slog"
)

// Finder is the slice of the gateway client the success path needs.
type Finder interface {
	Find(ctx context.Context, checkoutID string) (*Checkout, error)
}

// Service resolves checkout sessions to subscribers on success.
type Service struct {
	finder Finder
	logger *slog.Logger
}

// NewService creates a payment Service over a gateway client.
func NewService(finder Finder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		finder: finder,
		logger: logger.With("component", "payment_service"),
	}
}

// ProcessSuccessful polls the checkout and returns the paying subscriber id
// when the session has succeeded and its metadata carries a usable id.
// Returns 0 for a still-pending session; callers show the pending message.
func (s *Service) ProcessSuccessful(ctx context.Context, checkoutID string) (int64, error) {
	checkout, err := s.finder.Find(ctx, checkoutID)
	if err != nil {
		return 0, err
	}

	if checkout.Status != StatusSucceeded {
		s.logger.DebugContext(ctx, "Checkout not succeeded yet", "checkout_id", checkoutID, "checkout_status", checkout.Status)
		return 0, nil
	}

	principalID := checkout.PrincipalID()
	if principalID == 0 {
		s.logger.ErrorContext(ctx, "Succeeded checkout without usable metadata", "checkout_id", checkoutID)
		return 0, nil
	}

	s.logger.InfoContext(ctx, "Checkout succeeded", "checkout_id", checkoutID, "principal_id", principalID)
	return principalID, nil
}
