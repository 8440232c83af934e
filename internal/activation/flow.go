// Package activation runs the steps shared by both payment confirmation
// paths (the "I paid" button and the payment webhook): grant the
// subscription, issue a one-time invite link and record it.
package activation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/buddahbase/buddahbot/internal/store"
)

// Granter activates a subscription for a principal.
type Granter interface {
	Activate(ctx context.Context, id int64, paymentMethod string) error
}

// Inviter issues one-time invite links into the private group.
type Inviter interface {
	CreateInviteLink(ctx context.Context) (string, error)
}

// Flow is the shared post-payment pipeline.
type Flow struct {
	granter Granter
	inviter Inviter
	store   store.Store
	log     *slog.Logger
}

// NewFlow wires the post-payment pipeline. inviter may be nil when no
// group is configured; activation then proceeds without a link.
func NewFlow(granter Granter, inviter Inviter, st store.Store, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Flow{granter: granter, inviter: inviter, store: st, log: log.With("component", "activation")}
}

// Complete grants the subscription and issues the invite link. Activation
// is the one step that must succeed; a failed invite link is reported as
// an empty link, never by rolling the subscription back.
func (f *Flow) Complete(ctx context.Context, principalID int64, paymentMethod string) (string, error) {
	if err := f.granter.Activate(ctx, principalID, paymentMethod); err != nil {
		return "", fmt.Errorf("activation failed for %d: %w", principalID, err)
	}

	if f.inviter == nil {
		f.log.WarnContext(ctx, "No group configured, subscription activated without invite link", "user_id", principalID)
		return "", nil
	}

	link, err := f.inviter.CreateInviteLink(ctx)
	if err != nil {
		f.log.ErrorContext(ctx, "Invite link creation failed after activation", "user_id", principalID, "error", err)
		return "", nil
	}

	if err := f.store.SaveInviteLink(ctx, principalID, link); err != nil {
		// The link is already issued and will be delivered; losing the
		// audit record is not worth failing the flow.
		f.log.WarnContext(ctx, "Failed to record invite link", "user_id", principalID, "error", err)
	}

	f.log.InfoContext(ctx, "Subscription activated", "user_id", principalID, "method", paymentMethod)
	return link, nil
}
