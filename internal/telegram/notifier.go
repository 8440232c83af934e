package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/store"
)

// Notifier delivers out-of-band messages to subscribers, used by the
// payment webhook once a subscription is activated without the user
// pressing anything.
type Notifier struct {
	bot   *bot.Bot
	store store.Store
	cfg   *config.Config
	log   *slog.Logger
}

// NewNotifier creates a Notifier over a running bot instance.
func NewNotifier(b *bot.Bot, st store.Store, cfg *config.Config, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{bot: b, store: st, cfg: cfg, log: log.With("component", "notifier")}
}

// NotifyActivated tells the subscriber their payment went through and hands
// over the invite link. Delivery failures are logged, never propagated;
// the activation itself already happened.
func (n *Notifier) NotifyActivated(ctx context.Context, principalID int64, inviteLink string) {
	chatID := principalID
	if n.store != nil {
		if sub, err := n.store.GetSubscriber(ctx, principalID); err == nil && sub != nil && sub.ChatID != 0 {
			chatID = sub.ChatID
		}
	}

	if inviteLink == "" {
		inviteLink = fmt.Sprintf(n.cfg.Messages.InviteError, n.cfg.Telegram.AdminContact)
	}
	text := fmt.Sprintf(n.cfg.Messages.PaymentSuccess,
		n.cfg.Subscription.Days, n.cfg.Subscription.DailyLimit, inviteLink)

	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		n.log.ErrorContext(ctx, "Failed to deliver activation notice", "user_id", principalID, "error", err)
		return
	}
	n.log.InfoContext(ctx, "Activation notice delivered", "user_id", principalID)
}
