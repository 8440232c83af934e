package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/buddahbase/buddahbot/internal/store"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", from.ID)

	h.ensureSubscriber(ctx, from, chatID)

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf(h.deps.Config.Messages.Welcome, h.deps.Config.Telegram.AdminContact),
	}
	if h.deps.Payments != nil {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{
					Text: fmt.Sprintf("💳 Оформить подписку — %d ₽", h.deps.Config.Subscription.Price),
					CallbackData: CallbackPaySubscription,
				},
			}},
		}
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", chatID)
	}
}

// ensureSubscriber lazily creates the subscriber row on first contact.
// Failures are logged and swallowed; the greeting must still go out.
func (h startHandler) ensureSubscriber(ctx context.Context, from *models.User, chatID int64) {
	if h.deps.Store == nil {
		return
	}
	log := h.deps.Logger.With("handler", "start")

	existing, err := h.deps.Store.GetSubscriber(ctx, from.ID)
	if err != nil {
		log.WarnContext(ctx, "Failed to look up subscriber on /start", "user_id", from.ID, "error", err)
		return
	}
	if existing != nil {
		return
	}

	sub := &store.Subscriber{
		ID:       from.ID,
		Name:     displayName(from),
		Username: from.Username,
		ChatID:   chatID,
		Status:   store.StatusInactive,
	}
	if err := h.deps.Store.CreateSubscriber(ctx, sub); err != nil {
		log.WarnContext(ctx, "Failed to create subscriber on /start", "user_id", from.ID, "error", err)
		return
	}
	log.InfoContext(ctx, "New subscriber registered", "user_id", from.ID, "username", from.Username)
}
