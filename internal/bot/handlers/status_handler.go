package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/buddahbase/buddahbot/internal/store"
)

// NewStatusHandler returns a handler for the /status command showing the
// subscriber's subscription and quota state.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if h.deps.Store == nil {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	sub, err := h.deps.Store.GetSubscriber(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load subscriber for /status", "user_id", userID, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	h.reply(ctx, b, chatID, h.formatStatus(ctx, userID, sub))
}

func (h statusHandler) formatStatus(ctx context.Context, userID int64, sub *store.Subscriber) string {
	var sb strings.Builder
	sb.WriteString("📋 Ваша подписка\n\n")

	if sub == nil || !h.deps.Entitlement.IsEntitled(ctx, userID) {
		sb.WriteString("❌ Подписка не активна\n\nОформите подписку через /start")
		return sb.String()
	}

	sb.WriteString("✅ Подписка активна\n")
	if end, ok := sub.SubscriptionEnd(); ok {
		sb.WriteString(fmt.Sprintf("⏱ Действует до: %s\n", end.Format("02.01.2006 15:04")))
	}

	if h.deps.Invites != nil {
		if h.deps.Invites.IsMember(ctx, userID) {
			sb.WriteString("👥 Вы в закрытой группе\n")
		} else {
			sb.WriteString(fmt.Sprintf("👥 Вы ещё не в закрытой группе, напишите %s за ссылкой\n",
				h.deps.Config.Telegram.AdminContact))
		}
	}

	remaining := h.deps.Entitlement.Remaining(ctx, userID)
	sb.WriteString(fmt.Sprintf("🤖 AI-вопросов сегодня: %d из %d", remaining, h.deps.Entitlement.DailyLimit()))
	return sb.String()
}

func (h statusHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send status reply", "error", err, "chat_id", chatID)
	}
}
