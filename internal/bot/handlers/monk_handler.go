package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewMonkHandler returns a handler for the /monk command, the entry point
// to the AI consultant.
func NewMonkHandler(deps HandlerDeps) bot.HandlerFunc {
	return monkHandler{deps}.Handle
}

type monkHandler struct {
	deps HandlerDeps
}

func (h monkHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "monk")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Monk handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if h.deps.Consultant == nil {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	question := commandArgs(update.Message.Text)
	if question == "" {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.ProvideQuestion)
		return
	}

	log.InfoContext(ctx, "Handling /monk question", "user_id", userID, "length", len(question))

	// Typing indicator while the model works; failure here is cosmetic.
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})

	answer := h.deps.Consultant.Answer(ctx, userID, question)
	h.reply(ctx, b, chatID, answer)
}

func (h monkHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send monk reply", "error", err, "chat_id", chatID)
	}
}
