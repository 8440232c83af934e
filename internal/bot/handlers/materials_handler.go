package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// maxMaterialResults caps the /materials reply length.
const maxMaterialResults = 10

// NewMaterialsHandler returns a handler for the /materials command, the
// subscriber-facing knowledge base search.
func NewMaterialsHandler(deps HandlerDeps) bot.HandlerFunc {
	return materialsHandler{deps}.Handle
}

type materialsHandler struct {
	deps HandlerDeps
}

func (h materialsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "materials")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Materials handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if h.deps.Store == nil {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	if !h.deps.Entitlement.IsEntitled(ctx, userID) {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.NeedSubscription)
		return
	}

	query := commandArgs(update.Message.Text)
	if query == "" {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.ProvideQuery)
		return
	}

	materials, err := h.deps.Store.SearchMaterials(ctx, query, maxMaterialResults)
	if err != nil {
		log.ErrorContext(ctx, "Materials search failed", "query", query, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	if len(materials) == 0 {
		h.reply(ctx, b, chatID, h.deps.Config.Messages.NoMaterials)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📚 Материалы по запросу «%s»:\n\n", query))
	for _, m := range materials {
		sb.WriteString(fmt.Sprintf("• %s\n%s\n\n", m.Title, m.URL))
	}
	h.reply(ctx, b, chatID, strings.TrimRight(sb.String(), "\n"))
}

func (h materialsHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send materials reply", "error", err, "chat_id", chatID)
	}
}
