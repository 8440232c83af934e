package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// adminKeyboard is the top-level admin panel menu.
func adminKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "👥 Пользователи", CallbackData: "admin_users"},
				{Text: "📊 Статистика", CallbackData: "admin_stats"},
			},
			{
				{Text: "📢 Рассылка", CallbackData: "admin_broadcast"},
				{Text: "📚 Добавить материал", CallbackData: "admin_add_material"},
			},
			{
				{Text: "📄 Экспорт CSV", CallbackData: "admin_export_csv"},
				{Text: "🔄 Сбросить лимиты ИИ", CallbackData: "admin_reset_ai"},
			},
		},
	}
}

// NewAdminHandler returns a handler for the /admin command. Registered
// behind the AdminOnly middleware.
func NewAdminHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminHandler{deps}.Handle
}

type adminHandler struct {
	deps HandlerDeps
}

func (h adminHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Admin handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Opening admin panel", "user_id", update.Message.From.ID)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🛠 Админ-панель Buddah Base",
		ReplyMarkup: adminKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send admin panel", "error", err, "chat_id", chatID)
	}
}
