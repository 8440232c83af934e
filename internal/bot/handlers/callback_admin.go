package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CallbackAdminPrefix routes all admin panel buttons to one handler.
const CallbackAdminPrefix = "admin_"

// NewAdminCallbackHandler returns the handler for every admin panel button.
func NewAdminCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return adminCallbackHandler{deps}.Handle
}

type adminCallbackHandler struct {
	deps HandlerDeps
}

func (h adminCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_callback")

	if update.CallbackQuery == nil {
		return
	}
	answerCallback(ctx, b, update.CallbackQuery.ID)

	userID := update.CallbackQuery.From.ID
	if !h.deps.Config.Telegram.IsAdmin(userID) {
		log.WarnContext(ctx, "Non-admin pressed admin panel button", "user_id", userID)
		return
	}

	msg := callbackMessage(update)
	if msg == nil {
		log.WarnContext(ctx, "Admin callback without accessible message", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID

	if h.deps.Admin == nil {
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	action := update.CallbackQuery.Data
	log.InfoContext(ctx, "Admin panel action", "action", action, "user_id", userID)

	switch action {
	case "admin_users":
		h.showUsers(ctx, b, chatID)
	case "admin_stats":
		h.showStats(ctx, b, chatID)
	case "admin_broadcast":
		h.deps.AdminState.Set(userID, actionBroadcast)
		sendText(ctx, b, h.deps, chatID, "📢 Отправьте текст рассылки одним сообщением.\nОтмена: /cancel")
	case "admin_add_material":
		h.deps.AdminState.Set(userID, actionAddMaterial)
		sendText(ctx, b, h.deps, chatID, "📚 Отправьте материал в формате:\nНазвание | Теги | URL\nОтмена: /cancel")
	case "admin_export_csv":
		h.exportCSV(ctx, b, chatID)
	case "admin_reset_ai":
		h.resetQuotas(ctx, b, chatID)
	case "admin_back":
		h.showPanel(ctx, b, chatID)
	default:
		log.WarnContext(ctx, "Unknown admin panel action", "action", action)
	}
}

func (h adminCallbackHandler) showPanel(ctx context.Context, b *bot.Bot, chatID int64) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🛠 Админ-панель Buddah Base",
		ReplyMarkup: adminKeyboard(),
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send admin panel", "error", err, "chat_id", chatID)
	}
}

func (h adminCallbackHandler) sendWithBack(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "⬅️ Назад", CallbackData: "admin_back"},
			}},
		},
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send admin view", "error", err, "chat_id", chatID)
	}
}

func (h adminCallbackHandler) showUsers(ctx context.Context, b *bot.Bot, chatID int64) {
	text, err := h.deps.Admin.ListUsers(ctx)
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to list users", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	h.sendWithBack(ctx, b, chatID, text)
}

func (h adminCallbackHandler) showStats(ctx context.Context, b *bot.Bot, chatID int64) {
	stats, err := h.deps.Admin.Stats(ctx)
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to collect stats", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	text := h.deps.Admin.FormatStats(stats)

	if h.deps.Invites != nil {
		if title, count, err := h.deps.Invites.GroupInfo(ctx); err == nil {
			text += fmt.Sprintf("\n\n👥 Группа «%s»: %d участников", title, count)
		}
	}
	h.sendWithBack(ctx, b, chatID, text)
}

func (h adminCallbackHandler) exportCSV(ctx context.Context, b *bot.Bot, chatID int64) {
	data, err := h.deps.Admin.ExportCSV(ctx)
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "CSV export failed", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	filename := fmt.Sprintf("subscribers_%s.csv", time.Now().Format("2006-01-02"))
	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytesReader(data)},
		Caption:  "📄 Экспорт базы подписчиков",
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send CSV document", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
	}
}

func (h adminCallbackHandler) resetQuotas(ctx context.Context, b *bot.Bot, chatID int64) {
	if err := h.deps.Admin.ResetAllQuotas(ctx); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Quota reset failed", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	sendText(ctx, b, h.deps, chatID, "🔄 Лимиты AI-вопросов сброшены для всех пользователей")
}
