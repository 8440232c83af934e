package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/buddahbase/buddahbot/internal/intent"
)

// NewDefaultHandler returns the fallback handler for every update no
// command or callback matched: plain-text messages, group chatter, and
// new member joins.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return defaultHandler{deps}.Handle
}

type defaultHandler struct {
	deps HandlerDeps
}

func (h defaultHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.InlineQuery != nil {
		NewInlineQueryHandler(h.deps)(ctx, b, update)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	if len(msg.NewChatMembers) > 0 {
		h.welcomeNewMembers(ctx, b, msg)
		return
	}

	if msg.From == nil || msg.Text == "" {
		return
	}

	// A pending admin panel action consumes the admin's next message.
	if h.deps.Config.Telegram.IsAdmin(msg.From.ID) && h.deps.AdminState != nil {
		if action, ok := h.deps.AdminState.Take(msg.From.ID); ok {
			h.runAdminAction(ctx, b, msg, action)
			return
		}
	}

	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	if isPrivateChat(msg) {
		h.answerPrivate(ctx, b, msg)
		return
	}

	if !shouldEngageInGroup(h.deps, msg) {
		return
	}
	h.answerGroup(ctx, b, msg)
}

// answerPrivate treats any plain private message as an AI question.
func (h defaultHandler) answerPrivate(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if h.deps.Consultant == nil {
		sendText(ctx, b, h.deps, msg.Chat.ID,
			fmt.Sprintf(h.deps.Config.Messages.Welcome, h.deps.Config.Telegram.AdminContact))
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: msg.Chat.ID,
		Action: models.ChatActionTyping,
	})

	answer := h.deps.Consultant.Answer(ctx, msg.From.ID, msg.Text)
	sendText(ctx, b, h.deps, msg.Chat.ID, answer)
}

// answerGroup replies to an engaged group message according to the
// recognized intent.
func (h defaultHandler) answerGroup(ctx context.Context, b *bot.Bot, msg *models.Message) {
	sendText(ctx, b, h.deps, msg.Chat.ID, groupReply(h.deps, msg.Text))
}

// groupReply picks the response for a group message that already passed the
// engagement gate. File requests win over join questions; everything else,
// including messages engaged only through a mention or a reply to the bot,
// gets the engagement pitch.
func groupReply(deps HandlerDeps, text string) string {
	category := intent.CategoryNone
	if deps.Classifier != nil {
		category = deps.Classifier.Classify(text)
	}

	contact := deps.Config.Telegram.AdminContact
	switch category {
	case intent.CategoryFiles:
		return fmt.Sprintf(deps.Config.Messages.FilesInfo, contact)
	case intent.CategoryJoin:
		return fmt.Sprintf(deps.Config.Messages.GroupInfo, contact)
	default:
		return fmt.Sprintf(deps.Config.Messages.Engagement, contact)
	}
}

func (h defaultHandler) welcomeNewMembers(ctx context.Context, b *bot.Bot, msg *models.Message) {
	log := h.deps.Logger.With("handler", "new_member")

	for _, member := range msg.NewChatMembers {
		if member.IsBot {
			continue
		}
		name := strings.TrimSpace(member.FirstName + " " + member.LastName)
		log.InfoContext(ctx, "New member joined group", "user_id", member.ID, "chat_id", msg.Chat.ID)

		sendText(ctx, b, h.deps, msg.Chat.ID,
			fmt.Sprintf("🎉 Добро пожаловать в Buddah Base, %s!\nМатериалы — в закреплённых сообщениях.", name))
	}
}

// runAdminAction completes a two-step admin panel action with the text the
// admin just sent. /cancel aborts.
func (h defaultHandler) runAdminAction(ctx context.Context, b *bot.Bot, msg *models.Message, action string) {
	log := h.deps.Logger.With("handler", "admin_action")
	chatID := msg.Chat.ID

	if strings.EqualFold(strings.TrimSpace(msg.Text), "/cancel") {
		sendText(ctx, b, h.deps, chatID, "❎ Действие отменено")
		return
	}

	switch action {
	case actionBroadcast:
		h.broadcast(ctx, b, msg)
	case actionAddMaterial:
		if h.deps.Admin == nil {
			sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.FeatureDisabled)
			return
		}
		m, err := h.deps.Admin.AddMaterial(ctx, msg.Text, msg.From.Username)
		if err != nil {
			log.WarnContext(ctx, "Material rejected", "error", err)
			sendText(ctx, b, h.deps, chatID, "❌ Неверный формат. Ожидается: Название | Теги | URL")
			// Keep waiting for a corrected message.
			h.deps.AdminState.Set(msg.From.ID, actionAddMaterial)
			return
		}
		sendText(ctx, b, h.deps, chatID, fmt.Sprintf("✅ Материал «%s» добавлен", m.Title))
	default:
		log.WarnContext(ctx, "Unknown pending admin action", "action", action)
	}
}

func (h defaultHandler) broadcast(ctx context.Context, b *bot.Bot, msg *models.Message) {
	log := h.deps.Logger.With("handler", "broadcast")
	chatID := msg.Chat.ID

	if h.deps.Admin == nil {
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	targets, err := h.deps.Admin.BroadcastTargets(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve broadcast targets", "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	sent := 0
	for _, target := range targets {
		if target == chatID {
			continue
		}
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: target, Text: msg.Text}); err != nil {
			// Blocked bots and deleted accounts are expected; keep going.
			log.DebugContext(ctx, "Broadcast delivery failed", "chat_id", target, "error", err)
			continue
		}
		sent++
	}

	log.InfoContext(ctx, "Broadcast finished", "targets", len(targets), "sent", sent)
	sendText(ctx, b, h.deps, chatID, fmt.Sprintf("📢 Рассылка завершена: доставлено %d из %d", sent, len(targets)))
}
