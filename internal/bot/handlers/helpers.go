package handlers

import (
	"bytes"
	"io"
	"strings"

	"github.com/go-telegram/bot/models"
)

// bytesReader adapts an in-memory document for file upload params.
func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

// commandArgs returns the text after the command itself, with a possible
// @botname suffix on the command stripped.
func commandArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// isPrivateChat reports whether the message arrived in a one-on-one chat.
func isPrivateChat(msg *models.Message) bool {
	return msg.Chat.Type == models.ChatTypePrivate
}

// mentionsBot reports whether the message text mentions the bot by
// username. Empty username (identity not yet loaded) never matches.
func mentionsBot(text, botUsername string) bool {
	if botUsername == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), "@"+strings.ToLower(botUsername))
}

// isReplyToBot reports whether the message replies to one of the bot's own
// messages.
func isReplyToBot(msg *models.Message, botID int64) bool {
	return msg.ReplyToMessage != nil &&
		msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.ID == botID
}

// shouldEngageInGroup decides whether a group message deserves a reply.
// Private chats are always engaged; in groups the bot only reacts to
// recognized intent keywords, direct mentions, or replies to itself.
func shouldEngageInGroup(deps HandlerDeps, msg *models.Message) bool {
	if isPrivateChat(msg) {
		return true
	}

	if deps.Classifier != nil && deps.Classifier.Matches(msg.Text) {
		return true
	}
	if mentionsBot(msg.Text, deps.Config.Telegram.BotInfo.Username) {
		return true
	}
	return isReplyToBot(msg, deps.Config.Telegram.BotInfo.ID)
}

// callbackMessage extracts the reachable message a callback query was
// attached to, or nil when the message is inaccessible.
func callbackMessage(update *models.Update) *models.Message {
	if update.CallbackQuery == nil {
		return nil
	}
	msg := update.CallbackQuery.Message.Message
	if msg == nil || msg.Date == 0 {
		return nil
	}
	return msg
}

// displayName renders a user's full name for store rows and listings.
func displayName(user *models.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	return name
}
