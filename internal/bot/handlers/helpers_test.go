package handlers

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/intent"
)

func groupDeps() HandlerDeps {
	cfg := &config.Config{}
	cfg.Telegram.BotInfo = config.BotInfo{ID: 100, Username: "buddahbot"}
	cfg.Telegram.AdminContact = "buddah_admin"
	cfg.Messages = config.DefaultMessages
	cfg.Keywords = config.KeywordsConfig{
		Files:      config.DefaultFilesKeywords,
		Join:       config.DefaultJoinKeywords,
		Engagement: config.DefaultEngagementKeywords,
	}
	return HandlerDeps{
		Config:     cfg,
		Classifier: intent.NewClassifier(cfg.Keywords),
	}
}

func groupMessage(text string) *models.Message {
	return &models.Message{
		Text: text,
		Chat: models.Chat{ID: -200, Type: models.ChatTypeSupergroup},
	}
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "как дела?", commandArgs("/monk как дела?"))
	assert.Equal(t, "", commandArgs("/monk"))
	assert.Equal(t, "запрос", commandArgs("/materials   запрос"))
}

func TestShouldEngageAlwaysInPrivate(t *testing.T) {
	deps := groupDeps()
	msg := &models.Message{
		Text: "просто привет",
		Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate},
	}
	assert.True(t, shouldEngageInGroup(deps, msg))
}

func TestShouldEngageInGroupOnKeyword(t *testing.T) {
	deps := groupDeps()

	assert.True(t, shouldEngageInGroup(deps, groupMessage("сколько стоит подписка?")))
	assert.False(t, shouldEngageInGroup(deps, groupMessage("обычный разговор без триггеров")))
}

func TestShouldEngageInGroupOnMention(t *testing.T) {
	deps := groupDeps()

	assert.True(t, shouldEngageInGroup(deps, groupMessage("привет, @BuddahBot, ты тут?")))
}

func TestShouldEngageInGroupOnReplyToBot(t *testing.T) {
	deps := groupDeps()

	msg := groupMessage("обычный текст")
	msg.ReplyToMessage = &models.Message{From: &models.User{ID: 100}}
	assert.True(t, shouldEngageInGroup(deps, msg))

	msg.ReplyToMessage.From.ID = 999
	assert.False(t, shouldEngageInGroup(deps, msg))
}

func TestGroupReplyMatchesIntent(t *testing.T) {
	deps := groupDeps()

	assert.Contains(t, groupReply(deps, "где скачать файлы?"), "📁")
	assert.Contains(t, groupReply(deps, "как вступить в группу?"), "ℹ️")
	assert.Contains(t, groupReply(deps, "расскажите про нейросети"), "🔥")
}

func TestGroupReplyAnswersMentionWithoutKeyword(t *testing.T) {
	deps := groupDeps()

	// Engaged only through the mention; the classifier finds no category,
	// yet the message still gets a reply.
	text := "привет, @BuddahBot, ты тут?"
	assert.True(t, shouldEngageInGroup(deps, groupMessage(text)))

	reply := groupReply(deps, text)
	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "buddah_admin")
}

func TestGroupReplyAnswersReplyToBot(t *testing.T) {
	deps := groupDeps()

	msg := groupMessage("обычный текст")
	msg.ReplyToMessage = &models.Message{From: &models.User{ID: 100}}
	assert.True(t, shouldEngageInGroup(deps, msg))
	assert.NotEmpty(t, groupReply(deps, msg.Text))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Анна Иванова", displayName(&models.User{FirstName: "Анна", LastName: "Иванова"}))
	assert.Equal(t, "Анна", displayName(&models.User{FirstName: "Анна"}))
	assert.Equal(t, "anna", displayName(&models.User{Username: "anna"}))
	assert.Equal(t, "", displayName(nil))
}

func TestAdminStateTakeClears(t *testing.T) {
	state := NewAdminState()
	state.Set(1, actionBroadcast)

	action, ok := state.Take(1)
	assert.True(t, ok)
	assert.Equal(t, actionBroadcast, action)

	_, ok = state.Take(1)
	assert.False(t, ok)
}

func TestAdminStateSetReplaces(t *testing.T) {
	state := NewAdminState()
	state.Set(1, actionBroadcast)
	state.Set(1, actionAddMaterial)

	action, _ := state.Take(1)
	assert.Equal(t, actionAddMaterial, action)
}
