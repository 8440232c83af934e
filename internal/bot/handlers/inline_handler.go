package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/buddahbase/buddahbot/internal/intent"
)

// NewInlineQueryHandler returns the handler for inline queries. It offers
// a canned snippet matching the query's intent, so members can drop the
// subscription pitch into any chat.
func NewInlineQueryHandler(deps HandlerDeps) bot.HandlerFunc {
	return inlineQueryHandler{deps}.Handle
}

type inlineQueryHandler struct {
	deps HandlerDeps
}

func (h inlineQueryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "inline_query")

	if update.InlineQuery == nil {
		return
	}

	contact := h.deps.Config.Telegram.AdminContact
	var results []models.InlineQueryResult

	addArticle := func(id, title, text string) {
		results = append(results, &models.InlineQueryResultArticle{
			ID:    id,
			Title: title,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: text,
			},
		})
	}

	switch h.classify(update.InlineQuery.Query) {
	case intent.CategoryFiles:
		addArticle("files", "📁 Про материалы",
			fmt.Sprintf(h.deps.Config.Messages.FilesInfo, contact))
	case intent.CategoryJoin:
		addArticle("join", "ℹ️ Как вступить",
			fmt.Sprintf(h.deps.Config.Messages.GroupInfo, contact))
	default:
		addArticle("about", "🔥 О сообществе",
			fmt.Sprintf(h.deps.Config.Messages.Engagement, contact))
	}

	_, err := b.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: update.InlineQuery.ID,
		Results:       results,
		CacheTime:     300,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer inline query", "error", err)
	}
}

func (h inlineQueryHandler) classify(query string) intent.Category {
	if h.deps.Classifier == nil {
		return intent.CategoryNone
	}
	return h.deps.Classifier.Classify(query)
}
