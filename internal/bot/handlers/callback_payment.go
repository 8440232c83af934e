package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Callback data for the payment flow. check_payment_ carries the checkout
// session id as a suffix.
const (
	CallbackPaySubscription = "pay_subscription"
	CallbackCheckPayment    = "check_payment_"
)

// NewPayCallbackHandler returns the handler for the "pay" button: it
// creates a checkout session and offers the confirmation link.
func NewPayCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return payCallbackHandler{deps}.Handle
}

type payCallbackHandler struct {
	deps HandlerDeps
}

func (h payCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "pay_callback")

	if update.CallbackQuery == nil {
		return
	}
	answerCallback(ctx, b, update.CallbackQuery.ID)

	msg := callbackMessage(update)
	if msg == nil {
		log.WarnContext(ctx, "Pay callback without accessible message", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID
	userID := update.CallbackQuery.From.ID

	if h.deps.Payments == nil {
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	sub := h.deps.Config.Subscription
	description := fmt.Sprintf("Подписка Buddah Base AI на %d дней", sub.Days)

	checkout, err := h.deps.Payments.Create(ctx, userID, sub.Price, description, h.deps.Config.YooKassa.ReturnURL)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create checkout session", "user_id", userID, "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.PaymentError)
		return
	}

	if h.deps.Store != nil {
		if err := h.deps.Store.UpdatePayment(ctx, userID, checkout.ConfirmationURL, "yookassa"); err != nil {
			log.WarnContext(ctx, "Failed to record checkout session", "user_id", userID, "error", err)
		}
	}

	log.InfoContext(ctx, "Checkout session created", "user_id", userID, "checkout_id", checkout.ID)

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf(h.deps.Config.Messages.PaymentPrompt, sub.Price, sub.Days),
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: "💳 Перейти к оплате", URL: checkout.ConfirmationURL}},
				{{Text: "✅ Я оплатил", CallbackData: CallbackCheckPayment + checkout.ID}},
			},
		},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send payment prompt", "error", err, "chat_id", chatID)
	}
}

// NewCheckPaymentCallbackHandler returns the handler for the "I paid"
// button: it verifies the checkout and completes activation on success.
func NewCheckPaymentCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return checkPaymentCallbackHandler{deps}.Handle
}

type checkPaymentCallbackHandler struct {
	deps HandlerDeps
}

func (h checkPaymentCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "check_payment_callback")

	if update.CallbackQuery == nil {
		return
	}
	answerCallback(ctx, b, update.CallbackQuery.ID)

	msg := callbackMessage(update)
	if msg == nil {
		log.WarnContext(ctx, "Check payment callback without accessible message", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID
	userID := update.CallbackQuery.From.ID

	checkoutID := strings.TrimPrefix(update.CallbackQuery.Data, CallbackCheckPayment)
	if checkoutID == "" || h.deps.PaymentSvc == nil || h.deps.Activation == nil {
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.FeatureDisabled)
		return
	}

	principalID, err := h.deps.PaymentSvc.ProcessSuccessful(ctx, checkoutID)
	if err != nil {
		log.ErrorContext(ctx, "Payment verification failed", "checkout_id", checkoutID, "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	if principalID == 0 {
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.PaymentPending)
		return
	}
	if principalID != userID {
		// Metadata decides who gets the subscription, not who pressed the button.
		log.WarnContext(ctx, "Checkout belongs to a different user",
			"checkout_id", checkoutID, "pressed_by", userID, "paid_by", principalID)
	}

	inviteLink, err := h.deps.Activation.Complete(ctx, principalID, "yookassa")
	if err != nil {
		log.ErrorContext(ctx, "Activation failed after confirmed payment", "user_id", principalID, "error", err)
		sendText(ctx, b, h.deps, chatID, h.deps.Config.Messages.ActivationError)
		return
	}

	sendText(ctx, b, h.deps, chatID, successMessage(h.deps, inviteLink))
	log.InfoContext(ctx, "Subscription activated via check button", "user_id", principalID, "checkout_id", checkoutID)
}

// successMessage renders the post-activation text, substituting the
// contact-admin fallback when no invite link could be issued.
func successMessage(deps HandlerDeps, inviteLink string) string {
	sub := deps.Config.Subscription
	if inviteLink == "" {
		inviteLink = fmt.Sprintf(deps.Config.Messages.InviteError, deps.Config.Telegram.AdminContact)
	}
	return fmt.Sprintf(deps.Config.Messages.PaymentSuccess, sub.Days, sub.DailyLimit, inviteLink)
}

func answerCallback(ctx context.Context, b *bot.Bot, callbackID string) {
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID})
}

func sendText(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}
