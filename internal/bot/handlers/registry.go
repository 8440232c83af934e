package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a handler with its match pattern and
// middleware, everything needed to register it with the bot.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot commands and
// callback handlers, keyed for logging.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/monk"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "monk",
		Handler:     NewMonkHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/materials"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "materials",
		Handler:     NewMaterialsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/status"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "status",
		Handler:     NewStatusHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers["/admin"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "admin",
		Handler:     NewAdminHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminMiddleware,
	}

	handlers["pay_subscription"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     CallbackPaySubscription,
		Handler:     NewPayCallbackHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["check_payment"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     CallbackCheckPayment,
		Handler:     NewCheckPaymentCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["admin_panel"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     CallbackAdminPrefix,
		Handler:     NewAdminCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}
