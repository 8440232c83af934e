package handlers

import (
	"log/slog"

	"github.com/buddahbase/buddahbot/internal/activation"
	"github.com/buddahbase/buddahbot/internal/admin"
	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/consultant"
	"github.com/buddahbase/buddahbot/internal/entitlement"
	"github.com/buddahbase/buddahbot/internal/intent"
	"github.com/buddahbase/buddahbot/internal/invite"
	"github.com/buddahbase/buddahbot/internal/payment"
	"github.com/buddahbase/buddahbot/internal/store"
)

// HandlerDeps provides dependencies for Telegram command handlers.
// Payments, PaymentSvc, Invites and Consultant are nil when the matching
// feature is not configured; handlers answer with the disabled message then.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Store       store.Store
	Entitlement *entitlement.Service
	Payments    *payment.Client
	PaymentSvc  *payment.Service
	Activation  *activation.Flow
	Invites     *invite.Manager
	Consultant  *consultant.Responder
	Classifier  *intent.Classifier
	Admin       *admin.Panel
	AdminState  *AdminState
}
