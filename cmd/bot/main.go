// Package main contains the entrypoint for the Buddah Base subscription
// bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/buddahbase/buddahbot/internal/activation"
	"github.com/buddahbase/buddahbot/internal/admin"
	"github.com/buddahbase/buddahbot/internal/bot"
	"github.com/buddahbase/buddahbot/internal/bot/handlers"
	"github.com/buddahbase/buddahbot/internal/bot/tasks"
	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/consultant"
	"github.com/buddahbase/buddahbot/internal/entitlement"
	"github.com/buddahbase/buddahbot/internal/intent"
	"github.com/buddahbase/buddahbot/internal/invite"
	"github.com/buddahbase/buddahbot/internal/logger"
	"github.com/buddahbase/buddahbot/internal/payment"
	"github.com/buddahbase/buddahbot/internal/store"
	"github.com/buddahbase/buddahbot/internal/telegram"
	"github.com/buddahbase/buddahbot/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns an exit code. Feature sections left unconfigured
// disable the dependent component with a warning instead of failing.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	var st store.Store
	var entSvc *entitlement.Service
	if cfg.Supabase.Enabled() {
		st = store.NewStore(cfg.Supabase, log)
		entSvc = entitlement.NewService(st, log, cfg.Subscription.Days, cfg.Subscription.DailyLimit)
	} else {
		log.Warn("Table store not configured; subscriptions and AI quota are disabled")
	}

	var payClient *payment.Client
	var paySvc *payment.Service
	if cfg.YooKassa.Enabled() {
		payClient = payment.NewClient(cfg.YooKassa, cfg.Subscription.Currency, log)
		paySvc = payment.NewService(payClient, log)
	} else {
		log.Warn("Payment gateway not configured; checkout is disabled")
	}

	var responder *consultant.Responder
	if cfg.Gemini.Enabled() && entSvc != nil {
		generator, genErr := consultant.NewClient(ctx, cfg.Gemini, log)
		if genErr != nil {
			log.Error("Failed to initialize AI client", "error", genErr)
			return 1
		}
		responder = consultant.NewResponder(entSvc, st, generator, cfg.Messages, cfg.Subscription.DailyLimit, log)
	} else {
		log.Warn("AI consultant disabled", "gemini_configured", cfg.Gemini.Enabled(), "store_configured", st != nil)
	}

	classifier := intent.NewClassifier(cfg.Keywords)

	var tg *tgbot.Bot
	var inviteMgr *invite.Manager
	hDeps := handlers.HandlerDeps{
		Logger:      log,
		Config:      cfg,
		Store:       st,
		Entitlement: entSvc,
		Payments:    payClient,
		PaymentSvc:  paySvc,
		Consultant:  responder,
		Classifier:  classifier,
		AdminState:  handlers.NewAdminState(),
	}
	if st != nil {
		hDeps.Admin = admin.NewPanel(st, log)
	}

	if cfg.Telegram.Token != "" {
		botOpts := []tgbot.Option{
			tgbot.WithMiddlewares(logger.Middleware(log)),
			tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
		}
		tg, err = telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
		if err != nil {
			log.Error("Failed to create Telegram bot", "error", err)
			return 1
		}

		cfg.Telegram.BotInfo, err = telegram.FetchBotInfo(ctx, tg)
		if err != nil {
			log.Error("Failed to get bot info", "error", err)
			return 1
		}
		log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

		if cfg.Telegram.GroupID != 0 {
			inviteMgr = invite.NewManager(tg, cfg.Telegram.GroupID, log)
		} else {
			log.Warn("Group id not configured; invite links are disabled")
		}
	} else {
		log.Warn("Telegram token not configured; running without the bot listener")
	}

	var flow *activation.Flow
	if entSvc != nil {
		flow = activation.NewFlow(entSvc, inviteOrNil(inviteMgr), st, log)
	}
	hDeps.Invites = inviteMgr
	hDeps.Activation = flow

	if tg != nil {
		if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
			log.Error("Failed to register Telegram handlers", "error", err)
			return 1
		}
	}

	taskMap := map[string]tasks.ScheduledTaskFunc{}
	if st != nil {
		taskMap = tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Store: st, Config: cfg})
	} else {
		log.Warn("Scheduled tasks disabled without a table store")
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var webhookSrv *webhook.Server
	if cfg.Webhook.Enabled && paySvc != nil && flow != nil {
		var notifier webhook.Notifier
		if tg != nil {
			notifier = telegram.NewNotifier(tg, st, cfg, log)
		}
		webhookSrv = webhook.NewServer(cfg.Webhook.ListenAddr, cfg.Webhook.Path, paySvc, flow, notifier, log)
	} else if cfg.Webhook.Enabled {
		log.Warn("Webhook enabled but payment or activation is unavailable; webhook disabled")
	}

	app := bot.NewBot(log, cfg, tg, sched, webhookSrv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// inviteOrNil keeps the Inviter interface nil when no manager exists,
// instead of a non-nil interface holding a nil pointer.
func inviteOrNil(m *invite.Manager) activation.Inviter {
	if m == nil {
		return nil
	}
	return m
}
