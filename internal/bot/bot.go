// Package bot implements lifecycle management and component orchestration
// for the Buddah Base subscription bot: the Telegram listener, the task
// scheduler and the payment webhook receiver.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/webhook"
)

// Bot represents the main application and manages its components' lifecycle.
// tgBot and webhookSrv may each be nil when the corresponding feature is not
// configured; the remaining components still run.
type Bot struct {
	logger     *slog.Logger
	cfg        *config.Config
	tgBot      *tgbot.Bot
	scheduler  *Scheduler
	webhookSrv *webhook.Server
}

// NewBot creates a new instance of the bot with all available components.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	webhookSrv *webhook.Server,
) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		cfg:        cfg,
		tgBot:      tgBot,
		scheduler:  scheduler,
		webhookSrv: webhookSrv,
	}
}

// Run starts all configured components and blocks until the context is
// cancelled or any component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	if b.tgBot != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram bot listener...")

			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram bot listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	} else {
		b.logger.Warn("Telegram listener disabled, running scheduler and webhook only")
	}

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.webhookSrv != nil {
		g.Go(func() error {
			if err := b.webhookSrv.Start(); err != nil {
				b.logger.Error("Webhook server failed", "error", err)
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping webhook server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := b.webhookSrv.Shutdown(shutdownCtx); err != nil {
				b.logger.Error("Error stopping webhook server", "error", err)
			}
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
