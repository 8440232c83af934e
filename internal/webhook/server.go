// Package webhook receives payment gateway notifications and completes
// subscription activation for confirmed payments.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// eventPaymentSucceeded is the only gateway event the receiver acts on.
const eventPaymentSucceeded = "payment.succeeded"

// Resolver checks a checkout session and returns the paying subscriber id,
// or 0 when the payment has not actually succeeded.
type Resolver interface {
	ProcessSuccessful(ctx context.Context, checkoutID string) (int64, error)
}

// Activator completes activation and returns the invite link, if any.
type Activator interface {
	Complete(ctx context.Context, principalID int64, paymentMethod string) (string, error)
}

// Notifier delivers the post-activation message to the subscriber.
// A nil Notifier means the bot is not running; activation still happens.
type Notifier interface {
	NotifyActivated(ctx context.Context, principalID int64, inviteLink string)
}

// Server is the HTTP receiver for gateway notifications.
type Server struct {
	resolver  Resolver
	activator Activator
	notifier  Notifier
	log       *slog.Logger
	srv       *http.Server
}

type notification struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// NewServer builds the webhook receiver listening on addr with the payment
// notification mounted at path.
func NewServer(addr, path string, resolver Resolver, activator Activator, notifier Notifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		resolver:  resolver,
		activator: activator,
		notifier:  notifier,
		log:       log.With("component", "webhook"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", s.handleHealth)
	router.POST(path, s.handleNotification)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("Webhook server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleNotification processes one gateway notification. The gateway
// retries on non-2xx, so transient downstream failures return 500 and
// anything handled (including ignored events) returns 200.
func (s *Server) handleNotification(c *gin.Context) {
	var n notification
	if err := c.ShouldBindJSON(&n); err != nil {
		s.log.Warn("Malformed webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if n.Event != eventPaymentSucceeded {
		s.log.Debug("Ignoring webhook event", "event", n.Event)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if n.Object.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payment id"})
		return
	}

	ctx := c.Request.Context()

	principalID, err := s.resolver.ProcessSuccessful(ctx, n.Object.ID)
	if err != nil {
		s.log.Error("Failed to verify payment", "payment_id", n.Object.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if principalID == 0 {
		// The gateway said succeeded but verification disagrees; nothing
		// to activate and nothing to retry.
		s.log.Warn("Webhook payment not confirmed by gateway API", "payment_id", n.Object.ID)
		c.JSON(http.StatusOK, gin.H{"status": "not confirmed"})
		return
	}

	inviteLink, err := s.activator.Complete(ctx, principalID, "yookassa")
	if err != nil {
		s.log.Error("Failed to activate subscription from webhook", "user_id", principalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activation failed"})
		return
	}

	if s.notifier != nil {
		s.notifier.NotifyActivated(ctx, principalID, inviteLink)
	}

	s.log.Info("Webhook payment processed", "payment_id", n.Object.ID, "user_id", principalID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
