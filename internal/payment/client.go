// Package payment integrates with the YooKassa payments API: checkout
// session creation, status polling, and success processing.
package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/buddahbase/buddahbot/internal/config"
)

// Checkout session status values as reported by the gateway. A session that
// never succeeds simply stays pending; there is no failed handling.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
)

// Checkout describes one payment attempt at the gateway.
type Checkout struct {
	ID              string
	Status          string
	ConfirmationURL string
	Amount          string
	Currency        string
	Metadata        map[string]string
}

// PrincipalID extracts the Telegram user id round-tripped through the
// checkout metadata at creation time. Returns 0 when absent or malformed.
func (c *Checkout) PrincipalID() int64 {
	raw, ok := c.Metadata["telegram_id"]
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type checkoutRequest struct {
	Amount       amountBody        `json:"amount"`
	Confirmation confirmationBody  `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

type amountBody struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationBody struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type checkoutResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       amountBody        `json:"amount"`
	Confirmation *confirmationBody `json:"confirmation"`
	Metadata     map[string]string `json:"metadata"`
}

// Client talks to the YooKassa REST API.
type Client struct {
	client   *resty.Client
	currency string
	logger   *slog.Logger
}

// NewClient creates a YooKassa client with basic auth and a bounded timeout.
func NewClient(cfg config.YooKassaConfig, currency string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.ShopID, cfg.SecretKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:   client,
		currency: currency,
		logger:   logger.With("component", "yookassa"),
	}
}

// Create opens a new checkout session for the given subscriber. It returns
// the session only when the gateway reports it pending; any other outcome
// is an error the caller turns into a generic payment-error message.
// Repeated calls create fresh, independent sessions.
func (c *Client) Create(ctx context.Context, principalID int64, amount int, description, returnURL string) (*Checkout, error) {
	body := checkoutRequest{
		Amount:       amountBody{Value: fmt.Sprintf("%d.00", amount), Currency: c.currency},
		Confirmation: confirmationBody{Type: "redirect", ReturnURL: returnURL},
		Capture:      true,
		Description:  description,
		Metadata:     map[string]string{"telegram_id": strconv.FormatInt(principalID, 10)},
	}

	var out checkoutResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Idempotence-Key", uuid.NewString()).
		SetBody(body).
		SetResult(&out).
		Post("/payments")
	if err != nil {
		c.logger.ErrorContext(ctx, "Error creating checkout", "principal_id", principalID, "error", err)
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}
	if resp.IsError() {
		c.logger.ErrorContext(ctx, "Error creating checkout", "principal_id", principalID, "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to create checkout: unexpected status %s", resp.Status())
	}

	if out.Status != StatusPending {
		c.logger.ErrorContext(ctx, "Checkout created with unexpected status", "principal_id", principalID, "checkout_status", out.Status)
		return nil, fmt.Errorf("checkout %s has unexpected status %q", out.ID, out.Status)
	}

	checkout := responseToCheckout(&out)
	c.logger.InfoContext(ctx, "Checkout created", "principal_id", principalID, "checkout_id", checkout.ID)
	return checkout, nil
}

// Find polls the gateway for the current state of a checkout session.
func (c *Client) Find(ctx context.Context, checkoutID string) (*Checkout, error) {
	if checkoutID == "" {
		return nil, fmt.Errorf("checkout id cannot be empty")
	}

	var out checkoutResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/payments/" + checkoutID)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error polling checkout", "checkout_id", checkoutID, "error", err)
		return nil, fmt.Errorf("failed to poll checkout %s: %w", checkoutID, err)
	}
	if resp.IsError() {
		c.logger.ErrorContext(ctx, "Error polling checkout", "checkout_id", checkoutID, "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to poll checkout %s: unexpected status %s", checkoutID, resp.Status())
	}

	return responseToCheckout(&out), nil
}

func responseToCheckout(out *checkoutResponse) *Checkout {
	checkout := &Checkout{
		ID:       out.ID,
		Status:   out.Status,
		Amount:   out.Amount.Value,
		Currency: out.Amount.Currency,
		Metadata: out.Metadata,
	}
	if out.Confirmation != nil {
		checkout.ConfirmationURL = out.Confirmation.ConfirmationURL
	}
	return checkout
}
