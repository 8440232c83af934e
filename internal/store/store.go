// Package store provides the data access layer over the remote PostgREST
// table store. All state lives in the remote tables; there is no local
// persistence. Reads that fail degrade to "absent" at the gate layer
// (fail closed); writes surface their errors to the caller.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/buddahbase/buddahbot/internal/config"
)

// Store defines the repository interface for subscribers and materials.
// IncrementDailyCount is a read-modify-write and is deliberately its own
// method so a conditional-update implementation can replace it without
// touching call sites.
type Store interface {
	GetSubscriber(ctx context.Context, id int64) (*Subscriber, error)
	CreateSubscriber(ctx context.Context, sub *Subscriber) error
	UpdatePayment(ctx context.Context, id int64, paymentLink, paymentMethod string) error
	Activate(ctx context.Context, id int64, paymentMethod string, until time.Time) error
	SaveInviteLink(ctx context.Context, id int64, inviteLink string) error
	IncrementDailyCount(ctx context.Context, id int64) error
	ResetAllDailyCounts(ctx context.Context) error
	Deactivate(ctx context.Context, id int64) error
	AllSubscribers(ctx context.Context) ([]Subscriber, error)
	ActiveSubscribers(ctx context.Context) ([]Subscriber, error)
	SearchMaterials(ctx context.Context, query string, limit int) ([]Material, error)
	AddMaterial(ctx context.Context, m *Material) error
}

type restStore struct {
	client           *resty.Client
	subscribersTable string
	materialsTable   string
	logger           *slog.Logger
}

// NewStore creates a Store backed by the PostgREST endpoint described in cfg.
func NewStore(cfg config.SupabaseConfig, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := resty.New().
		SetBaseURL(cfg.URL+"/rest/v1").
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.ServiceKey).
		SetHeader("Authorization", "Bearer "+cfg.ServiceKey).
		SetHeader("Content-Type", "application/json")

	return &restStore{
		client:           client,
		subscribersTable: cfg.SubscribersTable,
		materialsTable:   cfg.MaterialsTable,
		logger:           logger.With("component", "store"),
	}
}

func (s *restStore) GetSubscriber(ctx context.Context, id int64) (*Subscriber, error) {
	var rows []Subscriber
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetResult(&rows).
		Get("/" + s.subscribersTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting subscriber", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscriber %d: %w", id, err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error getting subscriber", "id", id, "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to get subscriber %d: unexpected status %s", id, resp.Status())
	}
	if len(rows) == 0 {
		s.logger.DebugContext(ctx, "No subscriber found", "id", id)
		return nil, nil
	}
	return &rows[0], nil
}

func (s *restStore) CreateSubscriber(ctx context.Context, sub *Subscriber) error {
	if sub == nil {
		return fmt.Errorf("cannot create nil subscriber")
	}
	if sub.ID == 0 {
		return fmt.Errorf("subscriber must have a non-zero id")
	}
	if sub.Status == "" {
		sub.Status = StatusInactive
	}
	if sub.Payed == "" {
		sub.Payed = "false"
	}
	if sub.CreatedAt == "" {
		sub.CreatedAt = FormatStoreTime(time.Now())
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(sub).
		Post("/" + s.subscribersTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating subscriber", "id", sub.ID, "error", err)
		return fmt.Errorf("failed to create subscriber %d: %w", sub.ID, err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error creating subscriber", "id", sub.ID, "status", resp.StatusCode())
		return fmt.Errorf("failed to create subscriber %d: unexpected status %s", sub.ID, resp.Status())
	}

	s.logger.DebugContext(ctx, "Subscriber created", "id", sub.ID)
	return nil
}

// patchSubscriber applies a partial update to a single subscriber row.
func (s *restStore) patchSubscriber(ctx context.Context, id int64, fields map[string]any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetBody(fields).
		Patch("/" + s.subscribersTable)
	if err != nil {
		return fmt.Errorf("failed to update subscriber %d: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to update subscriber %d: unexpected status %s", id, resp.Status())
	}
	return nil
}

func (s *restStore) UpdatePayment(ctx context.Context, id int64, paymentLink, paymentMethod string) error {
	err := s.patchSubscriber(ctx, id, map[string]any{
		"payment_link":   paymentLink,
		"payment_method": paymentMethod,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating payment data", "id", id, "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "Payment data updated", "id", id)
	return nil
}

// Activate unconditionally sets absolute fields, so calling it twice for
// the same payment has the same effect as calling it once.
func (s *restStore) Activate(ctx context.Context, id int64, paymentMethod string, until time.Time) error {
	err := s.patchSubscriber(ctx, id, map[string]any{
		"status":               StatusActive,
		"payed":                "true",
		"subscription_to_date": FormatStoreTime(until),
		"payment_method":       paymentMethod,
		"daily_requests":       0,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error activating subscription", "id", id, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Subscription activated", "id", id, "until", FormatStoreTime(until))
	return nil
}

// SaveInviteLink overwrites payment_link with the issued invite link.
// The row keeps it purely as an audit trail.
func (s *restStore) SaveInviteLink(ctx context.Context, id int64, inviteLink string) error {
	err := s.patchSubscriber(ctx, id, map[string]any{"payment_link": inviteLink})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving invite link", "id", id, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Invite link saved", "id", id)
	return nil
}

// IncrementDailyCount bumps daily_requests by one. Not atomic against a
// concurrent increment for the same subscriber; the blast radius is one
// extra AI answer.
func (s *restStore) IncrementDailyCount(ctx context.Context, id int64) error {
	sub, err := s.GetSubscriber(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("subscriber %d not found", id)
	}

	err = s.patchSubscriber(ctx, id, map[string]any{"daily_requests": sub.DailyRequests + 1})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error incrementing daily count", "id", id, "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "Daily count incremented", "id", id, "count", sub.DailyRequests+1)
	return nil
}

// ResetAllDailyCounts zeroes daily_requests for every row in one bulk update.
func (s *restStore) ResetAllDailyCounts(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"daily_requests": 0}).
		Patch("/" + s.subscribersTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error resetting daily counts", "error", err)
		return fmt.Errorf("failed to reset daily counts: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error resetting daily counts", "status", resp.StatusCode())
		return fmt.Errorf("failed to reset daily counts: unexpected status %s", resp.Status())
	}

	s.logger.InfoContext(ctx, "Daily counts reset for all subscribers")
	return nil
}

func (s *restStore) Deactivate(ctx context.Context, id int64) error {
	err := s.patchSubscriber(ctx, id, map[string]any{"status": StatusInactive})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deactivating subscriber", "id", id, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Subscriber deactivated", "id", id)
	return nil
}

// AllSubscribers returns every subscriber row ordered by creation time.
func (s *restStore) AllSubscribers(ctx context.Context) ([]Subscriber, error) {
	var rows []Subscriber
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("order", "created_at.asc").
		SetResult(&rows).
		Get("/" + s.subscribersTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing subscribers", "error", err)
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error listing subscribers", "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to list subscribers: unexpected status %s", resp.Status())
	}
	return rows, nil
}

// ActiveSubscribers returns every row with the stored status flag set to
// active. The flag can be stale between expiry and the nightly sweep; the
// admin surfaces filter on it deliberately, matching external behavior.
func (s *restStore) ActiveSubscribers(ctx context.Context) ([]Subscriber, error) {
	var rows []Subscriber
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("status", "eq."+StatusActive).
		SetResult(&rows).
		Get("/" + s.subscribersTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing active subscribers", "error", err)
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error listing active subscribers", "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to list active subscribers: unexpected status %s", resp.Status())
	}
	return rows, nil
}

// SearchMaterials matches the query as a case-insensitive substring of
// title or tags, in store-defined order. No ranking beyond store default.
func (s *restStore) SearchMaterials(ctx context.Context, query string, limit int) ([]Material, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []Material
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("or", fmt.Sprintf("(title.ilike.*%s*,tags.ilike.*%s*)", query, query)).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&rows).
		Get("/" + s.materialsTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error searching materials", "query", query, "error", err)
		return nil, fmt.Errorf("failed to search materials: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error searching materials", "query", query, "status", resp.StatusCode())
		return nil, fmt.Errorf("failed to search materials: unexpected status %s", resp.Status())
	}

	s.logger.DebugContext(ctx, "Materials search finished", "query", query, "count", len(rows))
	return rows, nil
}

func (s *restStore) AddMaterial(ctx context.Context, m *Material) error {
	if m == nil {
		return fmt.Errorf("cannot add nil material")
	}
	if m.Title == "" || m.URL == "" {
		return fmt.Errorf("material must have a title and a url")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(m).
		Post("/" + s.materialsTable)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding material", "title", m.Title, "error", err)
		return fmt.Errorf("failed to add material: %w", err)
	}
	if resp.IsError() {
		s.logger.ErrorContext(ctx, "Error adding material", "title", m.Title, "status", resp.StatusCode())
		return fmt.Errorf("failed to add material: unexpected status %s", resp.Status())
	}

	s.logger.InfoContext(ctx, "Material added", "title", m.Title, "added_by", m.AddedBy)
	return nil
}
