// Package admin implements the administrative operations behind the admin
// panel: subscriber stats, user listings, broadcast targeting, material
// intake and CSV export.
package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/buddahbase/buddahbot/internal/store"
)

// maxListedUsers caps the user listing so it fits in one Telegram message.
const maxListedUsers = 50

// Panel exposes the admin operations. All reads go straight to the store;
// the panel holds no state of its own.
type Panel struct {
	store store.Store
	log   *slog.Logger
}

// NewPanel creates the admin panel over the given store.
func NewPanel(st store.Store, log *slog.Logger) *Panel {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Panel{store: st, log: log.With("component", "admin")}
}

// Stats summarizes the subscriber base.
type Stats struct {
	Total         int
	Active        int
	RequestsToday int
	ByMethod      map[string]int
}

// Stats counts all rows for the total; activity metrics (requests today,
// payment method breakdown) cover active subscribers only.
func (p *Panel) Stats(ctx context.Context) (*Stats, error) {
	subs, err := p.store.AllSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	st := &Stats{ByMethod: make(map[string]int)}
	for _, sub := range subs {
		st.Total++
		if sub.Status != store.StatusActive {
			continue
		}
		st.Active++
		st.RequestsToday += sub.DailyRequests
		method := "не указан"
		if sub.PaymentMethod != nil && *sub.PaymentMethod != "" {
			method = *sub.PaymentMethod
		}
		st.ByMethod[method]++
	}
	return st, nil
}

// FormatStats renders stats as a Telegram-ready message.
func (p *Panel) FormatStats(st *Stats) string {
	var sb strings.Builder
	sb.WriteString("📊 Статистика Buddah Base\n\n")
	sb.WriteString(fmt.Sprintf("👥 Всего пользователей: %d\n", st.Total))
	sb.WriteString(fmt.Sprintf("✅ Активных подписок: %d\n", st.Active))
	sb.WriteString(fmt.Sprintf("🤖 Вопросов к ИИ сегодня: %d\n", st.RequestsToday))

	if len(st.ByMethod) > 0 {
		sb.WriteString("\n💳 Способы оплаты:\n")
		methods := make([]string, 0, len(st.ByMethod))
		for m := range st.ByMethod {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		for _, m := range methods {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", m, st.ByMethod[m]))
		}
	}
	return sb.String()
}

// ListUsers renders up to maxListedUsers subscribers, newest last.
func (p *Panel) ListUsers(ctx context.Context) (string, error) {
	subs, err := p.store.AllSubscribers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	if len(subs) == 0 {
		return "👥 Пользователей пока нет.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 Пользователи (%d):\n\n", len(subs)))
	for i, sub := range subs {
		if i >= maxListedUsers {
			sb.WriteString(fmt.Sprintf("\n… и ещё %d", len(subs)-maxListedUsers))
			break
		}
		mark := "❌"
		if sub.Status == store.StatusActive {
			mark = "✅"
		}
		name := sub.Name
		if name == "" {
			name = "Без имени"
		}
		username := sub.Username
		if username != "" {
			username = " @" + username
		}
		sb.WriteString(fmt.Sprintf("%s %s%s (ID: %d)\n", mark, name, username, sub.ID))
	}
	return sb.String(), nil
}

// BroadcastTargets returns the chat id of every active subscriber, the
// audience a broadcast goes to.
func (p *Panel) BroadcastTargets(ctx context.Context) ([]int64, error) {
	subs, err := p.store.ActiveSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve broadcast targets: %w", err)
	}

	targets := make([]int64, 0, len(subs))
	for _, sub := range subs {
		chatID := sub.ChatID
		if chatID == 0 {
			chatID = sub.ID
		}
		targets = append(targets, chatID)
	}
	return targets, nil
}

// ParseMaterialInput parses the admin material format "Название | Теги | URL".
func ParseMaterialInput(text string, addedBy string) (*store.Material, error) {
	parts := strings.Split(text, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected format: Название | Теги | URL")
	}

	title := strings.TrimSpace(parts[0])
	tags := strings.TrimSpace(parts[1])
	url := strings.TrimSpace(parts[2])
	if title == "" || url == "" {
		return nil, fmt.Errorf("title and url must not be empty")
	}

	return &store.Material{Title: title, Tags: tags, URL: url, AddedBy: addedBy}, nil
}

// AddMaterial validates and stores a knowledge-base entry submitted by an
// admin in the "Название | Теги | URL" format.
func (p *Panel) AddMaterial(ctx context.Context, text string, addedBy string) (*store.Material, error) {
	m, err := ParseMaterialInput(text, addedBy)
	if err != nil {
		return nil, err
	}
	if err := p.store.AddMaterial(ctx, m); err != nil {
		return nil, err
	}
	p.log.InfoContext(ctx, "Material added by admin", "title", m.Title, "admin_id", addedBy)
	return m, nil
}

// ResetAllQuotas zeroes every subscriber's daily AI counter immediately.
func (p *Panel) ResetAllQuotas(ctx context.Context) error {
	if err := p.store.ResetAllDailyCounts(ctx); err != nil {
		return err
	}
	p.log.InfoContext(ctx, "Daily AI quotas reset by admin")
	return nil
}
