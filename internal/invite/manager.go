// Package invite manages the private group: single-use invite links,
// membership checks, and group info.
package invite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// InviteTTL bounds how long an issued join link stays redeemable.
const InviteTTL = time.Hour

// Manager issues invite links for the closed group and answers membership
// questions.
type Manager struct {
	bot     *bot.Bot
	groupID int64
	logger  *slog.Logger
}

// NewManager creates a Manager for the configured group.
func NewManager(b *bot.Bot, groupID int64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		bot:     b,
		groupID: groupID,
		logger:  logger.With("component", "invite_manager"),
	}
}

// CreateInviteLink requests a single-use join link that expires in one
// hour and admits exactly one member. The caller substitutes a
// contact-admin message on failure; a paid activation is never rolled back
// because a link could not be issued.
func (m *Manager) CreateInviteLink(ctx context.Context) (string, error) {
	expireAt := time.Now().Add(InviteTTL)

	link, err := m.bot.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{
		ChatID:      m.groupID,
		ExpireDate:  int(expireAt.Unix()),
		MemberLimit: 1,
		Name:        "Подписка " + time.Now().Format("02.01 15:04"),
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "Error creating invite link", "group_id", m.groupID, "error", err)
		return "", fmt.Errorf("failed to create invite link: %w", err)
	}

	m.logger.InfoContext(ctx, "Created one-time invite link",
		"group_id", m.groupID, "expires_at", expireAt, "member_limit", 1)
	return link.InviteLink, nil
}

// IsMember reports whether the user is currently in the group.
func (m *Manager) IsMember(ctx context.Context, userID int64) bool {
	member, err := m.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: m.groupID,
		UserID: userID,
	})
	if err != nil {
		return false
	}

	switch member.Type {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return true
	default:
		return false
	}
}

// GroupInfo returns the group title and member count for startup checks
// and admin stats.
func (m *Manager) GroupInfo(ctx context.Context) (title string, memberCount int, err error) {
	chat, err := m.bot.GetChat(ctx, &bot.GetChatParams{ChatID: m.groupID})
	if err != nil {
		return "", 0, fmt.Errorf("failed to get group info: %w", err)
	}

	count, err := m.bot.GetChatMemberCount(ctx, &bot.GetChatMemberCountParams{ChatID: m.groupID})
	if err != nil {
		return chat.Title, 0, fmt.Errorf("failed to get member count: %w", err)
	}

	return chat.Title, count, nil
}
