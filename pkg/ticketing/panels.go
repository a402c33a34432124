package ticketing

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/sproutsbot/sprouts/pkg/custom"
	"github.com/sproutsbot/sprouts/pkg/dataaccess"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
)

const panelIDLength = 8

const panelIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MessageDeleteStatus is the outcome of the best-effort panel message
// deletion, reported back to the caller's confirmation reply.
type MessageDeleteStatus int

const (
	// MessageDeleted means the panel message was deleted.
	MessageDeleted MessageDeleteStatus = iota

	// MessageAlreadyGone means the panel message no longer existed.
	MessageAlreadyGone

	// MessageForbidden means the bot lacked permission to delete it.
	MessageForbidden

	// MessageDeleteFailed means the deletion failed for another reason.
	MessageDeleteFailed
)

// PanelManager owns the panel records: creation, deletion, listing with lazy
// reconciliation, and spawning tickets through the lifecycle controller.
type PanelManager struct {
	// l is the logger.
	l *slog.Logger

	// panels is the panel store.
	panels dataaccess.IPanelDal

	// tickets is the ticket store, used for the existing-ticket pre-check
	// on panel spawns.
	tickets dataaccess.ITicketDal

	// guilds is the guild settings store.
	guilds dataaccess.IGuildDal

	// controller is the ticket lifecycle controller.
	controller *Controller

	// platform is the host chat platform.
	platform Platform
}

// NewPanelManager creates a new panel manager.
func NewPanelManager(l *slog.Logger, panels dataaccess.IPanelDal, tickets dataaccess.ITicketDal, guilds dataaccess.IGuildDal, controller *Controller, platform Platform) *PanelManager {
	return &PanelManager{
		l:          l,
		panels:     panels,
		tickets:    tickets,
		guilds:     guilds,
		controller: controller,
		platform:   platform,
	}
}

// CreatePanel posts a new panel message in the channel and stores the
// record. Staff only.
func (m *PanelManager) CreatePanel(ctx context.Context, guildID, channelID string, actor Member, title string) (*entities.Panel, error) {
	guild, err := m.guilds.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild settings: %w", err)
	}
	if !IsStaff(actor, &guild.Ticketing) {
		return nil, ErrPermissionDenied
	}

	if title == "" {
		title = "Support Tickets"
	}

	id, err := m.newPanelID(ctx)
	if err != nil {
		return nil, fmt.Errorf("error generating panel ID: %w", err)
	}

	panel := &entities.Panel{
		ID:            id,
		GuildID:       guildID,
		ChannelID:     channelID,
		Title:         title,
		CreatedBy:     actor.UserID,
		CreatedAt:     custom.Now(),
		CategoryID:    guild.Ticketing.CategoryID,
		DefaultReason: "Support Request",
	}

	msgID, err := m.platform.SendPanelMessage(ctx, panel)
	if err != nil {
		return nil, fmt.Errorf("error sending panel message: %w", err)
	}
	panel.MessageID = msgID

	if err := m.panels.SavePanel(ctx, panel); err != nil {
		return nil, fmt.Errorf("error saving panel: %w", err)
	}

	m.l.Info("Panel created",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyPanelID, panel.ID),
		slog.String(logging.KeyUserID, actor.UserID))
	return panel, nil
}

// DeletePanel removes a panel. The backing message deletion is best-effort
// and its outcome is reported; the record removal is unconditional.
func (m *PanelManager) DeletePanel(ctx context.Context, guildID string, actor Member, panelID string) (MessageDeleteStatus, error) {
	guild, err := m.guilds.GetGuildByID(ctx, guildID)
	if err != nil {
		return MessageDeleteFailed, fmt.Errorf("error getting guild settings: %w", err)
	}
	if !IsStaff(actor, &guild.Ticketing) {
		return MessageDeleteFailed, ErrPermissionDenied
	}

	panel, err := m.panels.GetPanel(ctx, panelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return MessageDeleteFailed, ErrPanelNotFound
	} else if err != nil {
		return MessageDeleteFailed, fmt.Errorf("error getting panel: %w", err)
	}

	// Panels can only be deleted from their own guild.
	if panel.GuildID != guildID {
		return MessageDeleteFailed, ErrPanelNotFound
	}

	status := MessageDeleted
	switch err := m.platform.DeleteMessage(ctx, panel.ChannelID, panel.MessageID); {
	case err == nil:
	case errors.Is(err, ErrMessageGone):
		status = MessageAlreadyGone
	case errors.Is(err, ErrForbidden):
		status = MessageForbidden
	default:
		status = MessageDeleteFailed
		m.l.Warn("Error deleting panel message",
			slog.String(logging.KeyPanelID, panelID),
			slog.String(logging.KeyError, err.Error()))
	}

	if err := m.panels.DeletePanel(ctx, panelID); err != nil {
		return status, fmt.Errorf("error deleting panel record: %w", err)
	}

	m.l.Info("Panel deleted",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyPanelID, panelID),
		slog.String(logging.KeyUserID, actor.UserID))
	return status, nil
}

// ListPanels lists the guild's panels, reconciling as it goes: any record
// whose backing message no longer exists is dropped. The pruned panel IDs
// are returned alongside the live records.
func (m *PanelManager) ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, []string, error) {
	panels, err := m.panels.ListPanels(ctx, guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing panels: %w", err)
	}

	live := make([]*entities.Panel, 0, len(panels))
	var pruned []string
	for _, p := range panels {
		exists, err := m.platform.MessageExists(ctx, p.ChannelID, p.MessageID)
		if err != nil {
			m.l.Warn("Error checking panel message",
				slog.String(logging.KeyPanelID, p.ID),
				slog.String(logging.KeyError, err.Error()))
			live = append(live, p)
			continue
		}
		if exists {
			live = append(live, p)
			continue
		}

		if err := m.panels.DeletePanel(ctx, p.ID); err != nil {
			m.l.Error("Error pruning panel record",
				slog.String(logging.KeyPanelID, p.ID),
				slog.String(logging.KeyError, err.Error()))
			continue
		}
		pruned = append(pruned, p.ID)
	}
	return live, pruned, nil
}

// SpawnTicket opens a ticket through the panel's configuration. Users that
// already hold an open ticket are rejected before the creation path runs.
func (m *PanelManager) SpawnTicket(ctx context.Context, panelID string, user Member) (*entities.Ticket, error) {
	panel, err := m.panels.GetPanel(ctx, panelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrPanelNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", err)
	}

	_, err = m.tickets.GetOpenTicketForUser(ctx, panel.GuildID, user.UserID)
	if err == nil {
		return nil, ErrExistingTicket
	} else if !errors.Is(err, dataaccess.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing ticket: %w", err)
	}

	return m.controller.Open(ctx, OpenRequest{
		GuildID:    panel.GuildID,
		Creator:    user,
		Reason:     panel.DefaultReason,
		PanelID:    panel.ID,
		CategoryID: panel.CategoryID,
	})
}

// newPanelID generates a random panel ID, collision-checked against the
// existing records.
func (m *PanelManager) newPanelID(ctx context.Context) (string, error) {
	for {
		id, err := randomPanelID()
		if err != nil {
			return "", err
		}

		_, err = m.panels.GetPanel(ctx, id)
		if errors.Is(err, dataaccess.ErrNotFound) {
			return id, nil
		} else if err != nil {
			return "", err
		}
		// Collision, try again.
	}
}

func randomPanelID() (string, error) {
	b := make([]byte, panelIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(panelIDAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = panelIDAlphabet[n.Int64()]
	}
	return string(b), nil
}
