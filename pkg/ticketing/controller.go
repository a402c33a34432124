package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sproutsbot/sprouts/pkg/custom"
	"github.com/sproutsbot/sprouts/pkg/dataaccess"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
)

const (
	// DefaultConfirmWindow is how long a close request waits for the actor
	// to confirm before it is abandoned.
	DefaultConfirmWindow = 30 * time.Second

	// DefaultCloseGrace is how long a closed ticket's channel is kept
	// around so participants can read the closing notice.
	DefaultCloseGrace = 5 * time.Second
)

// Controller owns the ticket records and enforces the lifecycle transition
// rules. It is the sole writer of ticket state; everything it does to the
// host platform is a side-effect request, not owned state.
type Controller struct {
	// l is the logger.
	l *slog.Logger

	// tickets is the ticket store.
	tickets dataaccess.ITicketDal

	// guilds is the guild settings store.
	guilds dataaccess.IGuildDal

	// platform is the host chat platform.
	platform Platform

	// transcripts is the transcript exporter.
	transcripts Transcripts

	// pending is the close confirmation registry.
	pending *confirmations

	// confirmWindow is the close confirmation deadline.
	confirmWindow time.Duration

	// closeGrace is the delay before a closed ticket's channel is deleted.
	closeGrace time.Duration
}

// ControllerParams are the collaborators and knobs for a Controller.
type ControllerParams struct {
	Log           *slog.Logger
	Tickets       dataaccess.ITicketDal
	Guilds        dataaccess.IGuildDal
	Platform      Platform
	Transcripts   Transcripts
	ConfirmWindow time.Duration
	CloseGrace    time.Duration
}

// NewController creates a new ticket lifecycle controller.
func NewController(p ControllerParams) *Controller {
	if p.ConfirmWindow <= 0 {
		p.ConfirmWindow = DefaultConfirmWindow
	}
	if p.CloseGrace <= 0 {
		p.CloseGrace = DefaultCloseGrace
	}

	return &Controller{
		l:             p.Log,
		tickets:       p.Tickets,
		guilds:        p.Guilds,
		platform:      p.Platform,
		transcripts:   p.Transcripts,
		pending:       newConfirmations(),
		confirmWindow: p.ConfirmWindow,
		closeGrace:    p.CloseGrace,
	}
}

// OpenRequest describes a ticket creation.
type OpenRequest struct {
	// GuildID is the guild to open the ticket in.
	GuildID string

	// Creator is the user the ticket is opened for.
	Creator Member

	// Reason is the free text reason for the ticket.
	Reason string

	// PanelID is the panel that spawned the ticket, if any.
	PanelID string

	// CategoryID overrides the guild's ticket category when set.
	CategoryID string
}

// Open creates a new ticket: it validates the creator's open ticket count
// against the guild limit, creates the private channel, and writes the
// record. A channel creation failure aborts before any record is written.
func (c *Controller) Open(ctx context.Context, req OpenRequest) (*entities.Ticket, error) {
	guild, err := c.guilds.GetGuildByID(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild settings: %w", err)
	}

	count, err := c.tickets.CountOpenTickets(ctx, req.GuildID, req.Creator.UserID)
	if err != nil {
		return nil, fmt.Errorf("error counting open tickets: %w", err)
	}
	if count >= guild.Ticketing.MaxTicketsPerUser {
		return nil, ErrTicketLimitReached
	}

	number, err := c.tickets.NextTicketNumber(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error allocating ticket number: %w", err)
	}

	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	ticket := &entities.Ticket{
		ID:          newTicketID(),
		Number:      number,
		GuildID:     req.GuildID,
		CreatorID:   req.Creator.UserID,
		CreatorName: req.Creator.Username,
		PanelID:     req.PanelID,
		Reason:      reason,
		Status:      entities.TicketStatusOpen,
		CreatedAt:   custom.Now(),
	}

	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = guild.Ticketing.CategoryID
	}

	channelID, err := c.platform.CreateTicketChannel(ctx, ChannelCreate{
		GuildID:      req.GuildID,
		Name:         ticket.ChannelName(guild.Ticketing.NamingStyle),
		Topic:        fmt.Sprintf("Support ticket for %s | ID: %s", req.Creator.Username, ticket.ID),
		CategoryID:   categoryID,
		CreatorID:    req.Creator.UserID,
		StaffRoleIDs: guild.Ticketing.StaffRoleIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}
	ticket.ChannelID = channelID

	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// The welcome message is best-effort; the ticket exists either way.
	msgID, err := c.platform.SendWelcomeMessage(ctx, ticket, &guild.Ticketing)
	if err != nil {
		c.l.Error("Error sending welcome message",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	} else {
		ticket.WelcomeMessageID = msgID
		if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
			c.l.Error("Error saving welcome message ID",
				slog.String(logging.KeyTicketID, ticket.ID),
				slog.String(logging.KeyError, err.Error()))
		}
	}

	c.l.Info("Ticket opened",
		slog.String(logging.KeyGuildID, ticket.GuildID),
		slog.String(logging.KeyTicketID, ticket.ID),
		slog.String(logging.KeyUserID, ticket.CreatorID))
	return ticket, nil
}

// ticketByChannel resolves the ticket backing a channel, translating a
// missing record into ErrInvalidChannel.
func (c *Controller) ticketByChannel(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	ticket, err := c.tickets.GetTicketByChannel(ctx, guildID, channelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrInvalidChannel
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}

func (c *Controller) guildConfig(ctx context.Context, guildID string) (*entities.TicketingConfig, error) {
	guild, err := c.guilds.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild settings: %w", err)
	}
	return &guild.Ticketing, nil
}

// Claim assigns the acting staff member to the ticket. At most one claimant
// is allowed at a time.
func (c *Controller) Claim(ctx context.Context, guildID, channelID string, actor Member) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsOpen() {
		return nil, ErrTicketClosed
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if ticket.IsClaimed() {
		return nil, ErrAlreadyClaimed
	}

	ticket.ClaimedBy = actor.UserID
	ticket.ClaimedAt = custom.Now()
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	if err := c.platform.SetChannelTopic(ctx, ticket.ChannelID, fmt.Sprintf("Support ticket claimed by %s | ID: %s", actor.Username, ticket.ID)); err != nil {
		c.l.Warn("Error updating channel topic",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}
	return ticket, nil
}

// Unclaim releases the claim on the ticket. The claimant or any staff member
// can release it.
func (c *Controller) Unclaim(ctx context.Context, guildID, channelID string, actor Member) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsClaimed() {
		return nil, ErrNotClaimed
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if ticket.ClaimedBy != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	ticket.ClaimedBy = ""
	ticket.ClaimedAt = custom.Datetime{}
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	if err := c.platform.SetChannelTopic(ctx, ticket.ChannelID, fmt.Sprintf("Support ticket | ID: %s", ticket.ID)); err != nil {
		c.l.Warn("Error updating channel topic",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}
	return ticket, nil
}

// Transfer hands the ticket over to another user. The creator or staff can
// transfer; channel access moves with the ownership.
func (c *Controller) Transfer(ctx context.Context, guildID, channelID string, actor Member, newOwnerID string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsOpen() {
		return nil, ErrTicketClosed
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatorID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	oldOwnerID := ticket.CreatorID
	if err := c.platform.GrantAccess(ctx, ticket.ChannelID, newOwnerID); err != nil {
		return nil, fmt.Errorf("error granting channel access: %w", err)
	}
	if err := c.platform.RevokeAccess(ctx, ticket.ChannelID, oldOwnerID); err != nil {
		c.l.Warn("Error revoking channel access from previous owner",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyUserID, oldOwnerID),
			slog.String(logging.KeyError, err.Error()))
	}

	ticket.CreatorID = newOwnerID
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// RequestClose starts the close confirmation step. The ticket stays open and
// unmutated until ConfirmClose commits; if the window lapses with no
// response the request is abandoned.
func (c *Controller) RequestClose(ctx context.Context, guildID, channelID string, actor Member, reason string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsOpen() {
		return nil, ErrTicketClosed
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatorID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if reason == "" {
		reason = "No reason provided"
	}

	p := &pendingClose{
		guildID:   guildID,
		ticketID:  ticket.ID,
		channelID: ticket.ChannelID,
		actor:     actor,
		reason:    reason,
	}
	p.timer = time.AfterFunc(c.confirmWindow, func() {
		if !c.pending.expire(p) {
			return
		}
		c.l.Info("Close request expired with no confirmation",
			slog.String(logging.KeyTicketID, p.ticketID))
		if err := c.platform.SendNotice(context.Background(), p.channelID, "Close request timed out. No action taken."); err != nil {
			c.l.Warn("Error sending close expiry notice",
				slog.String(logging.KeyTicketID, p.ticketID),
				slog.String(logging.KeyError, err.Error()))
		}
	})
	c.pending.put(p)

	return ticket, nil
}

// ConfirmClose commits a pending close.
func (c *Controller) ConfirmClose(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	p := c.pending.take(ticketID)
	if p == nil || p.guildID != guildID {
		return nil, ErrNoPendingClose
	}
	return c.close(ctx, guildID, ticketID, p.actor, p.reason, false)
}

// CancelClose abandons a pending close, leaving the ticket open.
func (c *Controller) CancelClose(guildID, ticketID string) error {
	p := c.pending.take(ticketID)
	if p == nil || p.guildID != guildID {
		return ErrNoPendingClose
	}
	return nil
}

// ForceClose closes the ticket without the confirmation step. Administrators
// only; the close reason is tagged so the audit trail distinguishes it.
func (c *Controller) ForceClose(ctx context.Context, guildID, channelID string, actor Member, reason string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}
	if !IsAdmin(actor) {
		return nil, ErrPermissionDenied
	}

	if reason == "" {
		reason = "No reason provided"
	}
	return c.close(ctx, guildID, ticket.ID, actor, "Force closed: "+reason, true)
}

// close commits the OPEN -> CLOSED transition. It re-reads the ticket and
// no-ops if it is already closed, so racing close paths produce exactly one
// audit record and one channel deletion.
func (c *Controller) close(ctx context.Context, guildID, ticketID string, actor Member, reason string, force bool) (*entities.Ticket, error) {
	ticket, err := c.tickets.GetTicket(ctx, guildID, ticketID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	if !ticket.IsOpen() {
		return ticket, nil
	}

	// Transcript first, while the channel still has its history. A failure
	// here never blocks the close.
	url, _, err := c.transcripts.Generate(ctx, ticket)
	if err != nil {
		c.l.Error("Error generating transcript",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	} else {
		ticket.TranscriptURL = url
	}

	ticket.Status = entities.TicketStatusClosed
	ticket.ClosedBy = actor.UserID
	ticket.ClosedAt = custom.Now()
	ticket.CloseReason = reason
	ticket.ForceClosed = force
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// Everything below is best-effort. The transition has committed.
	if err := c.platform.NotifyClosed(ctx, ticket.CreatorID, ticket); err != nil {
		c.l.Warn("Error direct-messaging ticket creator",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyUserID, ticket.CreatorID),
			slog.String(logging.KeyError, err.Error()))
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		c.l.Error("Error getting guild settings for close logging",
			slog.String(logging.KeyGuildID, guildID),
			slog.String(logging.KeyError, err.Error()))
	} else {
		logChannel := cfg.TranscriptChannelID
		if logChannel == "" {
			logChannel = cfg.LogChannelID
		}
		if logChannel != "" {
			if err := c.platform.LogClosed(ctx, logChannel, ticket); err != nil {
				c.l.Warn("Error logging ticket close",
					slog.String(logging.KeyTicketID, ticket.ID),
					slog.String(logging.KeyError, err.Error()))
			}
		}
	}

	if err := c.platform.SendNotice(ctx, ticket.ChannelID, "Ticket closed. This channel will be deleted shortly."); err != nil {
		c.l.Warn("Error sending closing notice",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}

	// Grace delay before the channel goes, so participants can read the
	// notice. Not cancellable once the close has committed.
	channelID := ticket.ChannelID
	deleteReason := fmt.Sprintf("Ticket %s closed by %s", ticket.ID, actor.Username)
	time.AfterFunc(c.closeGrace, func() {
		if err := c.platform.DeleteChannel(context.Background(), channelID, deleteReason); err != nil {
			c.l.Error("Error deleting ticket channel",
				slog.String(logging.KeyTicketID, ticketID),
				slog.String(logging.KeyChannelID, channelID),
				slog.String(logging.KeyError, err.Error()))
		}
	})

	c.l.Info("Ticket closed",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyTicketID, ticket.ID),
		slog.String(logging.KeyUserID, actor.UserID))
	return ticket, nil
}

// Reopen reverts a closed ticket to open. Staff only, and only while the
// backing channel still exists. The close audit trail is retained.
func (c *Controller) Reopen(ctx context.Context, guildID, ticketID string, actor Member) (*entities.Ticket, error) {
	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	ticket, err := c.tickets.GetTicket(ctx, guildID, ticketID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	if ticket.IsOpen() {
		return nil, ErrTicketOpen
	}

	if ticket.ChannelID == "" {
		return nil, ErrChannelGone
	}
	exists, err := c.platform.ChannelExists(ctx, ticket.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("error checking channel: %w", err)
	}
	if !exists {
		return nil, ErrChannelGone
	}

	ticket.Status = entities.TicketStatusOpen
	ticket.ReopenedAt = custom.Now()
	ticket.ReopenedBy = actor.UserID
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	if err := c.platform.SendNotice(ctx, ticket.ChannelID, fmt.Sprintf("This ticket has been reopened by %s.", actor.Username)); err != nil {
		c.l.Warn("Error sending reopen notice",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}
	return ticket, nil
}

// Rename renames the ticket channel. Staff only.
func (c *Controller) Rename(ctx context.Context, guildID, channelID string, actor Member, name string) error {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return err
	}
	if !IsStaff(actor, cfg) {
		return ErrPermissionDenied
	}

	slug := "ticket-" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
	if err := c.platform.RenameChannel(ctx, ticket.ChannelID, slug); err != nil {
		return fmt.Errorf("error renaming channel: %w", err)
	}
	return nil
}

// SetTopic replaces the ticket's topic. The creator or staff can change it.
func (c *Controller) SetTopic(ctx context.Context, guildID, channelID string, actor Member, topic string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatorID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if err := c.platform.SetChannelTopic(ctx, ticket.ChannelID, topic); err != nil {
		return nil, fmt.Errorf("error setting channel topic: %w", err)
	}

	ticket.Reason = topic
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// Move moves the ticket channel under another category. Staff only.
func (c *Controller) Move(ctx context.Context, guildID, channelID string, actor Member, categoryID string) error {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return err
	}
	if !IsStaff(actor, cfg) {
		return ErrPermissionDenied
	}

	if err := c.platform.MoveChannel(ctx, ticket.ChannelID, categoryID); err != nil {
		return fmt.Errorf("error moving channel: %w", err)
	}
	return nil
}

// AddMember grants a user access to the ticket channel. Staff only.
func (c *Controller) AddMember(ctx context.Context, guildID, channelID string, actor Member, userID string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if err := c.platform.GrantAccess(ctx, ticket.ChannelID, userID); err != nil {
		return nil, fmt.Errorf("error granting channel access: %w", err)
	}

	ticket.AddMember(userID)
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// RemoveMember revokes a user's access to the ticket channel. Staff only.
func (c *Controller) RemoveMember(ctx context.Context, guildID, channelID string, actor Member, userID string) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if err := c.platform.RevokeAccess(ctx, ticket.ChannelID, userID); err != nil {
		return nil, fmt.Errorf("error revoking channel access: %w", err)
	}

	ticket.RemoveMember(userID)
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// Tag attaches or detaches a free text label on the ticket. Staff only.
func (c *Controller) Tag(ctx context.Context, guildID, channelID string, actor Member, tag string, remove bool) (*entities.Ticket, error) {
	ticket, err := c.ticketByChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := c.guildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !IsStaff(actor, cfg) {
		return nil, ErrPermissionDenied
	}

	if remove {
		ticket.RemoveTag(tag)
	} else {
		ticket.AddTag(tag)
	}
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}
	return ticket, nil
}

// HandleChannelDeleted reconciles a channel deletion that happened outside
// the close path. Open tickets whose channel was removed out-of-band are
// dropped so they stop counting against the creator's limit; closed tickets
// just lose their channel reference.
func (c *Controller) HandleChannelDeleted(ctx context.Context, guildID, channelID string) error {
	ticket, err := c.tickets.GetTicketByChannel(ctx, guildID, channelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error getting ticket: %w", err)
	}

	if ticket.IsOpen() {
		c.l.Info("Removing orphaned ticket record",
			slog.String(logging.KeyGuildID, guildID),
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyChannelID, channelID))
		if err := c.tickets.DeleteTicket(ctx, guildID, ticket.ID); err != nil {
			return fmt.Errorf("error deleting orphaned ticket: %w", err)
		}
		return nil
	}

	ticket.ChannelID = ""
	if err := c.tickets.SaveTicket(ctx, ticket); err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}
	return nil
}

// newTicketID allocates an opaque ticket identifier.
func newTicketID() string {
	return uuid.NewString()[:8]
}
