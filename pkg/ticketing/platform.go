package ticketing

import (
	"context"
	"errors"

	"github.com/sproutsbot/sprouts/pkg/entities"
)

// Platform errors that callers distinguish when reporting best-effort work.
var (
	// ErrMessageGone is returned when a message no longer exists.
	ErrMessageGone = errors.New("message no longer exists")

	// ErrForbidden is returned when the bot lacks permission for the call.
	ErrForbidden = errors.New("missing permission")
)

// ChannelCreate describes the private channel to create for a new ticket.
type ChannelCreate struct {
	// GuildID is the guild to create the channel in.
	GuildID string

	// Name is the channel name.
	Name string

	// Topic is the channel topic.
	Topic string

	// CategoryID is the parent category, if any.
	CategoryID string

	// CreatorID is the user granted access alongside the staff roles.
	CreatorID string

	// StaffRoleIDs are the roles granted access to the channel.
	StaffRoleIDs []string
}

// Platform is the host chat platform. All calls are awaited I/O against the
// Discord REST API; the Controller issues them but does not own their
// formatting or retry behaviour.
type Platform interface {
	// CreateTicketChannel creates the private channel for a ticket and
	// returns its ID.
	CreateTicketChannel(ctx context.Context, data ChannelCreate) (string, error)

	// RenameChannel renames a channel.
	RenameChannel(ctx context.Context, channelID, name string) error

	// SetChannelTopic replaces a channel's topic.
	SetChannelTopic(ctx context.Context, channelID, topic string) error

	// MoveChannel moves a channel under another category.
	MoveChannel(ctx context.Context, channelID, categoryID string) error

	// DeleteChannel deletes a channel.
	DeleteChannel(ctx context.Context, channelID, reason string) error

	// ChannelExists reports whether a channel still exists.
	ChannelExists(ctx context.Context, channelID string) (bool, error)

	// GrantAccess grants a user access to a ticket channel.
	GrantAccess(ctx context.Context, channelID, userID string) error

	// RevokeAccess revokes a user's access to a ticket channel.
	RevokeAccess(ctx context.Context, channelID, userID string) error

	// SendNotice sends a plain notice to a channel.
	SendNotice(ctx context.Context, channelID, content string) error

	// SendWelcomeMessage sends the pinned welcome message with the ticket
	// action buttons and returns the message ID.
	SendWelcomeMessage(ctx context.Context, ticket *entities.Ticket, cfg *entities.TicketingConfig) (string, error)

	// SendPanelMessage posts a panel's interactive message and returns the
	// message ID.
	SendPanelMessage(ctx context.Context, panel *entities.Panel) (string, error)

	// DeleteMessage deletes a message, returning ErrMessageGone or
	// ErrForbidden where those apply.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// MessageExists reports whether a message still exists.
	MessageExists(ctx context.Context, channelID, messageID string) (bool, error)

	// NotifyClosed direct-messages the ticket creator with the close
	// summary and transcript link.
	NotifyClosed(ctx context.Context, userID string, ticket *entities.Ticket) error

	// LogClosed posts the close summary to the guild's transcript or log
	// channel.
	LogClosed(ctx context.Context, channelID string, ticket *entities.Ticket) error
}

// Transcripts renders a channel's message history to a static document and
// returns a retrievable URL alongside the local path it was written to.
type Transcripts interface {
	Generate(ctx context.Context, ticket *entities.Ticket) (url string, path string, err error)
}
