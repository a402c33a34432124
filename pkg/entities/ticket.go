package entities

import (
	"fmt"
	"strings"

	"github.com/sproutsbot/sprouts/pkg/custom"
	"golang.org/x/exp/slices"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	// TicketStatusOpen is an open ticket.
	TicketStatusOpen TicketStatus = "open"

	// TicketStatusClosed is a closed ticket.
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a support ticket and its backing channel.
type Ticket struct {
	// ID is the opaque identifier of the ticket, assigned at creation.
	ID string `json:"id" bson:"id"`

	// Number is the per guild sequence number of the ticket. It is used
	// for the "numbers" channel naming style.
	Number int `json:"number" bson:"number"`

	// GuildID is the ID of the guild that the ticket belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the dedicated ticket channel. It is cleared
	// when the channel is deleted.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// CreatorID is the ID of the user that the ticket is open for.
	CreatorID string `json:"creator_id" bson:"creator_id"`

	// CreatorName is the username of the creator at creation time.
	CreatorName string `json:"creator_name" bson:"creator_name"`

	// PanelID is the ID of the panel that spawned the ticket, if any.
	PanelID string `json:"panel_id,omitempty" bson:"panel_id,omitempty"`

	// Reason is the free text reason or topic of the ticket.
	Reason string `json:"reason" bson:"reason"`

	// Status is the lifecycle state of the ticket.
	Status TicketStatus `json:"status" bson:"status"`

	// ClaimedBy is the ID of the staff member that claimed the ticket.
	// Empty means unclaimed.
	ClaimedBy string `json:"claimed_by,omitempty" bson:"claimed_by,omitempty"`

	// ClaimedAt is the time that the ticket was claimed.
	ClaimedAt custom.Datetime `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`

	// Members are the users granted access to the channel beyond the
	// creator, who is always implicitly included.
	Members []string `json:"members,omitempty" bson:"members,omitempty"`

	// Tags are the free text labels attached to the ticket.
	Tags []string `json:"tags,omitempty" bson:"tags,omitempty"`

	// WelcomeMessageID is the ID of the pinned welcome message.
	WelcomeMessageID string `json:"welcome_message_id,omitempty" bson:"welcome_message_id,omitempty"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket was closed.
	ClosedAt custom.Datetime `json:"closed_at,omitempty" bson:"closed_at,omitempty"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// CloseReason is the reason that the ticket was closed with.
	CloseReason string `json:"close_reason,omitempty" bson:"close_reason,omitempty"`

	// ForceClosed is whether the ticket was closed by an administrator
	// without confirmation.
	ForceClosed bool `json:"force_closed,omitempty" bson:"force_closed,omitempty"`

	// ReopenedAt is the time that the ticket was last reopened.
	ReopenedAt custom.Datetime `json:"reopened_at,omitempty" bson:"reopened_at,omitempty"`

	// ReopenedBy is the ID of the staff member that last reopened the ticket.
	ReopenedBy string `json:"reopened_by,omitempty" bson:"reopened_by,omitempty"`

	// TranscriptURL is the URL of the transcript generated at close time.
	TranscriptURL string `json:"transcript_url,omitempty" bson:"transcript_url,omitempty"`
}

// IsOpen reports whether the ticket is open.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// IsClaimed reports whether the ticket is claimed.
func (t *Ticket) IsClaimed() bool {
	return t.ClaimedBy != ""
}

// HasMember reports whether the user has been granted access to the ticket.
// The creator is always a member.
func (t *Ticket) HasMember(userID string) bool {
	if userID == t.CreatorID {
		return true
	}
	return slices.Contains(t.Members, userID)
}

// AddMember grants the user access to the ticket. It is a no-op if the user
// is already a member.
func (t *Ticket) AddMember(userID string) {
	if t.HasMember(userID) {
		return
	}
	t.Members = append(t.Members, userID)
}

// RemoveMember revokes the user's access to the ticket.
func (t *Ticket) RemoveMember(userID string) {
	if idx := slices.Index(t.Members, userID); idx >= 0 {
		t.Members = slices.Delete(t.Members, idx, idx+1)
	}
}

// HasTag reports whether the tag is attached to the ticket.
func (t *Ticket) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// AddTag attaches the tag to the ticket. It is a no-op if already attached.
func (t *Ticket) AddTag(tag string) {
	if t.HasTag(tag) {
		return
	}
	t.Tags = append(t.Tags, tag)
}

// RemoveTag detaches the tag from the ticket.
func (t *Ticket) RemoveTag(tag string) {
	if idx := slices.Index(t.Tags, tag); idx >= 0 {
		t.Tags = slices.Delete(t.Tags, idx, idx+1)
	}
}

// ChannelName returns the channel name for the ticket under the given
// naming style.
func (t *Ticket) ChannelName(style NamingStyle) string {
	if style == NamingStyleDiscordTag {
		name := sanitizeChannelName(t.CreatorName)
		if name != "" {
			return "ticket-" + name
		}
	}
	return fmt.Sprintf("ticket-%04d", t.Number)
}

// sanitizeChannelName strips a username down to the characters Discord
// allows in a channel name.
func sanitizeChannelName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	got := b.String()
	if len(got) > 15 {
		got = got[:15]
	}
	return got
}
