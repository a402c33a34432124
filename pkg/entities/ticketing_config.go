package entities

// NamingStyle is the channel naming style for new tickets.
type NamingStyle string

const (
	// NamingStyleNumbers names ticket channels with a sequence number.
	NamingStyleNumbers NamingStyle = "numbers"

	// NamingStyleDiscordTag names ticket channels with the creator's username.
	NamingStyleDiscordTag NamingStyle = "discord_tag"
)

const (
	// DefaultMaxTicketsPerUser is the default open ticket limit per user.
	DefaultMaxTicketsPerUser = 10

	// MinTicketsPerUser is the lowest configurable open ticket limit.
	MinTicketsPerUser = 1

	// MaxTicketsPerUser is the highest configurable open ticket limit.
	MaxTicketsPerUser = 20
)

// TicketingConfig is the per guild ticketing configuration.
type TicketingConfig struct {
	// LogChannelID is the ID of the channel that ticket actions are logged to.
	LogChannelID string `json:"log_channel_id,omitempty" bson:"log_channel_id,omitempty"`

	// StaffRoleIDs are the roles whose holders count as staff.
	StaffRoleIDs []string `json:"staff_role_ids,omitempty" bson:"staff_role_ids,omitempty"`

	// CategoryID is the channel category that new tickets are placed in.
	CategoryID string `json:"category_id,omitempty" bson:"category_id,omitempty"`

	// TranscriptChannelID is the channel that close transcripts are posted to.
	TranscriptChannelID string `json:"transcript_channel_id,omitempty" bson:"transcript_channel_id,omitempty"`

	// NamingStyle is the channel naming style for new tickets.
	NamingStyle NamingStyle `json:"naming_style" bson:"naming_style"`

	// MaxTicketsPerUser is the open ticket limit per user.
	MaxTicketsPerUser int `json:"max_tickets_per_user" bson:"max_tickets_per_user"`

	// EmbedTitle is the title of the welcome embed in new tickets.
	EmbedTitle string `json:"embed_title,omitempty" bson:"embed_title,omitempty"`

	// EmbedDescription is the body of the welcome embed in new tickets.
	EmbedDescription string `json:"embed_description,omitempty" bson:"embed_description,omitempty"`

	// EmbedColor is the accent colour of the welcome embed.
	EmbedColor int `json:"embed_color,omitempty" bson:"embed_color,omitempty"`
}

// ApplyDefaults fills in the default values for any unset fields. Guild
// records are materialised lazily, so records loaded from the store may
// predate newer settings.
func (c *TicketingConfig) ApplyDefaults() {
	if c.NamingStyle == "" {
		c.NamingStyle = NamingStyleNumbers
	}
	if c.MaxTicketsPerUser == 0 {
		c.MaxTicketsPerUser = DefaultMaxTicketsPerUser
	}
	if c.EmbedTitle == "" {
		c.EmbedTitle = "Support Ticket"
	}
	if c.EmbedDescription == "" {
		c.EmbedDescription = "Thank you for creating a ticket! Please describe your issue and a staff member will assist you shortly."
	}
	if c.EmbedColor == 0 {
		c.EmbedColor = 0x2ecc71
	}
}

// ClampTicketLimit bounds a requested open ticket limit to the allowed range.
func ClampTicketLimit(n int) int {
	if n < MinTicketsPerUser {
		return MinTicketsPerUser
	}
	if n > MaxTicketsPerUser {
		return MaxTicketsPerUser
	}
	return n
}
