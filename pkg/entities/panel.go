package entities

import "github.com/sproutsbot/sprouts/pkg/custom"

// Panel is a persistent interactive message that spawns new tickets.
type Panel struct {
	// ID is the opaque identifier of the panel.
	ID string `json:"id" bson:"id"`

	// GuildID is the ID of the guild that the panel belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the channel that holds the panel message.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// MessageID is the ID of the panel message.
	MessageID string `json:"message_id" bson:"message_id"`

	// Title is the title of the panel embed.
	Title string `json:"title" bson:"title"`

	// CreatedBy is the ID of the staff member that created the panel.
	CreatedBy string `json:"created_by" bson:"created_by"`

	// CreatedAt is the time that the panel was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// CategoryID is the channel category that spawned tickets are placed in.
	CategoryID string `json:"category_id,omitempty" bson:"category_id,omitempty"`

	// DefaultReason is the reason given to tickets spawned from the panel.
	DefaultReason string `json:"default_reason" bson:"default_reason"`
}
