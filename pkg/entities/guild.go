package entities

// Guild is the per guild configuration for the bot.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// Ticketing is the ticketing configuration.
	Ticketing TicketingConfig `json:"ticketing" bson:"ticketing"`
}

// NewGuild creates the configuration for a guild with the default settings.
func NewGuild(id string) *Guild {
	g := &Guild{
		ID: id,
	}
	g.Ticketing.ApplyDefaults()
	return g
}
