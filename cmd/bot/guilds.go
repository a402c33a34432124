package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/cmd/bot/monitoring"
	"github.com/sproutsbot/sprouts/pkg/logging"
)

func guildJoinedHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name))

		// Increment the total number of guilds.
		monitoring.TotalDiscordGuilds.Inc()
	}
}

func guildLeaveHandler(a IApp) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info(fmt.Sprintf("Left guild %s", g.Name))

		// Decrement the total number of guilds.
		monitoring.TotalDiscordGuilds.Dec()
	}
}

// channelDeleteHandler reconciles ticket records when their channel is
// deleted out of band.
func channelDeleteHandler(a IApp) func(s *discordgo.Session, c *discordgo.ChannelDelete) {
	return func(_ *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.GuildID == "" {
			return
		}

		if err := a.Controller().HandleChannelDeleted(context.Background(), c.GuildID, c.ID); err != nil {
			a.Log().Error("Error reconciling deleted channel",
				slog.String(logging.KeyChannelID, c.ID),
				slog.String(logging.KeyError, err.Error()))
		}
	}
}
