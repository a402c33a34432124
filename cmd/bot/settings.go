package main

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/messages"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
	"golang.org/x/exp/slices"
)

const (
	// SetupCmdName is the command for configuring ticketing for a guild.
	SetupCmdName = "setup"

	// StaffRoleCmdName is the sub command for managing the staff roles.
	StaffRoleCmdName = "staffrole"

	// LimitCmdName is the sub command for setting the open ticket limit.
	LimitCmdName = "limit"

	// NamingCmdName is the sub command for setting the channel naming style.
	NamingCmdName = "naming"

	// LogChannelCmdName is the sub command for setting the log channel.
	LogChannelCmdName = "logchannel"

	// CategoryCmdName is the sub command for setting the ticket category.
	CategoryCmdName = "category"

	// TranscriptsCmdName is the sub command for setting the transcript channel.
	TranscriptsCmdName = "transcripts"
)

// setupCmd is the command for configuring ticketing for a guild.
var setupCmd = &discordgo.ApplicationCommand{
	Name:        SetupCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for configuring ticketing for this server.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        StaffRoleCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This adds or removes a staff role.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "role",
					Type:        discordgo.ApplicationCommandOptionRole,
					Description: "The role to add or remove.",
					Required:    true,
				},
				{
					Name:        "remove",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Description: "Remove the role instead of adding it.",
					Required:    false,
				},
			},
		},
		{
			Name:        LimitCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This sets the open ticket limit per user.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "count",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Description: "The maximum number of open tickets per user.",
					Required:    true,
				},
			},
		},
		{
			Name:        NamingCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This sets the ticket channel naming style.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "style",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The naming style for new ticket channels.",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{
							Name:  "Sequence numbers",
							Value: string(entities.NamingStyleNumbers),
						},
						{
							Name:  "Creator's username",
							Value: string(entities.NamingStyleDiscordTag),
						},
					},
				},
			},
		},
		{
			Name:        LogChannelCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This sets the channel that ticket actions are logged to.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The channel to log ticket actions to.",
					Required:    true,
				},
			},
		},
		{
			Name:        CategoryCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This sets the category that new ticket channels are created in.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "category",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The category for new ticket channels.",
					Required:    true,
				},
			},
		},
		{
			Name:        TranscriptsCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This sets the channel that close transcripts are posted to.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The channel to post close transcripts to.",
					Required:    true,
				},
			},
		},
	},
}

func setupCmdController(_ IApp, cmd string) (commandProcessor, error) {
	switch cmd {
	case StaffRoleCmdName:
		return setupStaffRole, nil
	case LimitCmdName:
		return setupLimit, nil
	case NamingCmdName:
		return setupNaming, nil
	case LogChannelCmdName:
		return setupLogChannel, nil
	case CategoryCmdName:
		return setupCategory, nil
	case TranscriptsCmdName:
		return setupTranscripts, nil
	default:
		return nil, fmt.Errorf("unknown sub command %q", cmd)
	}
}

// updateGuildConfig loads the guild settings, applies fn, and saves. All
// setup sub-commands are administrator only.
func updateGuildConfig(a IApp, i *discordgo.InteractionCreate, fn func(cfg *entities.TicketingConfig) string) error {
	if !ticketing.IsAdmin(memberFromInteraction(i)) {
		return respondEphemeral(a, i, messages.ErrAdminOnly)
	}

	guild, err := a.GuildDal().GetGuildByID(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	reply := fn(&guild.Ticketing)

	if err := a.GuildDal().SaveGuild(context.Background(), guild); err != nil {
		return fmt.Errorf("error saving guild configuration: %w", err)
	}

	return respondEphemeral(a, i, reply)
}

func setupStaffRole(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)

	var roleID string
	remove := false
	for _, opt := range opts {
		switch opt.Name {
		case "role":
			roleID = opt.RoleValue(nil, i.GuildID).ID
		case "remove":
			remove = opt.BoolValue()
		}
	}

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		if remove {
			idx := slices.Index(cfg.StaffRoleIDs, roleID)
			if idx < 0 {
				return fmt.Sprintf("<@&%s> is not a staff role.", roleID)
			}
			cfg.StaffRoleIDs = slices.Delete(cfg.StaffRoleIDs, idx, idx+1)
			return fmt.Sprintf("<@&%s> is no longer a staff role.", roleID)
		}

		if slices.Contains(cfg.StaffRoleIDs, roleID) {
			return fmt.Sprintf("<@&%s> is already a staff role.", roleID)
		}
		cfg.StaffRoleIDs = append(cfg.StaffRoleIDs, roleID)
		return fmt.Sprintf("<@&%s> is now a staff role.", roleID)
	})
}

func setupLimit(a IApp, i *discordgo.InteractionCreate) error {
	count, ok := optionInt(subCommandOptions(i), "count")
	if !ok {
		return fmt.Errorf("limit sub command missing count option")
	}

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		cfg.MaxTicketsPerUser = entities.ClampTicketLimit(count)
		return fmt.Sprintf("The open ticket limit is now %d per user.", cfg.MaxTicketsPerUser)
	})
}

func setupNaming(a IApp, i *discordgo.InteractionCreate) error {
	style := optionString(subCommandOptions(i), "style")

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		cfg.NamingStyle = entities.NamingStyle(style)
		return fmt.Sprintf("New ticket channels will be named using the `%s` style.", style)
	})
}

func setupLogChannel(a IApp, i *discordgo.InteractionCreate) error {
	var channelID string
	for _, opt := range subCommandOptions(i) {
		if opt.Name == "channel" {
			channelID = opt.ChannelValue(nil).ID
		}
	}

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		cfg.LogChannelID = channelID
		return fmt.Sprintf("Ticket actions will be logged to <#%s>.", channelID)
	})
}

func setupCategory(a IApp, i *discordgo.InteractionCreate) error {
	var categoryID string
	for _, opt := range subCommandOptions(i) {
		if opt.Name == "category" {
			categoryID = opt.ChannelValue(nil).ID
		}
	}

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		cfg.CategoryID = categoryID
		return "New ticket channels will be created under the chosen category."
	})
}

func setupTranscripts(a IApp, i *discordgo.InteractionCreate) error {
	var channelID string
	for _, opt := range subCommandOptions(i) {
		if opt.Name == "channel" {
			channelID = opt.ChannelValue(nil).ID
		}
	}

	return updateGuildConfig(a, i, func(cfg *entities.TicketingConfig) string {
		cfg.TranscriptChannelID = channelID
		return fmt.Sprintf("Close transcripts will be posted to <#%s>.", channelID)
	})
}
