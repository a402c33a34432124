package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/cmd/bot/monitoring"
	"github.com/sproutsbot/sprouts/pkg/messages"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
)

const (
	// PanelCmdName is the command for managing ticket panels.
	PanelCmdName = "panel"

	// CreatePanelCmdName is the sub command for creating a panel.
	CreatePanelCmdName = "create"

	// DeletePanelCmdName is the sub command for deleting a panel.
	DeletePanelCmdName = "delete"

	// ListPanelsCmdName is the sub command for listing panels.
	ListPanelsCmdName = "list"
)

// panelCmd is the command for managing ticket panels.
var panelCmd = &discordgo.ApplicationCommand{
	Name:        PanelCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for managing ticket panels.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        CreatePanelCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This creates a ticket panel in a channel.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The channel to post the panel in. Defaults to this channel.",
					Required:    false,
				},
				{
					Name:        "title",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The title of the panel embed.",
					Required:    false,
				},
			},
		},
		{
			Name:        DeletePanelCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This deletes a ticket panel.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "id",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The ID of the panel to delete.",
					Required:    true,
				},
			},
		},
		{
			Name:        ListPanelsCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This lists the ticket panels in this server.",
		},
	},
}

func panelCmdController(_ IApp, cmd string) (commandProcessor, error) {
	switch cmd {
	case CreatePanelCmdName:
		return createPanel, nil
	case DeletePanelCmdName:
		return deletePanel, nil
	case ListPanelsCmdName:
		return listPanels, nil
	default:
		return nil, fmt.Errorf("unknown sub command %q", cmd)
	}
}

func createPanel(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)

	channelID := i.ChannelID
	for _, opt := range opts {
		if opt.Name == "channel" {
			channelID = opt.ChannelValue(nil).ID
		}
	}
	title := optionString(opts, "title")

	panel, err := a.Panels().CreatePanel(context.Background(), i.GuildID, channelID, memberFromInteraction(i), title)
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respondEphemeral(a, i, fmt.Sprintf("Panel `%s` has been created in <#%s>.", panel.ID, panel.ChannelID))
}

func deletePanel(a IApp, i *discordgo.InteractionCreate) error {
	panelID := optionString(subCommandOptions(i), "id")

	status, err := a.Panels().DeletePanel(context.Background(), i.GuildID, memberFromInteraction(i), panelID)
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	var reply string
	switch status {
	case ticketing.MessageDeleted:
		reply = fmt.Sprintf("Panel `%s` and its message have been deleted.", panelID)
	case ticketing.MessageAlreadyGone:
		reply = fmt.Sprintf("Panel `%s` has been deleted. Its message was already gone.", panelID)
	case ticketing.MessageForbidden:
		reply = fmt.Sprintf("Panel `%s` has been deleted, but I lack permission to delete its message.", panelID)
	default:
		reply = fmt.Sprintf("Panel `%s` has been deleted, but its message could not be removed.", panelID)
	}

	return respondEphemeral(a, i, reply)
}

func listPanels(a IApp, i *discordgo.InteractionCreate) error {
	guild, err := a.GuildDal().GetGuildByID(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	if !ticketing.IsStaff(memberFromInteraction(i), &guild.Ticketing) {
		return respondEphemeral(a, i, messages.ErrStaffOnly)
	}

	panels, pruned, err := a.Panels().ListPanels(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error listing panels: %w", err)
	}

	if len(panels) == 0 {
		reply := "There are no panels in this server."
		if len(pruned) > 0 {
			reply += fmt.Sprintf(" (%d stale panels were cleaned up.)", len(pruned))
		}
		return respondEphemeral(a, i, reply)
	}

	var sb strings.Builder
	sb.WriteString("**Panels in this server:**\n")
	for _, p := range panels {
		fmt.Fprintf(&sb, "`%s` in <#%s> (%s)\n", p.ID, p.ChannelID, p.Title)
	}
	if len(pruned) > 0 {
		fmt.Fprintf(&sb, "\n%d stale panels were cleaned up.", len(pruned))
	}

	return respondEphemeral(a, i, sb.String())
}

// openTicketButtonHandler spawns a ticket from a panel. The panel ID is
// carried in the button's custom ID.
func openTicketButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	panelID := customIDArgument(i)
	if panelID == "" {
		return fmt.Errorf("panel button missing panel ID")
	}

	ticket, err := a.Panels().SpawnTicket(context.Background(), panelID, memberFromInteraction(i))
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	monitoring.TicketsOpened.Inc()

	return respondEphemeral(a, i, fmt.Sprintf("Your ticket has been created: <#%s>", ticket.ChannelID))
}
