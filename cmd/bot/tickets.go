package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/cmd/bot/monitoring"
	"github.com/sproutsbot/sprouts/pkg/dataaccess"
	"github.com/sproutsbot/sprouts/pkg/messages"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
)

const (
	// OpenTicketButtonID is the custom ID prefix for panel open buttons. The
	// panel ID follows the colon.
	OpenTicketButtonID = "panel_open"

	// ClaimTicketButtonID is the ID for the claim ticket button.
	ClaimTicketButtonID = "ticket_claim"

	// CloseTicketButtonID is the ID for the close ticket button.
	CloseTicketButtonID = "ticket_close"

	// CloseConfirmButtonID is the custom ID prefix for close confirmation
	// buttons. The ticket ID follows the colon.
	CloseConfirmButtonID = "close_confirm"

	// CloseCancelButtonID is the custom ID prefix for close cancellation
	// buttons. The ticket ID follows the colon.
	CloseCancelButtonID = "close_cancel"
)

const (
	// OpenTicketEmoji is the emoji for the open ticket button. (Envelope with arrow)
	OpenTicketEmoji = "\U0001F4E9"

	// ClaimEmoji is the emoji for the claim button. (Ticket)
	ClaimEmoji = "\U0001F3AB"

	// CloseEmoji is the emoji for the close button. (Padlock)
	CloseEmoji = "\U0001F510"
)

const (
	// TicketCmdName is the command for controlling tickets.
	TicketCmdName = "ticket"

	// NewCmdName is the sub command for opening a new ticket.
	NewCmdName = "new"

	// ClaimCmdName is the sub command for claiming a ticket.
	ClaimCmdName = "claim"

	// UnclaimCmdName is the sub command for releasing a claimed ticket.
	UnclaimCmdName = "unclaim"

	// TransferCmdName is the sub command for transferring ticket ownership.
	TransferCmdName = "transfer"

	// CloseCmdName is the sub command for closing a ticket.
	CloseCmdName = "close"

	// ForceCloseCmdName is the sub command for closing a ticket without confirmation.
	ForceCloseCmdName = "forceclose"

	// ReopenCmdName is the sub command for reopening a closed ticket.
	ReopenCmdName = "reopen"

	// RenameCmdName is the sub command for renaming a ticket channel.
	RenameCmdName = "rename"

	// TopicCmdName is the sub command for changing a ticket's topic.
	TopicCmdName = "topic"

	// MoveCmdName is the sub command for moving a ticket channel to a category.
	MoveCmdName = "move"

	// AddCmdName is the sub command for adding a member to a ticket.
	AddCmdName = "add"

	// RemoveCmdName is the sub command for removing a member from a ticket.
	RemoveCmdName = "remove"

	// TagCmdName is the sub command for tagging a ticket.
	TagCmdName = "tag"
)

// ticketCmd is the command for controlling tickets.
var ticketCmd = &discordgo.ApplicationCommand{
	Name:        TicketCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for controlling tickets.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        NewCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This opens a new support ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "reason",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The reason for opening the ticket.",
					Required:    false,
				},
			},
		},
		{
			Name:        ClaimCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This claims the ticket for the channel that the command was executed in.",
		},
		{
			Name:        UnclaimCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This releases the claim on the ticket for this channel.",
		},
		{
			Name:        TransferCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This transfers ownership of the ticket to another user.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The user to transfer the ticket to.",
					Required:    true,
				},
			},
		},
		{
			Name:        CloseCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This closes the ticket for the channel that the command was executed in.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "reason",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The reason for closing the ticket.",
					Required:    false,
				},
			},
		},
		{
			Name:        ForceCloseCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This closes the ticket immediately without confirmation.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "reason",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The reason for closing the ticket.",
					Required:    false,
				},
			},
		},
		{
			Name:        ReopenCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This reopens a closed ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "id",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The ID of the ticket to reopen. Defaults to this channel's ticket.",
					Required:    false,
				},
			},
		},
		{
			Name:        RenameCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This renames the ticket channel.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The new name for the ticket channel.",
					Required:    true,
				},
			},
		},
		{
			Name:        TopicCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This changes the topic of the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "text",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The new topic for the ticket.",
					Required:    true,
				},
			},
		},
		{
			Name:        MoveCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This moves the ticket channel to another category.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "category",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The category to move the ticket channel to.",
					Required:    true,
				},
			},
		},
		{
			Name:        AddCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This adds a user to the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The user to add to the ticket.",
					Required:    true,
				},
			},
		},
		{
			Name:        RemoveCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This removes a user from the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The user to remove from the ticket.",
					Required:    true,
				},
			},
		},
		{
			Name:        TagCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This adds or removes a tag on the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The tag to add or remove.",
					Required:    true,
				},
				{
					Name:        "remove",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Description: "Remove the tag instead of adding it.",
					Required:    false,
				},
			},
		},
	},
}

func ticketCmdController(_ IApp, cmd string) (commandProcessor, error) {
	switch cmd {
	case NewCmdName:
		return newTicket, nil
	case ClaimCmdName:
		return claimTicket, nil
	case UnclaimCmdName:
		return unclaimTicket, nil
	case TransferCmdName:
		return transferTicket, nil
	case CloseCmdName:
		return closeTicket, nil
	case ForceCloseCmdName:
		return forceCloseTicket, nil
	case ReopenCmdName:
		return reopenTicket, nil
	case RenameCmdName:
		return renameTicket, nil
	case TopicCmdName:
		return topicTicket, nil
	case MoveCmdName:
		return moveTicket, nil
	case AddCmdName:
		return addTicketMember, nil
	case RemoveCmdName:
		return removeTicketMember, nil
	case TagCmdName:
		return tagTicket, nil
	default:
		return nil, fmt.Errorf("unknown sub command %q", cmd)
	}
}

func newTicket(a IApp, i *discordgo.InteractionCreate) error {
	reason := optionString(subCommandOptions(i), "reason")

	ticket, err := a.Controller().Open(context.Background(), ticketing.OpenRequest{
		GuildID: i.GuildID,
		Creator: memberFromInteraction(i),
		Reason:  reason,
	})
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	monitoring.TicketsOpened.Inc()

	return respondEphemeral(a, i, fmt.Sprintf("Your ticket has been created: <#%s>", ticket.ChannelID))
}

func claimTicket(a IApp, i *discordgo.InteractionCreate) error {
	ticket, err := a.Controller().Claim(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i))
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("<@%s> has claimed this ticket (`%s`).", ticket.ClaimedBy, ticket.ID))
}

func unclaimTicket(a IApp, i *discordgo.InteractionCreate) error {
	ticket, err := a.Controller().Unclaim(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i))
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("Ticket `%s` is no longer claimed.", ticket.ID))
}

func transferTicket(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	var userID string
	for _, opt := range opts {
		if opt.Name == "user" {
			userID = opt.UserValue(nil).ID
		}
	}

	ticket, err := a.Controller().Transfer(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), userID)
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("Ticket `%s` has been transferred to <@%s>.", ticket.ID, ticket.CreatorID))
}

func closeTicket(a IApp, i *discordgo.InteractionCreate) error {
	reason := optionString(subCommandOptions(i), "reason")
	return requestTicketClose(a, i, reason)
}

// requestTicketClose starts the close confirmation flow for the ticket
// backing the interaction's channel. Shared by the slash command and the
// close button.
func requestTicketClose(a IApp, i *discordgo.InteractionCreate, reason string) error {
	ticket, err := a.Controller().RequestClose(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), reason)
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("<@%s> wants to close this ticket. Confirm within 30 seconds or the request is abandoned.", i.Member.User.ID),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Confirm",
							Style:    discordgo.DangerButton,
							CustomID: CloseConfirmButtonID + ":" + ticket.ID,
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: CloseCancelButtonID + ":" + ticket.ID,
						},
					},
				},
			},
		},
	})
}

func forceCloseTicket(a IApp, i *discordgo.InteractionCreate) error {
	reason := optionString(subCommandOptions(i), "reason")

	ticket, err := a.Controller().ForceClose(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), reason)
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrAdminOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	monitoring.TicketsClosed.WithLabelValues("true").Inc()

	return respond(a, i, fmt.Sprintf("Ticket `%s` has been force closed. This channel will be removed shortly.", ticket.ID))
}

func reopenTicket(a IApp, i *discordgo.InteractionCreate) error {
	ticketID := optionString(subCommandOptions(i), "id")
	if ticketID == "" {
		// Default to the ticket backing this channel.
		ticket, err := a.TicketDal().GetTicketByChannel(context.Background(), i.GuildID, i.ChannelID)
		if errors.Is(err, dataaccess.ErrNotFound) {
			return respondEphemeral(a, i, messages.ErrNotTicketChannel)
		} else if err != nil {
			return fmt.Errorf("error getting ticket: %w", err)
		}
		ticketID = ticket.ID
	}

	ticket, err := a.Controller().Reopen(context.Background(), i.GuildID, ticketID, memberFromInteraction(i))
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("Ticket `%s` has been reopened in <#%s>.", ticket.ID, ticket.ChannelID))
}

func renameTicket(a IApp, i *discordgo.InteractionCreate) error {
	name := optionString(subCommandOptions(i), "name")

	if err := a.Controller().Rename(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), name); err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, "The ticket channel has been renamed.")
}

func topicTicket(a IApp, i *discordgo.InteractionCreate) error {
	text := optionString(subCommandOptions(i), "text")

	if _, err := a.Controller().SetTopic(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), text); err != nil {
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, "The ticket topic has been updated.")
}

func moveTicket(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	var categoryID string
	for _, opt := range opts {
		if opt.Name == "category" {
			categoryID = opt.ChannelValue(nil).ID
		}
	}

	if err := a.Controller().Move(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), categoryID); err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, "The ticket channel has been moved.")
}

func addTicketMember(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	var userID string
	for _, opt := range opts {
		if opt.Name == "user" {
			userID = opt.UserValue(nil).ID
		}
	}

	if _, err := a.Controller().AddMember(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), userID); err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("<@%s> has been added to the ticket.", userID))
}

func removeTicketMember(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	var userID string
	for _, opt := range opts {
		if opt.Name == "user" {
			userID = opt.UserValue(nil).ID
		}
	}

	if _, err := a.Controller().RemoveMember(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), userID); err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, fmt.Sprintf("<@%s> has been removed from the ticket.", userID))
}

func tagTicket(a IApp, i *discordgo.InteractionCreate) error {
	opts := subCommandOptions(i)
	name := optionString(opts, "name")

	remove := false
	for _, opt := range opts {
		if opt.Name == "remove" {
			remove = opt.BoolValue()
		}
	}

	ticket, err := a.Controller().Tag(context.Background(), i.GuildID, i.ChannelID, memberFromInteraction(i), name, remove)
	if err != nil {
		if errors.Is(err, ticketing.ErrPermissionDenied) {
			return respondEphemeral(a, i, messages.ErrStaffOnly)
		}
		return respondLifecycleError(a, i, err)
	}

	verb := "added to"
	if remove {
		verb = "removed from"
	}
	return respond(a, i, fmt.Sprintf("Tag `%s` %s ticket `%s`.", name, verb, ticket.ID))
}

// claimTicketButtonHandler handles the claim button on the welcome message.
func claimTicketButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	return claimTicket(a, i)
}

// closeTicketButtonHandler handles the close button on the welcome message.
func closeTicketButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	return requestTicketClose(a, i, "")
}

// closeConfirmButtonHandler confirms a pending close. The ticket ID is
// carried in the button's custom ID.
func closeConfirmButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	ticketID := customIDArgument(i)
	if ticketID == "" {
		return fmt.Errorf("close confirm button missing ticket ID")
	}

	ticket, err := a.Controller().ConfirmClose(context.Background(), i.GuildID, ticketID)
	if err != nil {
		return respondLifecycleError(a, i, err)
	}

	monitoring.TicketsClosed.WithLabelValues("false").Inc()

	return respond(a, i, fmt.Sprintf("Ticket `%s` has been closed. This channel will be removed shortly.", ticket.ID))
}

// closeCancelButtonHandler abandons a pending close.
func closeCancelButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	ticketID := customIDArgument(i)
	if ticketID == "" {
		return fmt.Errorf("close cancel button missing ticket ID")
	}

	if err := a.Controller().CancelClose(i.GuildID, ticketID); err != nil {
		return respondLifecycleError(a, i, err)
	}

	return respond(a, i, "The close request has been cancelled.")
}
