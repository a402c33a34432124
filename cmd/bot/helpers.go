package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/messages"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respond(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// memberFromInteraction builds the actor for a lifecycle call from the
// interaction's guild member.
func memberFromInteraction(i *discordgo.InteractionCreate) ticketing.Member {
	return ticketing.Member{
		UserID:      i.Member.User.ID,
		Username:    i.Member.User.Username,
		RoleIDs:     i.Member.Roles,
		Permissions: i.Member.Permissions,
	}
}

// replyForError translates a lifecycle error into the user facing reply for
// it. The second return is false when the error is not user facing and
// should be propagated instead.
func replyForError(err error) (string, bool) {
	switch {
	case errors.Is(err, ticketing.ErrInvalidChannel):
		return messages.ErrNotTicketChannel, true
	case errors.Is(err, ticketing.ErrPermissionDenied):
		return messages.ErrCreatorOrStaffOnly, true
	case errors.Is(err, ticketing.ErrAlreadyClaimed):
		return messages.ErrTicketAlreadyClaimed, true
	case errors.Is(err, ticketing.ErrNotClaimed):
		return messages.ErrTicketNotClaimed, true
	case errors.Is(err, ticketing.ErrTicketLimitReached):
		return messages.ErrTicketLimitReached, true
	case errors.Is(err, ticketing.ErrExistingTicket):
		return messages.ErrExistingTicket, true
	case errors.Is(err, ticketing.ErrPanelNotFound):
		return messages.ErrPanelNotFound, true
	case errors.Is(err, ticketing.ErrTicketNotFound):
		return messages.ErrTicketNotFound, true
	case errors.Is(err, ticketing.ErrTicketClosed):
		return "This ticket is already closed.", true
	case errors.Is(err, ticketing.ErrTicketOpen):
		return "This ticket is not closed.", true
	case errors.Is(err, ticketing.ErrChannelGone):
		return messages.ErrChannelGone, true
	case errors.Is(err, ticketing.ErrNoPendingClose):
		return "There is no close pending for this ticket.", true
	default:
		return "", false
	}
}

// respondLifecycleError replies with the user facing message for a
// lifecycle error, or returns the error when it is not user facing.
func respondLifecycleError(a IApp, i *discordgo.InteractionCreate, err error) error {
	reply, ok := replyForError(err)
	if !ok {
		return err
	}
	if err := respondEphemeral(a, i, reply); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// customIDArgument returns the part of a component's custom ID after the
// first colon.
func customIDArgument(i *discordgo.InteractionCreate) string {
	_, arg, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	return arg
}

// subCommandOptions returns the options of the invoked sub-command.
func subCommandOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return nil
	}
	return data.Options[0].Options
}

// optionString returns the named string option, or the empty string when it
// was not provided.
func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// optionInt returns the named integer option and whether it was provided.
func optionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	for _, opt := range opts {
		if opt.Name == name {
			return int(opt.IntValue()), true
		}
	}
	return 0, false
}
