package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/cmd/bot/config"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
)

// sessionPlatform adapts the discord session to the lifecycle controller's
// view of the host platform.
type sessionPlatform struct {
	l *slog.Logger
	s *discordgo.Session
}

func newSessionPlatform(l *slog.Logger, s *discordgo.Session) *sessionPlatform {
	return &sessionPlatform{
		l: l,
		s: s,
	}
}

func (p *sessionPlatform) CreateTicketChannel(ctx context.Context, data ticketing.ChannelCreate) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:    data.GuildID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: 0,
			Deny:  discordgo.PermissionAll,
		},
		// The creator of the ticket can see the ticket.
		{
			ID:    data.CreatorID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
	}

	// Staff roles can see the ticket.
	for _, roleID := range data.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	channel, err := p.s.GuildChannelCreateComplex(data.GuildID, discordgo.GuildChannelCreateData{
		Name:                 data.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                data.Topic,
		PermissionOverwrites: overwrites,
		ParentID:             data.CategoryID,
	})
	if err != nil {
		return "", fmt.Errorf("error creating channel: %w", err)
	}
	return channel.ID, nil
}

func (p *sessionPlatform) RenameChannel(ctx context.Context, channelID, name string) error {
	if _, err := p.s.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		Name: name,
	}); err != nil {
		return fmt.Errorf("error editing channel: %w", err)
	}
	return nil
}

func (p *sessionPlatform) SetChannelTopic(ctx context.Context, channelID, topic string) error {
	if _, err := p.s.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		Topic: topic,
	}); err != nil {
		return fmt.Errorf("error editing channel: %w", err)
	}
	return nil
}

func (p *sessionPlatform) MoveChannel(ctx context.Context, channelID, categoryID string) error {
	if _, err := p.s.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		ParentID: categoryID,
	}); err != nil {
		return fmt.Errorf("error editing channel: %w", err)
	}
	return nil
}

func (p *sessionPlatform) DeleteChannel(ctx context.Context, channelID, reason string) error {
	p.l.Info("Deleting channel",
		slog.String(logging.KeyChannelID, channelID),
		slog.String("reason", reason))

	if _, err := p.s.ChannelDelete(channelID); err != nil {
		if isUnknownChannel(err) {
			return nil
		}
		return fmt.Errorf("error deleting channel: %w", err)
	}
	return nil
}

func (p *sessionPlatform) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	if _, err := p.s.Channel(channelID); err != nil {
		if isUnknownChannel(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting channel: %w", err)
	}
	return true, nil
}

func (p *sessionPlatform) GrantAccess(ctx context.Context, channelID, userID string) error {
	err := p.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionAllText, discordgo.PermissionMentionEveryone)
	if err != nil {
		return fmt.Errorf("error setting channel permissions: %w", err)
	}
	return nil
}

func (p *sessionPlatform) RevokeAccess(ctx context.Context, channelID, userID string) error {
	if err := p.s.ChannelPermissionDelete(channelID, userID); err != nil {
		return fmt.Errorf("error deleting channel permissions: %w", err)
	}
	return nil
}

func (p *sessionPlatform) SendNotice(ctx context.Context, channelID, content string) error {
	if _, err := p.s.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func (p *sessionPlatform) SendWelcomeMessage(ctx context.Context, ticket *entities.Ticket, cfg *entities.TicketingConfig) (string, error) {
	title := cfg.EmbedTitle
	if title == "" {
		title = config.Bot.EmbedTitle
	}
	description := cfg.EmbedDescription
	if description == "" {
		description = config.Bot.EmbedDescription
	}
	color := cfg.EmbedColor
	if color == 0 {
		color = config.Bot.EmbedColor
	}

	msg, err := p.s.ChannelMessageSendComplex(ticket.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", ticket.CreatorID),
		Embed: &discordgo.MessageEmbed{
			Title:       title,
			Description: description,
			Color:       color,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "Ticket ID",
					Value:  ticket.ID,
					Inline: true,
				},
				{
					Name:   "Reason",
					Value:  ticket.Reason,
					Inline: true,
				},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: config.Bot.FooterText,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Claim", ClaimEmoji),
						Style:    discordgo.PrimaryButton,
						CustomID: ClaimTicketButtonID,
					},
					discordgo.Button{
						Label:    fmt.Sprintf("%s Close", CloseEmoji),
						Style:    discordgo.DangerButton,
						CustomID: CloseTicketButtonID,
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}

	// Pin the welcome message so the buttons stay reachable.
	if err := p.s.ChannelMessagePin(ticket.ChannelID, msg.ID); err != nil {
		p.l.Warn("Error pinning welcome message",
			slog.String(logging.KeyTicketID, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}

	return msg.ID, nil
}

func (p *sessionPlatform) SendPanelMessage(ctx context.Context, panel *entities.Panel) (string, error) {
	msg, err := p.s.ChannelMessageSendComplex(panel.ChannelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       panel.Title,
			Description: "Need help? Click the button below to open a ticket and our staff will be with you shortly.",
			Color:       config.Bot.EmbedColor,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Panel ID: %s", panel.ID),
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("%s Open Ticket", OpenTicketEmoji),
						Style:    discordgo.PrimaryButton,
						CustomID: OpenTicketButtonID + ":" + panel.ID,
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}
	return msg.ID, nil
}

func (p *sessionPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := p.s.ChannelMessageDelete(channelID, messageID); err != nil {
		er := new(discordgo.RESTError)
		if errors.As(err, &er) && er.Message != nil {
			switch er.Message.Code {
			case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeGeneralError:
				return ticketing.ErrMessageGone
			case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
				return ticketing.ErrForbidden
			}
		}
		return fmt.Errorf("error deleting message: %w", err)
	}
	return nil
}

func (p *sessionPlatform) MessageExists(ctx context.Context, channelID, messageID string) (bool, error) {
	if _, err := p.s.ChannelMessage(channelID, messageID); err != nil {
		er := new(discordgo.RESTError)
		if errors.As(err, &er) && er.Message != nil {
			switch er.Message.Code {
			case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeGeneralError:
				return false, nil
			}
		}
		return false, fmt.Errorf("error getting message: %w", err)
	}
	return true, nil
}

func (p *sessionPlatform) NotifyClosed(ctx context.Context, userID string, ticket *entities.Ticket) error {
	dm, err := p.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error creating DM channel: %w", err)
	}

	if _, err := p.s.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Embed: closeSummaryEmbed(ticket),
	}); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func (p *sessionPlatform) LogClosed(ctx context.Context, channelID string, ticket *entities.Ticket) error {
	if _, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: closeSummaryEmbed(ticket),
	}); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

func closeSummaryEmbed(ticket *entities.Ticket) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Ticket ID",
			Value:  ticket.ID,
			Inline: true,
		},
		{
			Name:   "Opened By",
			Value:  fmt.Sprintf("<@%s>", ticket.CreatorID),
			Inline: true,
		},
		{
			Name:   "Closed By",
			Value:  fmt.Sprintf("<@%s>", ticket.ClosedBy),
			Inline: true,
		},
		{
			Name:   "Reason",
			Value:  ticket.CloseReason,
			Inline: false,
		},
	}

	if ticket.TranscriptURL != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Transcript",
			Value:  ticket.TranscriptURL,
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Ticket Closed",
		Color:  0xe74c3c,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: config.Bot.FooterText,
		},
	}
}

// isUnknownChannel reports whether an error is the API telling us the
// channel does not exist. General is thrown when a 404 is returned.
func isUnknownChannel(err error) bool {
	er := new(discordgo.RESTError)
	return errors.As(err, &er) && er.Message != nil &&
		(er.Message.Code == discordgo.ErrCodeUnknownChannel || er.Message.Code == discordgo.ErrCodeGeneralError)
}
