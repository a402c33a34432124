package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sproutsbot/sprouts/pkg/dataaccess/monitoring"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketDalName = "ticket_dal"

type ITicketDal interface {
	// SaveTicket saves a ticket.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets a ticket by ID.
	GetTicket(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error)

	// GetTicketByChannel gets the ticket backed by the given channel.
	GetTicketByChannel(ctx context.Context, guildID, channelID string) (*entities.Ticket, error)

	// GetOpenTicketForUser gets the user's open ticket in the guild, if any.
	GetOpenTicketForUser(ctx context.Context, guildID, creatorID string) (*entities.Ticket, error)

	// CountOpenTickets counts the user's open tickets in the guild.
	CountOpenTickets(ctx context.Context, guildID, creatorID string) (int, error)

	// NextTicketNumber returns the next ticket sequence number for the guild.
	NextTicketNumber(ctx context.Context, guildID string) (int, error)

	// DeleteTicket removes a ticket record.
	DeleteTicket(ctx context.Context, guildID, ticketID string) error
}

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal(client *mongo.Client, logger *slog.Logger) ITicketDal {
	return &ticketDal{
		l:      logger.With(slog.String(logging.KeyDal, ticketDalName)),
		client: client,
	}
}

func (d *ticketDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionTickets)
}

func (d *ticketDal) observe(query string) *prometheus.Timer {
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, query, mongoDatabase, collectionTickets).Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, query, mongoDatabase, collectionTickets))
}

func (d *ticketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	t := d.observe("save_ticket")
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := d.collection().UpdateOne(ctx, bson.M{"guild_id": ticket.GuildID, "id": ticket.ID}, bson.M{"$set": ticket}, opts)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

func (d *ticketDal) GetTicket(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	t := d.observe("get_ticket")
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := d.collection().FindOne(ctx, bson.M{"guild_id": guildID, "id": ticketID}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}

func (d *ticketDal) GetTicketByChannel(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	t := d.observe("get_ticket_by_channel")
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := d.collection().FindOne(ctx, bson.M{"guild_id": guildID, "channel_id": channelID}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket by channel: %w", err)
	}
	return ticket, nil
}

func (d *ticketDal) GetOpenTicketForUser(ctx context.Context, guildID, creatorID string) (*entities.Ticket, error) {
	t := d.observe("get_open_ticket_for_user")
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := d.collection().FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"creator_id": creatorID,
		"status":     entities.TicketStatusOpen,
	}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting open ticket: %w", err)
	}
	return ticket, nil
}

func (d *ticketDal) CountOpenTickets(ctx context.Context, guildID, creatorID string) (int, error) {
	t := d.observe("count_open_tickets")
	defer t.ObserveDuration()

	count, err := d.collection().CountDocuments(ctx, bson.M{
		"guild_id":   guildID,
		"creator_id": creatorID,
		"status":     entities.TicketStatusOpen,
	})
	if err != nil {
		return 0, fmt.Errorf("error counting open tickets: %w", err)
	}
	return int(count), nil
}

func (d *ticketDal) NextTicketNumber(ctx context.Context, guildID string) (int, error) {
	t := d.observe("next_ticket_number")
	defer t.ObserveDuration()

	opts := options.FindOne().SetSort(bson.M{"number": -1})

	latest := new(entities.Ticket)
	err := d.collection().FindOne(ctx, bson.M{"guild_id": guildID}, opts).Decode(latest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	} else if err != nil {
		return 0, fmt.Errorf("error getting latest ticket: %w", err)
	}
	return latest.Number + 1, nil
}

func (d *ticketDal) DeleteTicket(ctx context.Context, guildID, ticketID string) error {
	t := d.observe("delete_ticket")
	defer t.ObserveDuration()

	if _, err := d.collection().DeleteOne(ctx, bson.M{"guild_id": guildID, "id": ticketID}); err != nil {
		return fmt.Errorf("error deleting ticket: %w", err)
	}
	return nil
}
