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

const guildDalName = "guild_dal"

type IGuildDal interface {
	// SaveGuild saves a guild configuration.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets a guild configuration by ID. The settings are
	// materialised with defaults if the guild has no record yet.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)
}

type guildDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal(client *mongo.Client, logger *slog.Logger) IGuildDal {
	return &guildDal{
		l:      logger.With(slog.String(logging.KeyDal, guildDalName)),
		client: client,
	}
}

func (d *guildDal) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	collection := d.client.Database(mongoDatabase).Collection(collectionGuilds)

	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, "save_guild", mongoDatabase, collectionGuilds).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, "save_guild", mongoDatabase, collectionGuilds))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

func (d *guildDal) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionGuilds)

	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, "get_guild_by_id", mongoDatabase, collectionGuilds).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, "get_guild_by_id", mongoDatabase, collectionGuilds))
	defer t.ObserveDuration()

	guild := new(entities.Guild)
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Guild settings are created lazily with defaults on first access.
		return entities.NewGuild(id), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}

	guild.Ticketing.ApplyDefaults()
	return guild, nil
}
