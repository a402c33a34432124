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

const panelDalName = "panel_dal"

type IPanelDal interface {
	// SavePanel saves a panel.
	SavePanel(ctx context.Context, panel *entities.Panel) error

	// GetPanel gets a panel by ID.
	GetPanel(ctx context.Context, panelID string) (*entities.Panel, error)

	// ListPanels lists the panels of a guild.
	ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, error)

	// DeletePanel removes a panel record.
	DeletePanel(ctx context.Context, panelID string) error
}

type panelDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewPanelDal creates a new panel data access layer.
func NewPanelDal(client *mongo.Client, logger *slog.Logger) IPanelDal {
	return &panelDal{
		l:      logger.With(slog.String(logging.KeyDal, panelDalName)),
		client: client,
	}
}

func (d *panelDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionPanels)
}

func (d *panelDal) observe(query string) *prometheus.Timer {
	monitoring.MongoTotalRequests.WithLabelValues(panelDalName, query, mongoDatabase, collectionPanels).Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(panelDalName, query, mongoDatabase, collectionPanels))
}

func (d *panelDal) SavePanel(ctx context.Context, panel *entities.Panel) error {
	t := d.observe("save_panel")
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := d.collection().UpdateOne(ctx, bson.M{"id": panel.ID}, bson.M{"$set": panel}, opts)
	if err != nil {
		return fmt.Errorf("error updating panel: %w", err)
	}
	return nil
}

func (d *panelDal) GetPanel(ctx context.Context, panelID string) (*entities.Panel, error) {
	t := d.observe("get_panel")
	defer t.ObserveDuration()

	panel := new(entities.Panel)
	err := d.collection().FindOne(ctx, bson.M{"id": panelID}).Decode(panel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", err)
	}
	return panel, nil
}

func (d *panelDal) ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, error) {
	t := d.observe("list_panels")
	defer t.ObserveDuration()

	cursor, err := d.collection().Find(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return nil, fmt.Errorf("error listing panels: %w", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			d.l.Error("Error closing cursor", slog.String(logging.KeyError, err.Error()))
		}
	}()

	var panels []*entities.Panel
	if err := cursor.All(ctx, &panels); err != nil {
		return nil, fmt.Errorf("error decoding panels: %w", err)
	}
	return panels, nil
}

func (d *panelDal) DeletePanel(ctx context.Context, panelID string) error {
	t := d.observe("delete_panel")
	defer t.ObserveDuration()

	if _, err := d.collection().DeleteOne(ctx, bson.M{"id": panelID}); err != nil {
		return fmt.Errorf("error deleting panel: %w", err)
	}
	return nil
}
