package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sproutsbot/sprouts/cmd/bot/config"
	"github.com/sproutsbot/sprouts/cmd/bot/monitoring"
	"github.com/sproutsbot/sprouts/pkg/dataaccess"
	"github.com/sproutsbot/sprouts/pkg/dataaccess/connection"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/sproutsbot/sprouts/pkg/request"
	"github.com/sproutsbot/sprouts/pkg/ticketing"
	"github.com/sproutsbot/sprouts/pkg/transcripts"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"

	// PathTranscripts is the path prefix for exported transcripts.
	PathTranscripts = "/transcripts/"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Controller returns the ticket lifecycle controller.
	Controller() *ticketing.Controller

	// Panels returns the panel manager.
	Panels() *ticketing.PanelManager

	// GuildDal returns the guild settings store.
	GuildDal() dataaccess.IGuildDal

	// TicketDal returns the ticket store.
	TicketDal() dataaccess.ITicketDal

	// PanelDal returns the panel store.
	PanelDal() dataaccess.IPanelDal
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// mongo is the database client.
	mongo *mongo.Client

	guildDal  dataaccess.IGuildDal
	ticketDal dataaccess.ITicketDal
	panelDal  dataaccess.IPanelDal

	// controller is the ticket lifecycle controller.
	controller *ticketing.Controller

	// panels is the panel manager.
	panels *ticketing.PanelManager
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger: l,
		r:      r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	if err := a.connectMongo(); err != nil {
		return fmt.Errorf("error connecting to mongo: %w", err)
	}

	a.setupTicketing()

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Create event notifier. This is used to runServer events. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) connectMongo() error {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = config.MongoUri

	db, err := mongoConn.Connect()
	if err != nil {
		return fmt.Errorf("error connecting to mongo: %w", err)
	} else if db == nil {
		return fmt.Errorf("mongo client came back nil")
	}

	a.mongo = db
	a.Debug("Connected to MongoDB")
	return nil
}

// setupTicketing wires the stores, the platform adapter and the lifecycle
// controller. Must run after the session and mongo client exist.
func (a *App) setupTicketing() {
	a.guildDal = dataaccess.NewGuildDal(a.mongo, a.Logger)
	a.ticketDal = dataaccess.NewTicketDal(a.mongo, a.Logger)
	a.panelDal = dataaccess.NewPanelDal(a.mongo, a.Logger)

	platform := newSessionPlatform(a.Logger, a.s)
	exporter := transcripts.NewExporter(a.Logger, a.s, config.TranscriptDir, config.TranscriptBaseUrl)

	a.controller = ticketing.NewController(ticketing.ControllerParams{
		Log:         a.Logger,
		Tickets:     a.ticketDal,
		Guilds:      a.guildDal,
		Platform:    platform,
		Transcripts: exporter,
	})
	a.panels = ticketing.NewPanelManager(a.Logger, a.panelDal, a.ticketDal, a.guildDal, a.controller, platform)
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// Exported transcripts are served as static files.
	a.r.PathPrefix(PathTranscripts).Handler(
		http.StripPrefix(PathTranscripts, http.FileServer(http.Dir(config.TranscriptDir)))).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Ticket channels deleted out from under us.
	a.s.AddHandler(channelDeleteHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			TicketCmdName: ticketCmdController,
			PanelCmdName:  panelCmdController,
			SetupCmdName:  setupCmdController,
		},
		// Button Controllers
		map[string]commandProcessor{
			OpenTicketButtonID:   openTicketButtonHandler,
			ClaimTicketButtonID:  claimTicketButtonHandler,
			CloseTicketButtonID:  closeTicketButtonHandler,
			CloseConfirmButtonID: closeConfirmButtonHandler,
			CloseCancelButtonID:  closeCancelButtonHandler,
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		for _, cmd := range []*discordgo.ApplicationCommand{ticketCmd, panelCmd, setupCmd} {
			if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, cmd); err != nil {
				return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, g.ID, err)
			}
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Delete slash commands for each guild.
	for _, guild := range guilds {
		for _, cmd := range []*discordgo.ApplicationCommand{ticketCmd, panelCmd, setupCmd} {
			if err := a.s.ApplicationCommandDelete(config.ApplicationId, guild.ID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guild.ID, err)
			}
		}
	}
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Controller() *ticketing.Controller {
	return a.controller
}

func (a *App) Panels() *ticketing.PanelManager {
	return a.panels
}

func (a *App) GuildDal() dataaccess.IGuildDal {
	return a.guildDal
}

func (a *App) TicketDal() dataaccess.ITicketDal {
	return a.ticketDal
}

func (a *App) PanelDal() dataaccess.IPanelDal {
	return a.panelDal
}
