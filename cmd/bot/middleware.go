package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/sproutsbot/sprouts/cmd/bot/monitoring"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/sproutsbot/sprouts/pkg/request"
	"golang.org/x/time/rate"
)

// commandController resolves a slash command's sub-command to its processor.
type commandController func(a IApp, cmd string) (commandProcessor, error)

// commandProcessor handles a single interaction.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

// userLimiters rate limits interactions per user so a single user cannot
// flood the bot with ticket actions.
type userLimiters struct {
	mut      sync.Mutex
	limiters map[string]*rate.Limiter
}

func newUserLimiters() *userLimiters {
	return &userLimiters{
		limiters: make(map[string]*rate.Limiter),
	}
}

func (u *userLimiters) allow(userID string) bool {
	u.mut.Lock()
	defer u.mut.Unlock()

	l, ok := u.limiters[userID]
	if !ok {
		// One action per two seconds sustained, with a burst of five.
		l = rate.NewLimiter(rate.Every(2*time.Second), 5)
		u.limiters[userID] = l
	}
	return l.Allow()
}

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage("Internal server error")); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler dispatches slash commands to their controller and
// message component presses to their processor. Button custom IDs carry
// arguments after the first colon, so dispatch is on the prefix.
func interactionHandler(a IApp, controllers map[string]commandController, buttons map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	limiters := newUserLimiters()

	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Member == nil || i.Member.User == nil {
			// Ticketing is guild-only; ignore DM interactions.
			return
		}

		if !limiters.allow(i.Member.User.ID) {
			if err := respondEphemeral(a, i, "You are doing that too often. Please wait a moment and try again."); err != nil {
				a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleSlashCommand(a, i, controllers)
		case discordgo.InteractionMessageComponent:
			handleComponent(a, i, buttons)
		}
	}
}

func handleSlashCommand(a IApp, i *discordgo.InteractionCreate, controllers map[string]commandController) {
	data := i.ApplicationCommandData()
	a.Log().Debug("Handling interaction " + data.Name)

	start := time.Now().UTC()
	defer func() {
		monitoring.DiscordCommandDuration.WithLabelValues(data.Name).Observe(time.Since(start).Seconds())
	}()

	controller, ok := controllers[data.Name]
	if !ok {
		a.Log().Error("No controller found for command", slog.String(logging.KeyCommand, data.Name))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	sub := ""
	if len(data.Options) > 0 {
		sub = data.Options[0].Name
	}

	processor, err := controller(a, sub)
	if err != nil {
		a.Log().Error(fmt.Sprintf("Error getting processor for command %s", data.Name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", data.Name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}

func handleComponent(a IApp, i *discordgo.InteractionCreate, buttons map[string]commandProcessor) {
	customID := i.MessageComponentData().CustomID
	key, _, _ := strings.Cut(customID, ":")

	processor, ok := buttons[key]
	if !ok {
		a.Log().Error("No processor found for component", slog.String("custom_id", customID))
		return
	}

	start := time.Now().UTC()
	defer func() {
		monitoring.DiscordCommandDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	}()

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing component %s", key),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}
