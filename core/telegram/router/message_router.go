package router

import (
	"time"

	tg "github.com/pnjanonbot/PNJHelper/core/telegram"
	"github.com/pnjanonbot/PNJHelper/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Relay defines the minimal interface for an active-session relay.
type Relay interface {
	InSession(userID int64) bool
	RelayHandler(c tele.Context) error
}

// ContentOptions controls fallback behaviour for non-command content updates.
type ContentOptions struct {
	UnknownText tele.HandlerFunc
	// Endpoints lists additional telebot endpoints (photo, document, voice, ...)
	// whose updates are relayed when the sender is in a session and otherwise
	// handed to the text fallback.
	Endpoints []any
}

// ContentRoutes builds handlers routing text and media updates.
// Session participants get their content relayed to the partner; everyone else
// falls through to command lookup and the registry text fallback.
func ContentRoutes(rel Relay, reg *tg.Registry, opts ContentOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if rel != nil && rel.InSession(c.Sender().ID) {
			return handleWithSummary(c, "relay", start, "", "", func() error {
				return rel.RelayHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if rel != nil && rel.InSession(c.Sender().ID) {
			return handleWithSummary(c, "relay_media", start, "", "", func() error {
				return rel.RelayHandler(c)
			})
		}
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
		return nil
	}

	routes := []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
		},
	}
	for _, ep := range opts.Endpoints {
		routes = append(routes, tg.Route{
			Endpoint: ep,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler)),
		})
	}
	return routes
}
