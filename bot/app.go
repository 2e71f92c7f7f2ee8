// Package bot wires the relay coordinator to the Telegram transport: command
// handlers, the in-session message relay, and session lifecycle notifications.
package bot

import (
	"context"
	"sync/atomic"

	coreconfig "github.com/pnjanonbot/PNJHelper/core/config"
	tg "github.com/pnjanonbot/PNJHelper/core/telegram"
	"github.com/pnjanonbot/PNJHelper/core/telegram/commands"
	tghelpers "github.com/pnjanonbot/PNJHelper/core/telegram/helpers"
	"github.com/pnjanonbot/PNJHelper/core/telegram/router"
	tgsender "github.com/pnjanonbot/PNJHelper/core/telegram/sender"
	"github.com/pnjanonbot/PNJHelper/relay"

	tele "gopkg.in/telebot.v4"
)

// App owns the coordinator and adapts it to the bot runtime. The bot and
// dispatcher pointers are populated on start, so coordinator callbacks fired
// from timer goroutines can reach the transport without a startup ordering
// dependency.
type App struct {
	cfg  *coreconfig.Config
	co   *relay.Coordinator
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[tgsender.Dispatcher]
}

// New builds the application from loaded configuration.
func New(cfg *coreconfig.Config) (*App, error) {
	a := &App{cfg: cfg}
	a.co = relay.NewCoordinator(relay.Options{
		AdminID:      cfg.Telegram.AdminID,
		MaxQueueSize: cfg.Chat.MaxQueueSize,
		Timeout:      cfg.Chat.SessionTimeout(),
		Events:       a,
	})
	return a, nil
}

// Coordinator exposes the relay coordinator.
func (a *App) Coordinator() *relay.Coordinator { return a.co }

// InSession implements router.Relay.
func (a *App) InSession(userID int64) bool { return a.co.InSession(userID) }

// TelegramRunOptions assembles the registry, routes, and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Mulai menggunakan bot",
	})
	reg.RegisterCommand("/chat", commands.Command{
		Handler:     a.handleChat,
		Description: "Minta obrolan dengan admin",
	})
	reg.RegisterCommand("/queue", commands.Command{
		Handler:     a.handleQueue,
		Description: "Lihat posisi antrian",
	})
	reg.RegisterCommand("/stop", commands.Command{
		Handler:     a.handleStop,
		Description: "Akhiri obrolan atau keluar dari antrian",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.handleStatus,
		Description: "Ringkasan sesi dan antrian",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.SetTextFallback(a.handleUnknownText)

	if err := reg.RegisterCallback(stopChatAction, a.handleStopCallback); err != nil {
		return tg.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, textAdminOnly)
		},
	})
	routes = append(routes, router.ContentRoutes(a, reg, router.ContentOptions{
		UnknownText: a.handleUnknownText,
		Endpoints: []any{
			tele.OnPhoto,
			tele.OnDocument,
			tele.OnVoice,
			tele.OnAudio,
			tele.OnVideo,
			tele.OnVideoNote,
			tele.OnSticker,
		},
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(rt.Bot)
			a.disp.Store(rt.Dispatcher)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.co.Stop()
			a.bot.Store(nil)
			a.disp.Store(nil)
			return nil
		},
	}, nil
}
