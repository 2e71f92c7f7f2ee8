package bot

import (
	"errors"
	"strconv"

	"github.com/pnjanonbot/PNJHelper/core/logger"
	"github.com/pnjanonbot/PNJHelper/core/telegram/keyboard"
	tgsender "github.com/pnjanonbot/PNJHelper/core/telegram/sender"
	"github.com/pnjanonbot/PNJHelper/relay"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// SessionStarted implements relay.Events. Both participants learn about the
// new session, and the fresh queue head is warned that their turn is near.
func (a *App) SessionStarted(user int64) {
	a.notify(user, textConnectedUser, stopChatMarkup(a.co.Admin()))
	a.notify(a.co.Admin(), adminConnectedText(user), stopChatMarkup(user))

	if head, ok := a.co.Head(); ok {
		a.notify(head, textTurnNear)
	}
}

// SessionEnded implements relay.Events.
func (a *App) SessionEnded(user int64, reason relay.EndReason) {
	userText := textChatEnded
	if reason == relay.ReasonTimeout {
		userText = textChatTimeout
	}
	a.notify(user, userText)
	a.notify(a.co.Admin(), adminChatEndedText(user))
}

// stopChatMarkup builds the inline stop button. The payload carries the
// partner id the button applies to.
func stopChatMarkup(partner int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: stopButtonLabel, Unique: stopChatAction, Data: strconv.FormatInt(partner, 10)},
	})
}

// notify sends text to a chat by id through the async dispatcher, falling back
// to a direct send when the queue is saturated or the dispatcher is gone.
func (a *App) notify(chatID int64, text string, markup ...*tele.ReplyMarkup) {
	b := a.bot.Load()
	if b == nil {
		return
	}

	var opts []interface{}
	if len(markup) > 0 && markup[0] != nil {
		opts = append(opts, markup[0])
	}
	run := func() error {
		_, err := b.Send(tele.ChatID(chatID), text, opts...)
		return err
	}

	ctx := logger.Background()
	disp := a.disp.Load()
	if disp != nil {
		err := disp.Enqueue(ctx, "notify", "sendMessage", run)
		if err == nil {
			return
		}
		if !errors.Is(err, tgsender.ErrQueueFull) && !errors.Is(err, tgsender.ErrQueueClosed) {
			logger.Warn(ctx, "tg", "notify.enqueue_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
			return
		}
	}

	if err := run(); err != nil {
		logger.Warn(ctx, "tg", "notify.failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}
