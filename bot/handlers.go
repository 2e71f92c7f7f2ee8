package bot

import (
	"errors"

	"github.com/pnjanonbot/PNJHelper/core/logger"
	"github.com/pnjanonbot/PNJHelper/core/telegram/callbacks"
	tghelpers "github.com/pnjanonbot/PNJHelper/core/telegram/helpers"
	"github.com/pnjanonbot/PNJHelper/relay"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const stopChatAction = "stop_chat"

func (a *App) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, textGreeting)
}

func (a *App) handleChat(c tele.Context) error {
	uid := c.Sender().ID
	adm := a.co.RequestAdmission(uid)

	switch adm.Status {
	case relay.StatusIsAdmin:
		return tghelpers.SendText(c, textAdminCannotUse)
	case relay.StatusAlreadyInSession:
		return tghelpers.SendText(c, textInSession)
	case relay.StatusAlreadyQueued:
		return tghelpers.SendText(c, alreadyQueuedText(adm.Position, adm.Total))
	case relay.StatusQueueFull:
		return tghelpers.SendText(c, queueFullText(a.cfg.Chat.MaxQueueSize))
	}

	if adm.StartNow {
		err := a.co.StartSession(uid)
		if err == nil {
			// participants are notified via the session events
			return nil
		}
		if !errors.Is(err, relay.ErrAdminBusy) {
			return err
		}
		// lost the slot to a concurrent promotion; the user stays queued
		if pos, total, ok := a.co.Position(uid); ok {
			return tghelpers.SendText(c, queuedText(pos, total))
		}
		return nil
	}
	return tghelpers.SendText(c, queuedText(adm.Position, adm.Total))
}

func (a *App) handleQueue(c tele.Context) error {
	uid := c.Sender().ID
	if uid == a.co.Admin() {
		return tghelpers.SendText(c, textAdminCannotUse)
	}
	if a.co.InSession(uid) {
		return tghelpers.SendText(c, textInSession)
	}
	pos, total, ok := a.co.Position(uid)
	if !ok {
		return tghelpers.SendText(c, textNotQueued)
	}
	return tghelpers.SendText(c, queuePositionText(pos, total))
}

func (a *App) handleStop(c tele.Context) error {
	uid := c.Sender().ID
	admin := a.co.Admin()

	if uid == admin {
		partner, ok := a.co.Partner(admin)
		if !ok {
			return tghelpers.SendText(c, textNoSession)
		}
		a.co.EndSession(admin, partner)
		return nil
	}

	if a.co.EndSession(uid, admin) {
		return nil
	}
	if a.co.LeaveQueue(uid) {
		return tghelpers.SendText(c, textLeftQueue)
	}
	return tghelpers.SendText(c, textNotInSession)
}

// handleStopCallback ends the session named by the button payload. The
// payload pins the partner the button was issued for, so a stale button left
// over from an earlier session cannot end a newer one.
func (a *App) handleStopCallback(c tele.Context) error {
	uid := c.Sender().ID
	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		partner, ok := a.co.Partner(uid)
		if !ok {
			return tghelpers.SendText(c, textNotInSession)
		}
		target = partner
	}

	if a.co.EndSession(uid, target) {
		// the session events deliver the ended texts; just drop the button
		_ = c.Edit(&tele.ReplyMarkup{})
		return nil
	}
	if uid == a.co.Admin() {
		return tghelpers.SendText(c, textNoSession)
	}
	if a.co.LeaveQueue(uid) {
		return tghelpers.SendText(c, textLeftQueue)
	}
	return tghelpers.SendText(c, textNotInSession)
}

func (a *App) handleStatus(c tele.Context) error {
	admin := a.co.Admin()
	partner, ok := a.co.Partner(admin)
	if !ok {
		return tghelpers.SendText(c, statusIdleText(a.co.QueueLen()))
	}
	dur, _ := a.co.SessionDuration(partner)
	return tghelpers.SendText(c, statusActiveText(partner, dur, a.co.QueueLen()))
}

func (a *App) handleUnknownText(c tele.Context) error {
	if c.Sender().ID == a.co.Admin() {
		return nil
	}
	return tghelpers.SendText(c, textUseChat)
}

// RelayHandler forwards the current update to the sender's session partner.
// The inactivity timer resets only when the forward actually reached Telegram.
func (a *App) RelayHandler(c tele.Context) error {
	sender := c.Sender().ID
	partner, ok := a.co.Partner(sender)
	if !ok {
		return tghelpers.SendText(c, textNotInSession)
	}

	b := a.bot.Load()
	if b == nil {
		return errors.New("bot: relay before startup")
	}

	if _, err := b.Copy(tele.ChatID(partner), c.Message()); err != nil {
		logger.Warn(tghelpers.BuildContext(c), "relay", "forward.failed",
			slog.Int64("partner_id", partner),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, sendFailedText(err))
	}

	a.co.RelayActivity(sender)
	return nil
}
