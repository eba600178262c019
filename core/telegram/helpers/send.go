package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/surplusbot/core/logger"
	"github.com/m3rciful/surplusbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(ctx context.Context, chatID int64, action string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	if err := disp.Enqueue(ctx, chatID, action, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends plain text to the chat of the current update.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	ctx := BuildContext(c)
	return sendAsync(ctx, ChatID(c), "send.text", func() error {
		if markup != nil {
			return c.Send(text, markup)
		}
		return c.Send(text)
	})
}

// SendTo delivers plain text to an arbitrary chat, e.g. a notification to the
// other side of a booking.
func SendTo(ctx context.Context, api tele.API, chatID int64, text string, markup *tele.ReplyMarkup) error {
	return sendAsync(ctx, chatID, "send.notify", func() error {
		opts := &tele.SendOptions{}
		if markup != nil {
			opts.ReplyMarkup = markup
		}
		_, err := api.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// Respond acknowledges a callback query, optionally with a toast text.
func Respond(c tele.Context, text string) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}
