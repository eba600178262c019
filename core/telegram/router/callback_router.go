package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/surplusbot/core/telegram"
	"github.com/m3rciful/surplusbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns a handler that routes callbacks through the registry.
// The query is acknowledged before the handler runs so the client stops spinning.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, func() error {
				return reg.CallbackNotFound()(c)
			}, extras...)
		}

		_ = c.Respond()
		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
